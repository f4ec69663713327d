package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/facts"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/inventory"
)

func hu(s string) entities.HandlingUnit {
	return entities.NormalizeHandlingUnit(s)
}

func fact(unit string, product entities.ProductID, qty entities.Quantity) entities.UnitFact {
	return entities.UnitFact{
		HandlingUnit: hu(unit),
		Product:      product,
		Quantity:     qty,
	}
}

// detailRow builds a record-type-2 row for one (unit, product, qty) with a
// consistent net value at the given unit price.
func detailRow(product entities.ProductID, qty, net, unit string) entities.ManifestRow {
	fields := make([]string, 16)
	fields[entities.ColRecordType] = "2"
	fields[entities.ColProduct] = string(product)
	fields[entities.ColPickQuantity] = qty
	fields[entities.ColNetValue] = net
	fields[entities.ColHandlingUnits] = string(hu(unit))
	return entities.NewManifestRow(fields, "")
}

func TestMismatches_BalancedRunIsClean(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("1", "P1", 5),
		fact("2", "P1", 3),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "5.000", "50.00", "1"),
		detailRow("P1", "3.000", "30.00", "2"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	assert.Empty(t, v.Mismatches(rows))
}

func TestMismatches_SignedDeltas(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("1", "P1", 4),
		fact("2", "P1", 4),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "6.000", "60.00", "1"), // surplus 2
		detailRow("P1", "2.000", "20.00", "2"), // deficit 2
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	mismatches := v.Mismatches(rows)
	require.Len(t, mismatches, 2)

	assert.Equal(t, hu("1"), mismatches[0].HandlingUnit)
	assert.Equal(t, entities.Quantity(2), mismatches[0].Delta)
	assert.True(t, mismatches[0].IsSurplus())

	assert.Equal(t, hu("2"), mismatches[1].HandlingUnit)
	assert.Equal(t, entities.Quantity(-2), mismatches[1].Delta)
	assert.True(t, mismatches[1].IsDeficit())
}

func TestMismatches_ActualOnlyPairReported(t *testing.T) {
	unitFacts := []entities.UnitFact{fact("1", "P1", 5)}
	rows := []entities.ManifestRow{
		detailRow("P1", "5.000", "50.00", "1"),
		detailRow("P2", "2.000", "10.00", "1"), // never in the document
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	mismatches := v.Mismatches(rows)
	require.Len(t, mismatches, 1)
	assert.Equal(t, entities.ProductID("P2"), mismatches[0].Product)
	assert.Equal(t, entities.Quantity(2), mismatches[0].Delta)
}

func TestMismatches_UnsplitRowCountsAsDeficit(t *testing.T) {
	unitFacts := []entities.UnitFact{fact("1", "P1", 5)}
	rows := []entities.ManifestRow{
		detailRow("P1", "5.000", "50.00", "0000000001/0000000002"),
	}
	// A row still joining several units belongs to no single pair.
	v := NewVerifier(unitFacts, inventory.New(), nil)
	mismatches := v.Mismatches(rows)
	require.Len(t, mismatches, 1)
	assert.Equal(t, entities.Quantity(-5), mismatches[0].Delta)
}

func TestRebalance_TransfersSurplusToDeficit(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("A", "P1", 4),
		fact("B", "P1", 4),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "6.000", "60.00", "A"),
		detailRow("P1", "2.000", "20.00", "B"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	mismatches := v.Mismatches(rows)
	require.NotEmpty(t, mismatches)

	repaired, transfers := v.Rebalance(rows, mismatches)
	require.Len(t, transfers, 1)
	assert.Equal(t, hu("A"), transfers[0].From)
	assert.Equal(t, hu("B"), transfers[0].To)
	assert.Equal(t, entities.Quantity(2), transfers[0].Quantity)

	assert.Empty(t, v.Mismatches(repaired), "both pairs must balance after the transfer")

	// Net values follow each row's own unit price (10.00 per unit).
	assert.Equal(t, "4.000", repaired[0].PickQuantity())
	assert.Equal(t, "40.00", repaired[0].NetValue())
	assert.Equal(t, "4.000", repaired[1].PickQuantity())
	assert.Equal(t, "40.00", repaired[1].NetValue())
}

func TestRebalance_SynthesizesMissingDeficitRow(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("A", "P1", 2),
		fact("B", "P1", 2),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "4.000", "40.00", "A"), // all quantity landed on A
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	repaired, transfers := v.Rebalance(rows, v.Mismatches(rows))
	require.Len(t, transfers, 1)
	require.Len(t, repaired, 2)

	assert.Equal(t, string(hu("A")), repaired[0].HandlingUnitField())
	assert.Equal(t, "2.000", repaired[0].PickQuantity())
	assert.Equal(t, string(hu("B")), repaired[1].HandlingUnitField())
	assert.Equal(t, "2.000", repaired[1].PickQuantity())
	assert.Equal(t, "20.00", repaired[1].NetValue())

	assert.Empty(t, v.Mismatches(repaired))
}

func TestRebalance_DropsFullyDrainedRow(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("B", "P1", 3),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "3.000", "30.00", "A"), // A was never in the document
		detailRow("P1", "0.000", "0.00", "B"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	repaired, transfers := v.Rebalance(rows, v.Mismatches(rows))
	require.Len(t, transfers, 1)
	assert.Equal(t, entities.Quantity(3), transfers[0].Quantity)

	// A's row drained to zero and disappeared; B holds everything.
	require.Len(t, repaired, 1)
	assert.Equal(t, string(hu("B")), repaired[0].HandlingUnitField())
	assert.Equal(t, "3.000", repaired[0].PickQuantity())
}

func TestRebalance_LeavesUnpairedMismatchesAlone(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("A", "P1", 4), // deficit with no surplus anywhere
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "1.000", "10.00", "A"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	repaired, transfers := v.Rebalance(rows, v.Mismatches(rows))
	assert.Empty(t, transfers)
	require.Len(t, v.Mismatches(repaired), 1)
}

func TestRebalance_GreedyPairsInDiscoveryOrder(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("A", "P1", 1),
		fact("B", "P1", 1),
		fact("C", "P1", 3),
		fact("D", "P1", 3),
	}
	// A carries everything; B, C and D are deficits in that order.
	rows := []entities.ManifestRow{
		detailRow("P1", "8.000", "80.00", "A"),
		detailRow("P1", "0.000", "0.00", "B"),
		detailRow("P1", "0.000", "0.00", "C"),
		detailRow("P1", "0.000", "0.00", "D"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	repaired, transfers := v.Rebalance(rows, v.Mismatches(rows))
	require.Len(t, transfers, 3)
	assert.Equal(t, hu("B"), transfers[0].To)
	assert.Equal(t, entities.Quantity(1), transfers[0].Quantity)
	assert.Equal(t, hu("C"), transfers[1].To)
	assert.Equal(t, entities.Quantity(3), transfers[1].Quantity)
	assert.Equal(t, hu("D"), transfers[2].To)
	assert.Equal(t, entities.Quantity(3), transfers[2].Quantity)

	assert.Empty(t, v.Mismatches(repaired))
}

func TestBuildReport_MarkersAndResult(t *testing.T) {
	unitFacts := []entities.UnitFact{
		fact("1", "P1", 5),
		fact("2", "P1", 3),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "5.000", "50.00", "1"),
		detailRow("P1", "1.000", "10.00", "2"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	report := v.BuildReport(rows, facts.Header{}, nil, nil)
	require.Len(t, report.Pairs, 2)
	assert.True(t, report.Pairs[0].OK())
	assert.False(t, report.Pairs[1].OK())
	assert.False(t, report.OK())

	text := report.RenderText()
	assert.Contains(t, text, "MISMATCH")
	assert.Contains(t, text, "RESULT: FAILED")
}

func TestRenderText_OneSectionPerHandlingUnit(t *testing.T) {
	// A per-product document layout interleaves the units: A, B, then A
	// again. The report must still print a single section for A.
	unitFacts := []entities.UnitFact{
		fact("A", "P1", 2),
		fact("B", "P1", 3),
		fact("A", "P2", 4),
	}
	rows := []entities.ManifestRow{
		detailRow("P1", "2.000", "20.00", "A"),
		detailRow("P1", "3.000", "30.00", "B"),
		detailRow("P2", "4.000", "40.00", "A"),
	}

	v := NewVerifier(unitFacts, inventory.New(), nil)
	report := v.BuildReport(rows, facts.Header{}, nil, nil)

	text := report.RenderText()
	sectionA := "Handling Unit " + string(hu("A"))
	assert.Equal(t, 1, strings.Count(text, sectionA))
	assert.Equal(t, 1, strings.Count(text, "Handling Unit "+string(hu("B"))))

	// A's section carries both of its products.
	aSection := text[strings.Index(text, sectionA):]
	bStart := strings.Index(aSection, "Handling Unit "+string(hu("B")))
	require.Greater(t, bStart, 0)
	assert.Contains(t, aSection[:bStart], "P1")
	assert.Contains(t, aSection[:bStart], "P2")
}
