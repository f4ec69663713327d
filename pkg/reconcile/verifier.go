// Package reconcile proves that the rewritten manifest conserves the
// per-(handling unit, product) quantities counted by the positional
// document, repairs what it mechanically can, and reports the rest.
package reconcile

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/allocation"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/inventory"
)

// pairKey identifies one (handling unit, product) balance
type pairKey struct {
	HandlingUnit entities.HandlingUnit
	Product      entities.ProductID
}

// totals is an aggregation with its key discovery order preserved
type totals struct {
	byKey map[pairKey]entities.Quantity
	order []pairKey
}

func newTotals() *totals {
	return &totals{byKey: make(map[pairKey]entities.Quantity)}
}

func (t *totals) add(k pairKey, qty entities.Quantity) {
	if _, seen := t.byKey[k]; !seen {
		t.order = append(t.order, k)
	}
	t.byKey[k] += qty
}

// Verifier recomputes expected and actual per-pair totals and derives the
// mismatches between them. The expected side is re-aggregated directly from
// the unit facts, deliberately independent of the inventory the allocation
// engine drained, so an engine bug cannot mask itself.
type Verifier struct {
	facts []entities.UnitFact
	inv   *inventory.Inventory
	log   *zap.Logger
}

// NewVerifier creates a verifier over the document's unit facts. The
// inventory is only touched during rebalancing bookkeeping.
func NewVerifier(facts []entities.UnitFact, inv *inventory.Inventory, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{facts: facts, inv: inv, log: log}
}

// expected re-aggregates the unit facts
func (v *Verifier) expected() *totals {
	t := newTotals()
	for _, f := range v.facts {
		t.add(pairKey{HandlingUnit: f.HandlingUnit, Product: f.Product}, f.Quantity)
	}
	return t
}

// actual re-aggregates the emitted detail rows. Rows whose handling-unit
// field still joins several units were never split (total allocation
// failure); they belong to no single pair and surface as deficits instead.
func (v *Verifier) actual(rows []entities.ManifestRow) *totals {
	t := newTotals()
	for i := range rows {
		row := &rows[i]
		if !row.IsDetail() {
			continue
		}
		huField := row.HandlingUnitField()
		if strings.Contains(huField, entities.HandlingUnitSeparator) {
			continue
		}
		k := pairKey{
			HandlingUnit: entities.NormalizeHandlingUnit(huField),
			Product:      row.Product(),
		}
		t.add(k, allocation.ParseQuantity(row.PickQuantity()))
	}
	return t
}

// Mismatches compares expected against actual totals over the union of
// their keys, in discovery order, and returns every pair whose delta
// (actual minus expected) is non-zero.
func (v *Verifier) Mismatches(rows []entities.ManifestRow) []entities.Mismatch {
	expected := v.expected()
	actual := v.actual(rows)

	var mismatches []entities.Mismatch
	for _, k := range expected.order {
		delta := actual.byKey[k] - expected.byKey[k]
		if delta != 0 {
			mismatches = append(mismatches, entities.Mismatch{
				HandlingUnit: k.HandlingUnit,
				Product:      k.Product,
				Delta:        delta,
			})
		}
	}
	for _, k := range actual.order {
		if _, known := expected.byKey[k]; known {
			continue
		}
		mismatches = append(mismatches, entities.Mismatch{
			HandlingUnit: k.HandlingUnit,
			Product:      k.Product,
			Delta:        actual.byKey[k],
		})
	}

	if len(mismatches) > 0 {
		v.log.Warn("conservation mismatches found", zap.Int("count", len(mismatches)))
	}
	return mismatches
}
