package inventory

import (
	"testing"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
)

func hu(s string) entities.HandlingUnit {
	return entities.NormalizeHandlingUnit(s)
}

func TestInventory_BuildFromFacts(t *testing.T) {
	facts := []entities.UnitFact{
		{HandlingUnit: hu("1"), Product: "P1", Quantity: 5},
		{HandlingUnit: hu("2"), Product: "P1", Quantity: 3},
		{HandlingUnit: hu("1"), Product: "P2", Quantity: 2},
		{HandlingUnit: hu("1"), Product: "P1", Quantity: 4}, // same pair, summed
	}

	inv := NewFromFacts(facts)

	if got := inv.Available(hu("1"), "P1"); got != 9 {
		t.Errorf("Expected 9 available for (1, P1), got %d", got)
	}
	if got := inv.Available(hu("2"), "P1"); got != 3 {
		t.Errorf("Expected 3 available for (2, P1), got %d", got)
	}
	if got := inv.Available(hu("3"), "P1"); got != 0 {
		t.Errorf("Expected 0 available for unknown unit, got %d", got)
	}
}

func TestInventory_ReserveCapsAtAvailable(t *testing.T) {
	inv := New()
	inv.Add(hu("1"), "P1", 5)

	if got := inv.Reserve(hu("1"), "P1", 8); got != 5 {
		t.Fatalf("Expected to reserve 5, got %d", got)
	}
	if got := inv.Available(hu("1"), "P1"); got != 0 {
		t.Errorf("Expected nothing left, got %d", got)
	}
	if got := inv.Reserve(hu("1"), "P1", 1); got != 0 {
		t.Errorf("Expected 0 from drained unit, got %d", got)
	}
}

func TestInventory_RemovalOnEmpty(t *testing.T) {
	inv := New()
	inv.Add(hu("1"), "P1", 5)
	inv.Add(hu("1"), "P2", 2)
	inv.Add(hu("2"), "P1", 3)

	inv.Reserve(hu("1"), "P1", 5)
	if units := inv.UnitsHolding("P1"); len(units) != 1 || units[0] != hu("2") {
		t.Errorf("Expected only unit 2 to hold P1, got %v", units)
	}

	// Unit 1 still holds P2, so it must survive.
	if inv.Len() != 2 {
		t.Errorf("Expected 2 units, got %d", inv.Len())
	}

	inv.Reserve(hu("1"), "P2", 2)
	if inv.Len() != 1 {
		t.Errorf("Expected unit 1 removed entirely, got %d units", inv.Len())
	}

	inv.Reserve(hu("2"), "P1", 3)
	if !inv.IsEmpty() {
		t.Error("Expected empty inventory")
	}
}

func TestInventory_OrderPreservesFirstAppearance(t *testing.T) {
	inv := New()
	inv.Add(hu("5"), "P1", 1)
	inv.Add(hu("3"), "P1", 1)
	inv.Add(hu("5"), "P2", 1) // existing unit, order unchanged
	inv.Add(hu("9"), "P1", 1)

	units := inv.Units()
	want := []entities.HandlingUnit{hu("5"), hu("3"), hu("9")}
	if len(units) != len(want) {
		t.Fatalf("Expected %d units, got %d", len(want), len(units))
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("Expected unit %s at position %d, got %s", want[i], i, units[i])
		}
	}
}

func TestInventory_ReleaseRestoresCapacity(t *testing.T) {
	inv := New()
	inv.Add(hu("1"), "P1", 5)
	inv.Reserve(hu("1"), "P1", 5)

	inv.Release(hu("1"), "P1", 2)
	if got := inv.Available(hu("1"), "P1"); got != 2 {
		t.Errorf("Expected 2 available after release, got %d", got)
	}
	if inv.Len() != 1 {
		t.Errorf("Expected the unit recreated, got %d units", inv.Len())
	}
}

func TestInventory_ReserveIgnoresNonPositive(t *testing.T) {
	inv := New()
	inv.Add(hu("1"), "P1", 5)

	if got := inv.Reserve(hu("1"), "P1", 0); got != 0 {
		t.Errorf("Expected 0 reserved for zero amount, got %d", got)
	}
	if got := inv.Reserve(hu("1"), "P1", -3); got != 0 {
		t.Errorf("Expected 0 reserved for negative amount, got %d", got)
	}
	if got := inv.Available(hu("1"), "P1"); got != 5 {
		t.Errorf("Expected capacity untouched, got %d", got)
	}
}
