// Package inventory tracks the remaining quantity per (handling unit,
// product) pair derived from the positional document. It is the single piece
// of mutable shared state in a reconciliation run: the allocation engine
// drains it and the verifier adjusts it during rebalancing.
package inventory

import (
	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
)

// Inventory maps handling unit -> product -> remaining quantity.
//
// Entries whose quantity reaches zero are removed, and a handling unit with
// no remaining products is removed entirely; callers never observe stale
// zero-quantity leaves. Handling units keep their first-appearance order
// from the positional document, which drives the allocation fallback pass.
type Inventory struct {
	remaining map[entities.HandlingUnit]map[entities.ProductID]entities.Quantity
	order     []entities.HandlingUnit
}

// New creates an empty inventory
func New() *Inventory {
	return &Inventory{
		remaining: make(map[entities.HandlingUnit]map[entities.ProductID]entities.Quantity),
	}
}

// NewFromFacts aggregates unit facts into an inventory, summing quantities
// that share a (handling unit, product) pair.
func NewFromFacts(facts []entities.UnitFact) *Inventory {
	inv := New()
	for _, f := range facts {
		inv.Add(f.HandlingUnit, f.Product, f.Quantity)
	}
	return inv
}

// Add increases the remaining quantity for a (handling unit, product) pair,
// creating entries as needed. Non-positive amounts are ignored.
func (inv *Inventory) Add(hu entities.HandlingUnit, product entities.ProductID, qty entities.Quantity) {
	if qty <= 0 {
		return
	}
	products, ok := inv.remaining[hu]
	if !ok {
		products = make(map[entities.ProductID]entities.Quantity)
		inv.remaining[hu] = products
		inv.order = append(inv.order, hu)
	}
	products[product] += qty
}

// Available returns the remaining quantity for a (handling unit, product)
// pair, 0 if absent.
func (inv *Inventory) Available(hu entities.HandlingUnit, product entities.ProductID) entities.Quantity {
	return inv.remaining[hu][product]
}

// Reserve takes up to amount from the (handling unit, product) pair and
// returns the quantity actually reserved, which may be zero. Leaves emptied
// by the reservation are removed.
func (inv *Inventory) Reserve(hu entities.HandlingUnit, product entities.ProductID, amount entities.Quantity) entities.Quantity {
	if amount <= 0 {
		return 0
	}
	products, ok := inv.remaining[hu]
	if !ok {
		return 0
	}
	available := products[product]
	if available == 0 {
		return 0
	}

	reserved := amount
	if available < reserved {
		reserved = available
	}

	if available == reserved {
		delete(products, product)
		if len(products) == 0 {
			inv.removeUnit(hu)
		}
	} else {
		products[product] = available - reserved
	}
	return reserved
}

// Release returns quantity to the (handling unit, product) pair, recreating
// entries as needed. Used when the verifier moves output quantity away from
// a handling unit during rebalancing.
func (inv *Inventory) Release(hu entities.HandlingUnit, product entities.ProductID, amount entities.Quantity) {
	inv.Add(hu, product, amount)
}

// Units returns the handling units with remaining stock, in the order they
// first appeared in the positional document.
func (inv *Inventory) Units() []entities.HandlingUnit {
	units := make([]entities.HandlingUnit, len(inv.order))
	copy(units, inv.order)
	return units
}

// UnitsHolding returns the handling units that still hold the product, in
// first-appearance order.
func (inv *Inventory) UnitsHolding(product entities.ProductID) []entities.HandlingUnit {
	var units []entities.HandlingUnit
	for _, hu := range inv.order {
		if inv.remaining[hu][product] > 0 {
			units = append(units, hu)
		}
	}
	return units
}

// Len returns the number of handling units with remaining stock
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// IsEmpty reports whether nothing remains to allocate
func (inv *Inventory) IsEmpty() bool {
	return len(inv.order) == 0
}

// removeUnit drops a fully drained handling unit from the map and the order
func (inv *Inventory) removeUnit(hu entities.HandlingUnit) {
	delete(inv.remaining, hu)
	for i, u := range inv.order {
		if u == hu {
			inv.order = append(inv.order[:i], inv.order[i+1:]...)
			return
		}
	}
}
