// Package allocation splits aggregated manifest detail rows across handling
// units, constrained by the remaining capacity the positional document
// proved for each (handling unit, product) pair.
package allocation

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/inventory"
)

// Shortfall records a detail row whose quantity could not be fully placed.
// Allocated == 0 means no handling unit had any capacity and the original
// aggregated row was kept unchanged.
type Shortfall struct {
	Product          entities.ProductID
	HandlingUnitList string
	Requested        entities.Quantity
	Allocated        entities.Quantity
}

// Result is the outcome of allocating a whole manifest
type Result struct {
	Rows       []entities.ManifestRow
	Shortfalls []Shortfall
}

// Engine consumes aggregated detail rows and the inventory and produces
// single-unit rows. It is the only component that drains the inventory.
type Engine struct {
	inv *inventory.Inventory
	log *zap.Logger
}

// NewEngine creates an allocation engine over the given inventory
func NewEngine(inv *inventory.Inventory, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{inv: inv, log: log}
}

// ProcessAll allocates every row of the manifest in order. Non-detail rows
// pass through unchanged.
func (e *Engine) ProcessAll(rows []entities.ManifestRow) Result {
	var result Result
	for i := range rows {
		out, shortfall := e.ProcessRow(rows[i])
		result.Rows = append(result.Rows, out...)
		if shortfall != nil {
			result.Shortfalls = append(result.Shortfalls, *shortfall)
		}
	}
	return result
}

// ProcessRow turns one manifest row into its output rows. For an aggregated
// detail row (handling-unit field joined with "/") it emits one row per
// allocation; quantities sum to the original and never exceed remaining
// capacity. A row that cannot be fully placed is reported via the returned
// Shortfall, never dropped and never inflated.
func (e *Engine) ProcessRow(row entities.ManifestRow) ([]entities.ManifestRow, *Shortfall) {
	if !row.IsDetail() {
		return []entities.ManifestRow{row}, nil
	}

	huField := row.HandlingUnitField()
	if !strings.Contains(huField, entities.HandlingUnitSeparator) {
		return []entities.ManifestRow{e.passThrough(row)}, nil
	}

	qty := ParseQuantity(row.PickQuantity())
	if qty == 0 {
		// Nothing to split; keep the aggregated row as written.
		return []entities.ManifestRow{row}, nil
	}
	unitPrice := UnitPrice(row.NetValue(), qty)
	product := row.Product()

	allocations, remaining := e.allocate(product, row.HandlingUnits(), qty)

	if len(allocations) == 0 {
		e.log.Warn("no capacity found for aggregated row",
			zap.String("product", string(product)),
			zap.String("handlingUnits", huField),
			zap.Int64("requested", int64(qty)))
		return []entities.ManifestRow{row}, &Shortfall{
			Product:          product,
			HandlingUnitList: huField,
			Requested:        qty,
			Allocated:        0,
		}
	}

	out := make([]entities.ManifestRow, 0, len(allocations))
	for _, alloc := range allocations {
		out = append(out, buildSplitRow(row, alloc, unitPrice))
	}

	if remaining > 0 {
		e.log.Warn("partial allocation for aggregated row",
			zap.String("product", string(product)),
			zap.Int64("requested", int64(qty)),
			zap.Int64("shortfall", int64(remaining)))
		return out, &Shortfall{
			Product:          product,
			HandlingUnitList: huField,
			Requested:        qty,
			Allocated:        qty - remaining,
		}
	}
	return out, nil
}

// passThrough handles an already single-unit detail row: zero-pad the
// handling unit and reserve its quantity best-effort. The row is trusted
// as-is; an absent inventory entry is not an error. An empty field names no
// handling unit and is left empty.
func (e *Engine) passThrough(row entities.ManifestRow) entities.ManifestRow {
	field := strings.TrimSpace(row.HandlingUnitField())
	if field == "" {
		return row
	}
	out := row.Clone()
	hu := entities.NormalizeHandlingUnit(field)
	out.SetHandlingUnit(hu)
	e.inv.Reserve(hu, row.Product(), ParseQuantity(row.PickQuantity()))
	return out
}

// allocate runs the two allocation passes and returns the allocations made
// plus the unallocated remainder.
func (e *Engine) allocate(product entities.ProductID, listed []entities.HandlingUnit, qty entities.Quantity) ([]entities.Allocation, entities.Quantity) {
	var allocations []entities.Allocation
	remaining := qty

	// Listed-unit pass: the handling units named by the manifest, in the
	// order given.
	for _, hu := range listed {
		if remaining == 0 {
			break
		}
		if got := e.inv.Reserve(hu, product, remaining); got > 0 {
			allocations = append(allocations, entities.Allocation{HandlingUnit: hu, Quantity: got})
			remaining -= got
		}
	}

	// Fallback pass: the manifest list may be stale or incomplete, so pull
	// the rest from any handling unit the document proved to hold the
	// product, in document order.
	if remaining > 0 {
		for _, hu := range e.inv.UnitsHolding(product) {
			if remaining == 0 {
				break
			}
			if got := e.inv.Reserve(hu, product, remaining); got > 0 {
				allocations = append(allocations, entities.Allocation{HandlingUnit: hu, Quantity: got})
				remaining -= got
			}
		}
	}

	return allocations, remaining
}

// buildSplitRow clones the source row for one allocation, overwriting the
// handling unit, the quantity (3 decimals) and the net value recomputed from
// the original unit price (2 decimals, half away from zero).
func buildSplitRow(src entities.ManifestRow, alloc entities.Allocation, unitPrice decimal.Decimal) entities.ManifestRow {
	out := src.Clone()
	out.SetHandlingUnit(alloc.HandlingUnit)
	out.SetPickQuantity(FormatQuantity(alloc.Quantity))
	out.SetNetValue(FormatValue(unitPrice.Mul(decimal.NewFromInt(int64(alloc.Quantity)))))
	return out
}

// FormatQuantity renders an integer quantity with 3 decimal places
func FormatQuantity(qty entities.Quantity) string {
	return decimal.NewFromInt(int64(qty)).StringFixed(3)
}

// FormatValue renders a monetary amount rounded half away from zero to 2
// decimal places.
func FormatValue(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// ParseQuantity reads a manifest quantity field ("8.000") as an integer
func ParseQuantity(field string) entities.Quantity {
	d, err := decimal.NewFromString(strings.TrimSpace(field))
	if err != nil {
		return 0
	}
	return entities.Quantity(d.IntPart())
}

// UnitPrice derives the per-unit price from the extended net value. A zero
// quantity yields a zero price so splitting never divides by zero.
func UnitPrice(netField string, qty entities.Quantity) decimal.Decimal {
	if qty == 0 {
		return decimal.Zero
	}
	net, err := decimal.NewFromString(strings.TrimSpace(netField))
	if err != nil {
		return decimal.Zero
	}
	return net.Div(decimal.NewFromInt(int64(qty)))
}
