package reconcile

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/allocation"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
)

// Transfer records one automatic rebalancing move: Quantity units of Product
// taken from the output rows of From and given to To.
type Transfer struct {
	Product  entities.ProductID
	From     entities.HandlingUnit
	To       entities.HandlingUnit
	Quantity entities.Quantity
}

// productBalance collects the surpluses and deficits of one product in
// discovery order.
type productBalance struct {
	product   entities.ProductID
	surpluses []entities.Mismatch
	deficits  []entities.Mismatch
}

// Rebalance attempts to repair mismatches by moving output quantity from
// surplus handling units to deficit handling units of the same product,
// earliest-unresolved first, transferring min(surplus, deficit) at each
// step. Mismatches without a counterpart entry for their product are left
// alone and surface in the report. Runs at most one round per
// reconciliation; residual mismatches are reported rather than retried.
func (v *Verifier) Rebalance(rows []entities.ManifestRow, mismatches []entities.Mismatch) ([]entities.ManifestRow, []Transfer) {
	balances := groupByProduct(mismatches)

	var transfers []Transfer
	for _, bal := range balances {
		si, di := 0, 0
		for si < len(bal.surpluses) && di < len(bal.deficits) {
			surplus := &bal.surpluses[si]
			deficit := &bal.deficits[di]

			amount := surplus.Magnitude()
			if deficit.Magnitude() < amount {
				amount = deficit.Magnitude()
			}

			moved, ok := v.transfer(&rows, bal.product, surplus.HandlingUnit, deficit.HandlingUnit, amount)
			if !ok {
				// No row to clone for this product; nothing mechanical
				// can be done, leave the pair for the report.
				break
			}

			transfers = append(transfers, Transfer{
				Product:  bal.product,
				From:     surplus.HandlingUnit,
				To:       deficit.HandlingUnit,
				Quantity: moved,
			})
			v.log.Info("rebalanced",
				zap.String("product", string(bal.product)),
				zap.String("from", string(surplus.HandlingUnit)),
				zap.String("to", string(deficit.HandlingUnit)),
				zap.Int64("quantity", int64(moved)))

			surplus.Delta -= moved
			deficit.Delta += moved
			if surplus.Delta == 0 {
				si++
			}
			if deficit.Delta == 0 {
				di++
			}
		}
	}

	return rows, transfers
}

// groupByProduct partitions mismatches per product, keeping discovery order
// for products and within each list, and returns only products that have
// both sides to trade.
func groupByProduct(mismatches []entities.Mismatch) []*productBalance {
	byProduct := make(map[entities.ProductID]*productBalance)
	var order []*productBalance

	for _, m := range mismatches {
		bal, ok := byProduct[m.Product]
		if !ok {
			bal = &productBalance{product: m.Product}
			byProduct[m.Product] = bal
			order = append(order, bal)
		}
		if m.IsSurplus() {
			bal.surpluses = append(bal.surpluses, m)
		} else if m.IsDeficit() {
			bal.deficits = append(bal.deficits, m)
		}
	}

	var tradable []*productBalance
	for _, bal := range order {
		if len(bal.surpluses) > 0 && len(bal.deficits) > 0 {
			tradable = append(tradable, bal)
		}
	}
	return tradable
}

// transfer moves amount units of product between handling units in the
// output rows, decrementing the surplus side's rows and crediting the
// deficit side's row (synthesizing one from a clone if necessary). Each
// touched row's net value is recomputed from its own unit price. The
// inventory bookkeeping mirrors the move.
func (v *Verifier) transfer(rows *[]entities.ManifestRow, product entities.ProductID, from, to entities.HandlingUnit, amount entities.Quantity) (entities.Quantity, bool) {
	if !v.credit(rows, product, to, amount) {
		return 0, false
	}
	taken := v.debit(rows, product, from, amount)

	v.inv.Release(from, product, taken)
	v.inv.Reserve(to, product, taken)
	return taken, true
}

// debit removes up to amount units of product from the rows of hu, dropping
// rows that reach zero, and returns the quantity actually removed.
func (v *Verifier) debit(rows *[]entities.ManifestRow, product entities.ProductID, hu entities.HandlingUnit, amount entities.Quantity) entities.Quantity {
	remaining := amount
	out := (*rows)[:0]
	for i := range *rows {
		row := (*rows)[i]
		if remaining > 0 && rowMatches(&row, product, hu) {
			qty := allocation.ParseQuantity(row.PickQuantity())
			take := remaining
			if qty < take {
				take = qty
			}
			newQty := qty - take
			remaining -= take
			if newQty == 0 {
				continue // fully drained row disappears from the output
			}
			setRowQuantity(&row, newQty)
		}
		out = append(out, row)
	}
	*rows = out
	return amount - remaining
}

// credit adds amount units of product to hu's existing output row, or
// synthesizes one by cloning another row of the same product. Returns false
// when no row exists to clone.
func (v *Verifier) credit(rows *[]entities.ManifestRow, product entities.ProductID, hu entities.HandlingUnit, amount entities.Quantity) bool {
	for i := range *rows {
		row := &(*rows)[i]
		if rowMatches(row, product, hu) {
			setRowQuantity(row, allocation.ParseQuantity(row.PickQuantity())+amount)
			return true
		}
	}

	// No existing row for this handling unit; clone the last row of the
	// product so the synthesized line stays adjacent to its siblings.
	template := -1
	for i := range *rows {
		row := &(*rows)[i]
		if row.IsDetail() && row.Product() == product {
			template = i
		}
	}
	if template < 0 {
		return false
	}

	synth := (*rows)[template].Clone()
	synth.SetHandlingUnit(hu)
	setRowQuantity(&synth, amount)

	*rows = append(*rows, entities.ManifestRow{})
	copy((*rows)[template+2:], (*rows)[template+1:])
	(*rows)[template+1] = synth
	return true
}

// rowMatches reports whether the detail row belongs to (product, hu)
func rowMatches(row *entities.ManifestRow, product entities.ProductID, hu entities.HandlingUnit) bool {
	return row.IsDetail() &&
		row.Product() == product &&
		entities.NormalizeHandlingUnit(row.HandlingUnitField()) == hu
}

// setRowQuantity rewrites a row's quantity and recomputes its net value
// from the row's own unit price.
func setRowQuantity(row *entities.ManifestRow, qty entities.Quantity) {
	oldQty := allocation.ParseQuantity(row.PickQuantity())
	price := allocation.UnitPrice(row.NetValue(), oldQty)
	row.SetPickQuantity(allocation.FormatQuantity(qty))
	row.SetNetValue(allocation.FormatValue(price.Mul(decimal.NewFromInt(int64(qty)))))
}
