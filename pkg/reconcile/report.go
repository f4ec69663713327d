package reconcile

import (
	"fmt"
	"strings"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/allocation"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/domain/entities"
	"github.com/Koninklijke-van-Twist/Veridis/pkg/facts"
)

// PairResult is one verified (handling unit, product) balance
type PairResult struct {
	HandlingUnit entities.HandlingUnit
	Product      entities.ProductID
	Expected     entities.Quantity
	Actual       entities.Quantity
}

// OK reports whether the pair conserves its quantity
func (p PairResult) OK() bool {
	return p.Expected == p.Actual
}

// Report is the outcome of a full reconciliation run
type Report struct {
	Header     facts.Header
	Pairs      []PairResult
	Transfers  []Transfer
	Shortfalls []allocation.Shortfall
}

// OK reports whether every pair balances
func (r *Report) OK() bool {
	for _, p := range r.Pairs {
		if !p.OK() {
			return false
		}
	}
	return true
}

// BuildReport verifies the final rows and assembles the run report
func (v *Verifier) BuildReport(rows []entities.ManifestRow, header facts.Header, transfers []Transfer, shortfalls []allocation.Shortfall) *Report {
	expected := v.expected()
	actual := v.actual(rows)

	report := &Report{
		Header:     header,
		Transfers:  transfers,
		Shortfalls: shortfalls,
	}
	for _, k := range expected.order {
		report.Pairs = append(report.Pairs, PairResult{
			HandlingUnit: k.HandlingUnit,
			Product:      k.Product,
			Expected:     expected.byKey[k],
			Actual:       actual.byKey[k],
		})
	}
	for _, k := range actual.order {
		if _, known := expected.byKey[k]; known {
			continue
		}
		report.Pairs = append(report.Pairs, PairResult{
			HandlingUnit: k.HandlingUnit,
			Product:      k.Product,
			Expected:     0,
			Actual:       actual.byKey[k],
		})
	}
	return report
}

// RenderText renders the human-readable verification report: one section per
// handling unit, a line per product with expected vs actual counts and an
// OK/MISMATCH marker, the transfers performed, and a final overall line.
func (r *Report) RenderText() string {
	var sb strings.Builder

	sb.WriteString("═══════════════════════════════════════════════════════════════\n")
	sb.WriteString("                 RECONCILIATION VERIFICATION\n")
	sb.WriteString("═══════════════════════════════════════════════════════════════\n\n")

	sb.WriteString(fmt.Sprintf("Customer: %s  Invoice: %s  Delivery: %s\n\n",
		orDash(r.Header.CustomerNumber),
		orDash(r.Header.InvoiceNumber),
		orDash(r.Header.DeliveryNumber)))

	var currentHU entities.HandlingUnit
	for _, p := range r.pairsGroupedByUnit() {
		if p.HandlingUnit != currentHU {
			currentHU = p.HandlingUnit
			sb.WriteString(fmt.Sprintf("Handling Unit %s\n", currentHU))
			sb.WriteString("────────────────────────────────────────────────────────────────\n")
		}
		marker := "OK"
		if !p.OK() {
			marker = "MISMATCH"
		}
		sb.WriteString(fmt.Sprintf("  Product: %-20s Expected: %6d  Actual: %6d  %s\n",
			p.Product, p.Expected, p.Actual, marker))
	}
	sb.WriteString("\n")

	if len(r.Transfers) > 0 {
		sb.WriteString("TRANSFERS PERFORMED\n")
		sb.WriteString("────────────────────────────────────────────────────────────────\n")
		for _, t := range r.Transfers {
			sb.WriteString(fmt.Sprintf("  %d x %s moved %s -> %s\n",
				t.Quantity, t.Product, t.From, t.To))
		}
		sb.WriteString("\n")
	}

	if len(r.Shortfalls) > 0 {
		sb.WriteString("ALLOCATION SHORTFALLS\n")
		sb.WriteString("────────────────────────────────────────────────────────────────\n")
		for _, s := range r.Shortfalls {
			sb.WriteString(fmt.Sprintf("  Product: %-20s Requested: %6d  Allocated: %6d  (units: %s)\n",
				s.Product, s.Requested, s.Allocated, s.HandlingUnitList))
		}
		sb.WriteString("\n")
	}

	if r.OK() {
		sb.WriteString("RESULT: OK\n")
	} else {
		sb.WriteString("RESULT: FAILED\n")
	}
	return sb.String()
}

// pairsGroupedByUnit reorders the pairs so every handling unit's pairs are
// contiguous. Units keep first-appearance order; pair order within a unit is
// preserved. Discovery order can interleave units when the document lists
// products across units, and each unit must render as a single section.
func (r *Report) pairsGroupedByUnit() []PairResult {
	byUnit := make(map[entities.HandlingUnit][]PairResult)
	var order []entities.HandlingUnit
	for _, p := range r.Pairs {
		if _, seen := byUnit[p.HandlingUnit]; !seen {
			order = append(order, p.HandlingUnit)
		}
		byUnit[p.HandlingUnit] = append(byUnit[p.HandlingUnit], p)
	}

	grouped := make([]PairResult, 0, len(r.Pairs))
	for _, u := range order {
		grouped = append(grouped, byUnit[u]...)
	}
	return grouped
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
