// Package model defines the payload and derived-state types shared across footprint.
package model

// Payload is one analysis delivery: a categorized transaction summary plus the
// optional totals and budget comparison blocks produced upstream.
//
// Leaf values are kept as decoded JSON (json.Number, string, bool, nil, ...) and are
// only coerced to numbers by the pipeline.
type Payload struct {
	StatementID       string
	Summary           RawSummary
	Totals            *RawTotals // nil when the block is absent
	BudgetComparison  BudgetBlock
	Uncategorized     any
	TransactionsCount any
}

// RawSummary is the category -> subcategory -> {amount, emission} mapping in
// payload key order.
type RawSummary []RawCategory

// RawCategory is one top-level summary key.
type RawCategory struct {
	Name          string
	Subcategories []RawSubcategory
}

// RawSubcategory is one leaf of the summary.
type RawSubcategory struct {
	Name     string
	Amount   any
	Emission any
}

// RawTotals holds the payload's optional totals block.
type RawTotals struct {
	TotalAllotted any
	TotalActual   any
}

// BudgetBlock is the optional budget_comparison_by_category block in payload order.
type BudgetBlock []RawBudget

// RawBudget is a single category entry of the budget comparison block.
type RawBudget struct {
	Category   string
	BudgetedKg any
	ActualKg   any
	DeltaKg    any
	DeltaPct   any
	Status     any
}

// Leaves returns the total number of subcategory entries in the summary.
func (s RawSummary) Leaves() int {
	n := 0
	for _, c := range s {
		n += len(c.Subcategories)
	}
	return n
}
