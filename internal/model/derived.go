package model

// AggregatedCategory is a category rollup over its subcategories.
type AggregatedCategory struct {
	Name          string  `json:"name"`
	TotalAmount   float64 `json:"total_amount"`
	TotalEmission float64 `json:"total_emission"`
}

// AggregatedSubcategory is one summary leaf with coerced numbers.
type AggregatedSubcategory struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Emission float64 `json:"emission"`
}

// Totals holds the allotted and actual emission for a payload.
type Totals struct {
	AllottedEmission float64 `json:"allotted_emission"`
	ActualEmission   float64 `json:"actual_emission"`
}

// ProjectionCategory is a category with its projected post-optimization emission.
type ProjectionCategory struct {
	Name              string   `json:"name"`
	Amount            float64  `json:"amount"`
	Emission          float64  `json:"emission"`
	ReductionFraction float64  `json:"reduction_fraction"`
	AfterEmission     float64  `json:"after_emission"`
	Tips              []string `json:"tips"`
}

// ProjectionTotals summarizes the projection against the allotted budget.
type ProjectionTotals struct {
	Allotted            float64 `json:"allotted"`
	Actual              float64 `json:"actual"`
	Delta               float64 `json:"delta"` // allotted - actual
	AfterActual         float64 `json:"after_actual"`
	Compliant           bool    `json:"compliant"`
	OverallReductionPct float64 `json:"overall_reduction_pct"`
}

// OffsetEstimate is the residual emission above budget after projected reductions.
type OffsetEstimate struct {
	OffsetKg               float64 `json:"offset_kg"`
	EstimatedCreditCostUSD float64 `json:"estimated_credit_cost_usd"`
	EstimatedTrees         int     `json:"estimated_trees"`
}

// Projection is the full Projector output.
type Projection struct {
	Categories []ProjectionCategory `json:"categories"`
	Totals     ProjectionTotals     `json:"totals"`
	Offset     OffsetEstimate       `json:"offset"`
}

// Recommendation points at an over-budget category and the tips that apply to it.
type Recommendation struct {
	Category string   `json:"category"`
	OverKg   float64  `json:"over_kg"`
	ActualKg float64  `json:"actual_kg"`
	Problem  string   `json:"problem"`
	Tips     []string `json:"tips"`
}

// DerivedState is everything computed from one payload. It is rebuilt from scratch
// on every delivery and must be treated as read-only by consumers.
type DerivedState struct {
	StatementID       string                  `json:"statement_id,omitempty"`
	Categories        []AggregatedCategory    `json:"categories"`
	Subcategories     []AggregatedSubcategory `json:"subcategories"`
	Budget            []BudgetEntry           `json:"budget"`
	Totals            Totals                  `json:"totals"`
	Projection        Projection              `json:"projection"`
	Recommendations   []Recommendation        `json:"recommendations"`
	Uncategorized     float64                 `json:"uncategorized"`
	TransactionsCount int                     `json:"transactions_count"`
}

// TotalAmount returns the summed spend across all categories.
func (d DerivedState) TotalAmount() float64 {
	var sum float64
	for _, c := range d.Categories {
		sum += c.TotalAmount
	}
	return sum
}
