package model

// BudgetEntry is one category of the budget comparison. Delta and status come from
// the payload as-is; they are never recomputed from budgeted/actual.
type BudgetEntry struct {
	Category   string  `json:"category"`
	BudgetedKg float64 `json:"budgeted_kg"`
	ActualKg   float64 `json:"actual_kg"`
	DeltaKg    float64 `json:"delta_kg"`
	DeltaPct   float64 `json:"delta_pct"`
	Status     string  `json:"status"`
}

// Budget status labels used by the upstream producer.
const (
	BudgetStatusOver  = "over"
	BudgetStatusUnder = "under"
)

// IsOver reports whether the upstream producer flagged this category as over budget.
func (b BudgetEntry) IsOver() bool {
	return b.Status == BudgetStatusOver
}
