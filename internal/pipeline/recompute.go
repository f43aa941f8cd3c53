package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
)

// DefaultRecommendations is how many over-budget categories Recompute reports.
const DefaultRecommendations = 2

// Recompute derives the full state for one payload using the built-in
// reduction table. It holds no state; every call starts from scratch.
func Recompute(p model.Payload) model.DerivedState {
	return RecomputeWith(p, config.DefaultReductions, DefaultRecommendations)
}

// RecomputeWith derives the full state with an explicit reduction table and
// recommendation limit.
func RecomputeWith(p model.Payload, table config.ReductionTable, recommendations int) model.DerivedState {
	cats, subs := Aggregate(p.Summary)
	budget := CompareBudget(p.BudgetComparison)
	projection := ProjectWith(p.Summary, p.Totals, table)

	var emissionSum float64
	for _, c := range cats {
		emissionSum += c.TotalEmission
	}

	return model.DerivedState{
		StatementID:       p.StatementID,
		Categories:        cats,
		Subcategories:     subs,
		Budget:            budget,
		Totals:            ComputeTotals(p.Totals, emissionSum),
		Projection:        projection,
		Recommendations:   Recommend(budget, table, recommendations),
		Uncategorized:     ToNumber(p.Uncategorized),
		TransactionsCount: ToCount(p.TransactionsCount),
	}
}

// Summarize condenses derived state into a history snapshot.
func Summarize(d model.DerivedState, filePath string, at time.Time) model.Snapshot {
	over := 0
	for _, b := range d.Budget {
		if b.IsOver() {
			over++
		}
	}

	pt := d.Projection.Totals
	return model.Snapshot{
		ID:                uuid.NewString(),
		FilePath:          filePath,
		StatementID:       d.StatementID,
		AnalyzedAt:        at,
		Categories:        len(d.Categories),
		Subcategories:     len(d.Subcategories),
		TotalAmount:       d.TotalAmount(),
		Allotted:          pt.Allotted,
		Actual:            pt.Actual,
		AfterActual:       pt.AfterActual,
		ReductionPct:      pt.OverallReductionPct,
		Compliant:         pt.Compliant,
		OffsetKg:          d.Projection.Offset.OffsetKg,
		CreditCostUSD:     d.Projection.Offset.EstimatedCreditCostUSD,
		Trees:             d.Projection.Offset.EstimatedTrees,
		OverBudget:        over,
		TransactionsCount: d.TransactionsCount,
	}
}
