package pipeline

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
)

// CompareBudget converts the payload's budget block into entries, in payload
// order. Delta and status are taken as given and never recomputed.
func CompareBudget(block model.BudgetBlock) []model.BudgetEntry {
	entries := make([]model.BudgetEntry, 0, len(block))
	for _, rb := range block {
		entries = append(entries, model.BudgetEntry{
			Category:   rb.Category,
			BudgetedKg: ToNumber(rb.BudgetedKg),
			ActualKg:   ToNumber(rb.ActualKg),
			DeltaKg:    ToNumber(rb.DeltaKg),
			DeltaPct:   ToNumber(rb.DeltaPct),
			Status:     ToText(rb.Status),
		})
	}
	return entries
}

// Recommend picks the over-budget categories with the largest delta and pairs
// each with its reduction tips. limit <= 0 returns all of them.
func Recommend(entries []model.BudgetEntry, table config.ReductionTable, limit int) []model.Recommendation {
	over := make([]model.BudgetEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsOver() {
			over = append(over, e)
		}
	}
	sort.SliceStable(over, func(i, j int) bool {
		return over[i].DeltaKg > over[j].DeltaKg
	})
	if limit > 0 && len(over) > limit {
		over = over[:limit]
	}

	recs := make([]model.Recommendation, 0, len(over))
	for _, e := range over {
		r := table.Lookup(e.Category)
		recs = append(recs, model.Recommendation{
			Category: e.Category,
			OverKg:   e.DeltaKg,
			ActualKg: e.ActualKg,
			Problem:  fmt.Sprintf("Over budget by %s kg CO2", trimFloat(e.DeltaKg)),
			Tips:     append([]string(nil), r.Tips...),
		})
	}
	return recs
}

// trimFloat formats with up to two decimals and no trailing zeros.
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
