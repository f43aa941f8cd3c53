// Package pipeline derives rollups, budget comparisons and projections from
// analysis payloads, and loads payload files from disk.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/footprint/internal/model"
)

// Aggregate rolls the summary up into per-category totals and a flat list of
// subcategories. Both lists are sorted by amount descending; ties keep payload
// order. Categories without subcategories are kept with zero totals.
func Aggregate(summary model.RawSummary) ([]model.AggregatedCategory, []model.AggregatedSubcategory) {
	cats := make([]model.AggregatedCategory, 0, len(summary))
	subs := make([]model.AggregatedSubcategory, 0, summary.Leaves())

	for _, rc := range summary {
		cat := model.AggregatedCategory{Name: rc.Name}
		for _, rs := range rc.Subcategories {
			amount := ToNumber(rs.Amount)
			emission := ToNumber(rs.Emission)

			cat.TotalAmount += amount
			cat.TotalEmission += emission

			subs = append(subs, model.AggregatedSubcategory{
				Category: rc.Name,
				Name:     rs.Name,
				Amount:   amount,
				Emission: emission,
			})
		}
		cats = append(cats, cat)
	}

	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].TotalAmount > cats[j].TotalAmount
	})
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Amount > subs[j].Amount
	})

	return cats, subs
}

// TopSubcategories returns a copy of the first n subcategories. n <= 0 copies
// the whole list.
func TopSubcategories(subs []model.AggregatedSubcategory, n int) []model.AggregatedSubcategory {
	if n <= 0 || n > len(subs) {
		n = len(subs)
	}
	out := make([]model.AggregatedSubcategory, n)
	copy(out, subs[:n])
	return out
}

// SubcategoriesOf returns the subcategories belonging to one category, in the
// order they appear in subs.
func SubcategoriesOf(subs []model.AggregatedSubcategory, category string) []model.AggregatedSubcategory {
	var out []model.AggregatedSubcategory
	for _, s := range subs {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// ComputeTotals resolves allotted and actual emission. The payload's actual
// value wins when present and non-zero; otherwise the summed category emission
// is used.
func ComputeTotals(totals *model.RawTotals, emissionSum float64) model.Totals {
	var t model.Totals
	if totals != nil {
		t.AllottedEmission = ToNumber(totals.TotalAllotted)
		t.ActualEmission = ToNumber(totals.TotalActual)
	}
	if t.ActualEmission == 0 {
		t.ActualEmission = emissionSum
	}
	return t
}
