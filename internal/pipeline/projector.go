package pipeline

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
)

// Project builds the post-optimization scenario using the built-in reduction table.
func Project(summary model.RawSummary, totals *model.RawTotals) model.Projection {
	return ProjectWith(summary, totals, config.DefaultReductions)
}

// ProjectWith builds the post-optimization scenario with an explicit reduction
// table. Categories are re-aggregated from the summary and sorted by emission
// descending; ties keep payload order.
func ProjectWith(summary model.RawSummary, totals *model.RawTotals, table config.ReductionTable) model.Projection {
	cats := make([]model.ProjectionCategory, 0, len(summary))
	var emissionSum, afterSum float64

	for _, rc := range summary {
		var amount, emission float64
		for _, rs := range rc.Subcategories {
			amount += ToNumber(rs.Amount)
			emission += ToNumber(rs.Emission)
		}

		r := table.Lookup(rc.Name)
		after := emission * (1 - r.Fraction)

		cats = append(cats, model.ProjectionCategory{
			Name:              rc.Name,
			Amount:            amount,
			Emission:          emission,
			ReductionFraction: r.Fraction,
			AfterEmission:     after,
			Tips:              append([]string(nil), r.Tips...),
		})
		emissionSum += emission
		afterSum += after
	}

	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Emission > cats[j].Emission
	})

	t := ComputeTotals(totals, emissionSum)
	pt := model.ProjectionTotals{
		Allotted:    t.AllottedEmission,
		Actual:      t.ActualEmission,
		Delta:       t.AllottedEmission - t.ActualEmission,
		AfterActual: afterSum,
		Compliant:   t.ActualEmission <= t.AllottedEmission,
	}
	if pt.Actual > 0 {
		pt.OverallReductionPct = (pt.Actual - pt.AfterActual) / pt.Actual * 100
	}

	return model.Projection{
		Categories: cats,
		Totals:     pt,
		Offset:     EstimateOffset(pt),
	}
}

// EstimateOffset prices the emission left above the allotted budget after
// projected reductions. Credit cost is computed in decimal to keep cents exact.
func EstimateOffset(t model.ProjectionTotals) model.OffsetEstimate {
	offset := math.Max(0, t.AfterActual-t.Allotted)
	if offset == 0 {
		return model.OffsetEstimate{}
	}

	cost := decimal.NewFromFloat(offset).
		Mul(decimal.NewFromFloat(config.CreditCostPerKgUSD)).
		InexactFloat64()

	return model.OffsetEstimate{
		OffsetKg:               offset,
		EstimatedCreditCostUSD: cost,
		EstimatedTrees:         int(math.Ceil(offset / config.TreeAbsorptionKgPerYear)),
	}
}
