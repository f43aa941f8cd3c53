package config

// Reduction is the heuristic applied to one category's emission when projecting
// the post-optimization scenario.
type Reduction struct {
	Fraction float64
	Tips     []string
}

// DefaultCategory is the reduction table key used for unrecognized categories.
const DefaultCategory = "default"

// Offset and presentation constants.
const (
	// CreditCostPerKgUSD is the carbon credit price, $10 per metric tonne.
	CreditCostPerKgUSD = 0.01

	// TreeAbsorptionKgPerYear is the CO2 one tree absorbs per year.
	TreeAbsorptionKgPerYear = 22.0

	// SubcategoryChartLimit caps the subcategory distribution view.
	SubcategoryChartLimit = 8
)

// ReductionTable maps exact category names to their reduction heuristic.
// A usable table always carries a DefaultCategory entry.
type ReductionTable map[string]Reduction

// DefaultReductions is the built-in heuristic table. Category names are matched by
// exact string equality; anything else resolves to the default entry.
var DefaultReductions = ReductionTable{
	"Finances": {
		Fraction: 0.25,
		Tips:     []string{"Consolidate loans", "Switch to digital statements", "Avoid late fees"},
	},
	"Food": {
		Fraction: 0.15,
		Tips:     []string{"Choose plant-forward meals", "Plan grocery trips", "Buy seasonal/local produce"},
	},
	"Shopping": {
		Fraction: 0.35,
		Tips:     []string{"Buy less, choose durable", "Prefer second-hand", "Avoid fast-fashion & bulk shipping"},
	},
	"Travel": {
		Fraction: 0.40,
		Tips:     []string{"Use public transit / bike", "Combine errands", "Choose EV / carpool"},
	},
	"Housing": {
		Fraction: 0.20,
		Tips:     []string{"Fix leaks", "Install low-flow fixtures", "Reduce hot water use"},
	},
	"Health": {
		Fraction: 0.10,
		Tips:     []string{"Telehealth where possible", "Choose low-packaging products"},
	},
	"Entertainment": {
		Fraction: 0.20,
		Tips:     []string{"Stream Smart (lower quality)", "Share subscriptions"},
	},
	"Charity": {
		Fraction: 0.00,
		Tips:     []string{"Keep charitable giving but favour low-overhead options"},
	},
	DefaultCategory: {
		Fraction: 0.15,
		Tips:     []string{"Review subscriptions", "Reduce single-use purchases"},
	},
}

// Lookup returns the reduction for a category, falling back to the default entry.
// It never fails: a table without a default entry falls back to the built-in one.
func (t ReductionTable) Lookup(category string) Reduction {
	if r, ok := t[category]; ok {
		return r
	}
	if r, ok := t[DefaultCategory]; ok {
		return r
	}
	return DefaultReductions[DefaultCategory]
}

// Known reports whether the category has its own entry (not the default).
func (t ReductionTable) Known(category string) bool {
	if category == DefaultCategory {
		return false
	}
	_, ok := t[category]
	return ok
}

// ReductionsWithOverrides returns a copy of the built-in table with the config's
// overrides applied. Fractions are clamped to [0, 1]; an override without tips keeps
// the base tips (or the default tips for a new category).
func ReductionsWithOverrides(cfg Config) ReductionTable {
	table := make(ReductionTable, len(DefaultReductions)+len(cfg.Reductions.Overrides))
	for name, r := range DefaultReductions {
		table[name] = r
	}

	for name, o := range cfg.Reductions.Overrides {
		base := table.Lookup(name)
		r := Reduction{Fraction: base.Fraction, Tips: base.Tips}
		if o.Fraction != nil {
			r.Fraction = clampFraction(*o.Fraction)
		}
		if len(o.Tips) > 0 {
			r.Tips = append([]string(nil), o.Tips...)
		}
		table[name] = r
	}
	return table
}

func clampFraction(f float64) float64 {
	switch {
	case f != f: // NaN
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
