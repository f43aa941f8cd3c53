package pipeline

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/theirongolddev/footprint/internal/model"
)

func num(s string) json.Number { return json.Number(s) }

func leafOf(name string, amount, emission any) model.RawSubcategory {
	return model.RawSubcategory{Name: name, Amount: amount, Emission: emission}
}

func category(name string, subs ...model.RawSubcategory) model.RawCategory {
	return model.RawCategory{Name: name, Subcategories: subs}
}

func approx(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}
