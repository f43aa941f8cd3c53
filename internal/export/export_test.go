package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/footprint/internal/model"
)

func sampleState() model.DerivedState {
	return model.DerivedState{
		StatementID: "stmt-1",
		Categories: []model.AggregatedCategory{
			{Name: "Food", TotalAmount: 100, TotalEmission: 10},
		},
		Subcategories: []model.AggregatedSubcategory{
			{Category: "Food", Name: "Groceries", Amount: 100, Emission: 10},
		},
		Budget: []model.BudgetEntry{
			{Category: "Travel", BudgetedKg: 50, ActualKg: 70, DeltaKg: 20, Status: "over"},
		},
		Totals: model.Totals{ActualEmission: 10},
		Projection: model.Projection{
			Categories: []model.ProjectionCategory{
				{Name: "Food", Amount: 100, Emission: 10, ReductionFraction: 0.15, AfterEmission: 8.5, Tips: []string{"a", "b"}},
			},
			Totals: model.ProjectionTotals{Actual: 10, Delta: -10, AfterActual: 8.5, OverallReductionPct: 15},
			Offset: model.OffsetEstimate{OffsetKg: 8.5, EstimatedCreditCostUSD: 0.085, EstimatedTrees: 1},
		},
	}
}

func TestWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleState()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	want := []string{SheetSummary, SheetCategories, SheetSubcategories, SheetBudget, SheetProjection}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	v, err := f.GetCellValue(SheetBudget, "F2")
	if err != nil || v != "over" {
		t.Errorf("Budget!F2 = %q (%v), want over", v, err)
	}
	v, err = f.GetCellValue(SheetProjection, "F2")
	if err != nil || v != "a; b" {
		t.Errorf("Projection!F2 = %q (%v), want \"a; b\"", v, err)
	}
	v, err = f.GetCellValue(SheetSummary, "B2")
	if err != nil || v != "stmt-1" {
		t.Errorf("Summary!B2 = %q (%v), want stmt-1", v, err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleState(), FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got model.DerivedState
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Projection.Offset.EstimatedTrees != 1 || got.StatementID != "stmt-1" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Errorf("ParseFormat(XLSX) = %v, %v", f, err)
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("ParseFormat(csv) should fail")
	}
	if FormatFromPath("out.JSON") != FormatJSON || FormatFromPath("out.xlsx") != FormatXLSX {
		t.Error("FormatFromPath mismatch")
	}
}
