package source

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePayload = `{
  "statement_id": "stmt-42",
  "summary": {
    "Food": {
      "Groceries": {"amount": 100, "emission": 10},
      "Restaurants": {"amount": "40.5", "emission": null}
    },
    "Travel": {
      "Fuel": {"amount": 60, "emission": 30}
    },
    "Empty": {}
  },
  "totals": {"total_allotted_emission": 35, "total_actual_emission": 40},
  "budget_comparison_by_category": {
    "Travel": {"budgeted_kg": 50, "actual_kg": 70, "delta_kg": 20, "status": "over"},
    "Food": {"budgeted_kg": 30, "actual_kg": 10, "delta_kg": -20, "delta_pct": -66.7, "status": "under"}
  },
  "uncategorized": 12.5,
  "transactions_count": 17
}`

func writePayload(t *testing.T, name, body string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	df, err := Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return df
}

func TestParsePayload_PreservesKeyOrder(t *testing.T) {
	p, err := ParsePayload(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}

	var names []string
	for _, c := range p.Summary {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "Food,Travel,Empty" {
		t.Fatalf("category order = %s, want Food,Travel,Empty", got)
	}
	if got := p.Summary[0].Subcategories[1].Name; got != "Restaurants" {
		t.Errorf("second Food subcategory = %q, want Restaurants", got)
	}
	if len(p.Summary[2].Subcategories) != 0 {
		t.Errorf("Empty has %d subcategories, want 0", len(p.Summary[2].Subcategories))
	}

	if len(p.BudgetComparison) != 2 || p.BudgetComparison[0].Category != "Travel" {
		t.Fatalf("budget block = %+v, want Travel first", p.BudgetComparison)
	}
}

func TestParsePayload_KeepsRawLeafValues(t *testing.T) {
	p, err := ParsePayload(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}

	groceries := p.Summary[0].Subcategories[0]
	if n, ok := groceries.Amount.(json.Number); !ok || n.String() != "100" {
		t.Errorf("Groceries amount = %#v, want json.Number(100)", groceries.Amount)
	}
	restaurants := p.Summary[0].Subcategories[1]
	if s, ok := restaurants.Amount.(string); !ok || s != "40.5" {
		t.Errorf("Restaurants amount = %#v, want \"40.5\"", restaurants.Amount)
	}
	if restaurants.Emission != nil {
		t.Errorf("Restaurants emission = %#v, want nil", restaurants.Emission)
	}

	if p.Totals == nil {
		t.Fatal("Totals is nil")
	}
	if n, ok := p.Totals.TotalActual.(json.Number); !ok || n.String() != "40" {
		t.Errorf("TotalActual = %#v, want 40", p.Totals.TotalActual)
	}
	if p.StatementID != "stmt-42" {
		t.Errorf("StatementID = %q, want stmt-42", p.StatementID)
	}
	if p.BudgetComparison[0].Status != "over" {
		t.Errorf("Travel status = %#v, want over", p.BudgetComparison[0].Status)
	}
}

func TestParsePayload_DuplicateKeys(t *testing.T) {
	body := `{"summary": {"A": {"x": {"amount": 1}}, "B": {}, "A": {"y": {"amount": 2}}}}`
	p, err := ParsePayload(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(p.Summary) != 2 {
		t.Fatalf("got %d categories, want 2", len(p.Summary))
	}
	if p.Summary[0].Name != "A" || p.Summary[0].Subcategories[0].Name != "y" {
		t.Fatalf("first category = %+v, want A with last value (y)", p.Summary[0])
	}
}

func TestParsePayload_MissingBlocks(t *testing.T) {
	p, err := ParsePayload(strings.NewReader(`{"summary": {}}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if p.Totals != nil {
		t.Errorf("Totals = %+v, want nil", p.Totals)
	}
	if len(p.BudgetComparison) != 0 {
		t.Errorf("BudgetComparison len = %d, want 0", len(p.BudgetComparison))
	}
}

func TestParsePayload_WrongShapesDegrade(t *testing.T) {
	body := `{
		"summary": {"Food": [1, 2], "Travel": {"Fuel": "oops", "Bus": {"amount": {"nested": 1}, "emission": [{"a": 1}, 4]}}},
		"totals": "n/a",
		"budget_comparison_by_category": [1]
	}`
	p, err := ParsePayload(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if len(p.Summary) != 2 || len(p.Summary[0].Subcategories) != 0 {
		t.Fatalf("summary = %+v, want Food with no leaves", p.Summary)
	}
	bus := p.Summary[1].Subcategories[1]
	if bus.Amount != nil {
		t.Errorf("Bus amount = %#v, want nil", bus.Amount)
	}
	if arr, ok := bus.Emission.([]any); !ok || len(arr) != 2 || arr[0] != nil || arr[1] != json.Number("4") {
		t.Errorf("Bus emission = %#v, want [nil 4]", bus.Emission)
	}
	if p.Totals != nil {
		t.Errorf("Totals = %+v, want nil for non-object block", p.Totals)
	}
	if len(p.BudgetComparison) != 0 {
		t.Errorf("BudgetComparison = %+v, want empty", p.BudgetComparison)
	}
}

func TestParsePayload_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", ErrNoPayload},
		{"array", "[1,2]", ErrNoPayload},
		{"scalar", "42", ErrNoPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(strings.NewReader(tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	for _, body := range []string{`{"summary": {`, `{"a" 1}`, `{} {}`} {
		if _, err := ParsePayload(strings.NewReader(body)); err == nil {
			t.Errorf("ParsePayload(%q) succeeded, want error", body)
		}
	}
}

func TestParseFile_StatementIDFromFileName(t *testing.T) {
	df := writePayload(t, "march-2025.json", `{"summary": {}}`)
	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("ParseFile: %v", res.Err)
	}
	if res.Payload.StatementID != "march-2025" {
		t.Fatalf("StatementID = %q, want march-2025", res.Payload.StatementID)
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.json")})
	if res.Err == nil {
		t.Fatal("expected error for missing file")
	}
}
