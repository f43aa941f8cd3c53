// Package export writes derived state to XLSX workbooks and JSON documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/footprint/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetSummary       = "Summary"
	SheetCategories    = "Categories"
	SheetSubcategories = "Subcategories"
	SheetBudget        = "Budget"
	SheetProjection    = "Projection"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts "xlsx" or "json" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want xlsx or json)", s)
}

// FormatFromPath infers the format from a file extension, defaulting to xlsx.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatXLSX
}

// Write exports d in format f.
func Write(w io.Writer, d model.DerivedState, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatXLSX:
		return WriteXLSX(w, d)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d model.DerivedState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteXLSX writes d as a workbook with one sheet per derived view.
func WriteXLSX(w io.Writer, d model.DerivedState) error {
	f, err := Workbook(d)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook for d. The caller closes it.
func Workbook(d model.DerivedState) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(d)},
		{SheetCategories, categoryRows(d)},
		{SheetSubcategories, subcategoryRows(d)},
		{SheetBudget, budgetRows(d)},
		{SheetProjection, projectionRows(d)},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("naming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", sh.name, err)
		}

		if err := writeRows(f, sh.name, sh.rows, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	return nil
}

func summaryRows(d model.DerivedState) [][]any {
	pt := d.Projection.Totals
	off := d.Projection.Offset
	return [][]any{
		{"Metric", "Value"},
		{"Statement", d.StatementID},
		{"Transactions", d.TransactionsCount},
		{"Total amount", d.TotalAmount()},
		{"Uncategorized", d.Uncategorized},
		{"Allotted emission (kg)", d.Totals.AllottedEmission},
		{"Actual emission (kg)", d.Totals.ActualEmission},
		{"Delta (kg)", pt.Delta},
		{"Compliant", pt.Compliant},
		{"After optimization (kg)", pt.AfterActual},
		{"Overall reduction (%)", pt.OverallReductionPct},
		{"Offset (kg)", off.OffsetKg},
		{"Credit cost (USD)", off.EstimatedCreditCostUSD},
		{"Trees", off.EstimatedTrees},
	}
}

func categoryRows(d model.DerivedState) [][]any {
	rows := [][]any{{"Category", "Amount", "Emission (kg)"}}
	for _, c := range d.Categories {
		rows = append(rows, []any{c.Name, c.TotalAmount, c.TotalEmission})
	}
	return rows
}

func subcategoryRows(d model.DerivedState) [][]any {
	rows := [][]any{{"Category", "Subcategory", "Amount", "Emission (kg)"}}
	for _, s := range d.Subcategories {
		rows = append(rows, []any{s.Category, s.Name, s.Amount, s.Emission})
	}
	return rows
}

func budgetRows(d model.DerivedState) [][]any {
	rows := [][]any{{"Category", "Budgeted (kg)", "Actual (kg)", "Delta (kg)", "Delta (%)", "Status"}}
	for _, b := range d.Budget {
		rows = append(rows, []any{b.Category, b.BudgetedKg, b.ActualKg, b.DeltaKg, b.DeltaPct, b.Status})
	}
	return rows
}

func projectionRows(d model.DerivedState) [][]any {
	rows := [][]any{{"Category", "Amount", "Emission (kg)", "Reduction", "After (kg)", "Tips"}}
	for _, c := range d.Projection.Categories {
		rows = append(rows, []any{c.Name, c.Amount, c.Emission, c.ReductionFraction, c.AfterEmission, strings.Join(c.Tips, "; ")})
	}
	return rows
}
