package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CatalogColumn describes one column of the labor catalog import file.
type CatalogColumn struct {
	Key      string
	Label    string
	Required bool
}

// CatalogColumns is the column layout of the import file and template.
var CatalogColumns = []CatalogColumn{
	{Key: "name", Label: "Name", Required: true},
	{Key: "hours_per_unit", Label: "Hours Per Unit", Required: true},
	{Key: "rate_per_hour", Label: "Rate Per Hour", Required: true},
	{Key: "unit_price", Label: "Unit Price"},
	{Key: "unit_of_measure", Label: "Unit of Measure"},
	{Key: "section", Label: "Section"},
	{Key: "reference_architecture", Label: "Reference Architecture"},
}

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CatalogImportResult is returned after parsing and validating an uploaded
// catalog file. Items holds only the rows without errors.
type CatalogImportResult struct {
	FileName  string             `json:"fileName"`
	TotalRows int                `json:"totalRows"`
	ValidRows int                `json:"validRows"`
	ErrorRows int                `json:"errorRows"`
	Errors    []ValidationError  `json:"errors"`
	Items     []LaborCatalogItem `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapHeadersToColumns maps uploaded column headers to catalog column keys.
// Returns the ordered list of keys (one per header, "" when unknown) and the
// labels of required columns that are missing.
func mapHeadersToColumns(headers []string) ([]string, []string) {
	labelToKey := make(map[string]string, len(CatalogColumns))
	for _, c := range CatalogColumns {
		labelToKey[strings.ToLower(c.Label)] = c.Key
		labelToKey[c.Key] = c.Key
	}

	mapped := make([]string, len(headers))
	seen := make(map[string]bool)
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))
		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
			seen[key] = true
		}
	}

	var missing []string
	for _, c := range CatalogColumns {
		if c.Required && !seen[c.Key] {
			missing = append(missing, c.Label)
		}
	}
	return mapped, missing
}

// ParseCatalogFile parses and validates an uploaded .csv or .xlsx labor
// catalog file.
func ParseCatalogFile(file io.Reader, fileName string) (*CatalogImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, missing := mapHeadersToColumns(headers)
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	result := &CatalogImportResult{
		FileName:  fileName,
		TotalRows: len(dataRows),
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row

		values := make(map[string]string, len(columnKeys))
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			values[key] = strings.TrimSpace(row[colIdx])
		}

		item, rowErrors := catalogItemFromRow(rowNum, values)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Items = append(result.Items, item)
	}
	result.ValidRows = len(result.Items)

	return result, nil
}

// catalogItemFromRow validates one import row and converts it.
func catalogItemFromRow(rowNum int, values map[string]string) (LaborCatalogItem, []ValidationError) {
	var errs []ValidationError

	item := LaborCatalogItem{
		Name:                  values["name"],
		UnitOfMeasure:         values["unit_of_measure"],
		Section:               values["section"],
		ReferenceArchitecture: values["reference_architecture"],
	}
	if item.Name == "" {
		errs = append(errs, ValidationError{Row: rowNum, Field: "Name", Message: "Name is required"})
	}

	numbers := []struct {
		key      string
		label    string
		required bool
		dst      *decimal.Decimal
	}{
		{"hours_per_unit", "Hours Per Unit", true, &item.HoursPerUnit},
		{"rate_per_hour", "Rate Per Hour", true, &item.RatePerHour},
		{"unit_price", "Unit Price", false, &item.UnitPrice},
	}
	for _, n := range numbers {
		raw := strings.ReplaceAll(values[n.key], ",", "")
		raw = strings.TrimPrefix(raw, DefaultCurrencySymbol)
		if raw == "" {
			if n.required {
				errs = append(errs, ValidationError{Row: rowNum, Field: n.label, Message: n.label + " is required"})
			}
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, ValidationError{Row: rowNum, Field: n.label, Message: n.label + " must be a number"})
			continue
		}
		if v.IsNegative() {
			errs = append(errs, ValidationError{Row: rowNum, Field: n.label, Message: "Hours, rate, and price must be zero or higher"})
			continue
		}
		*n.dst = v
	}

	return item, errs
}

// CommitCatalogImport inserts the parsed catalog items in a single
// transaction. Either every item is saved or none is.
func CommitCatalogImport(app core.App, items []LaborCatalogItem) (int, error) {
	col, err := app.FindCollectionByNameOrId("labor_items")
	if err != nil {
		return 0, fmt.Errorf("labor_items collection not found: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		for i, item := range items {
			record := core.NewRecord(col)
			record.Set("name", item.Name)
			record.Set("hours_per_unit", item.HoursPerUnit.InexactFloat64())
			record.Set("rate_per_hour", item.RatePerHour.InexactFloat64())
			record.Set("unit_price", item.EffectiveUnitPrice().InexactFloat64())
			record.Set("unit_price_override", !item.UnitPrice.IsZero())
			record.Set("unit_of_measure", item.UnitOfMeasure)
			record.Set("section", item.Section)
			record.Set("reference_architecture", item.ReferenceArchitecture)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save item %d (%s): %w", i+1, item.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// GenerateCatalogTemplate creates an empty .xlsx import template with the
// catalog header row and one example line.
func GenerateCatalogTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Labor Catalog"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	example := []any{"Access point install", 1.5, 95, "", "Access Point", "Wireless", "Campus Wi-Fi"}
	for i, c := range CatalogColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		label := c.Label
		if c.Required {
			label += " *"
		}
		f.SetCellValue(sheet, cell, label)

		exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, exampleCell, example[i])

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 22)
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(CatalogColumns), 1)
	f.SetCellStyle(sheet, "A1", lastCell, headerStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
