package services

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// GenerateLaborBudgetExcel creates an Excel workbook from a labor budget and
// returns the file contents as a byte slice.
func GenerateLaborBudgetExcel(data LaborBudgetExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 chars.
	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Labor Budget"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	symbol := data.CurrencySymbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	moneyFmt := fmt.Sprintf(`"%s"#,##0.00`, symbol)

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 44, 10, 10, 14, 10, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	solutionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create solution style: %w", err)
	}

	solutionMoneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create solution money style: %w", err)
	}

	lineStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create line style: %w", err)
	}

	lineMoneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create line money style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	subtitle := data.QuoteNumber
	if data.CustomerName != "" {
		if subtitle != "" {
			subtitle += " · "
		}
		subtitle += data.CustomerName
	}
	if subtitle != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge quote ref: %w", err)
		}
		f.SetCellValue(sheetName, "A2", sanitizeExcelCell(subtitle))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Description", "Qty", "Hrs/Unit", "Rate/Hr", "Hours", "Cost"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		desc := r.Description
		if r.Level == 1 {
			desc = "  " + desc
		}

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(desc))
		setDecimalCell(f, sheetName, "C"+rowStr, r.Quantity)
		setDecimalCell(f, sheetName, "D"+rowStr, r.HoursPerUnit)
		setDecimalCell(f, sheetName, "E"+rowStr, r.RatePerHour)
		setDecimalCell(f, sheetName, "F"+rowStr, r.Hours)
		f.SetCellValue(sheetName, "G"+rowStr, r.Cost.InexactFloat64())

		style, moneyStyle := lineStyle, lineMoneyStyle
		if r.Level == 0 {
			style, moneyStyle = solutionStyle, solutionMoneyStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, "D"+rowStr, style)
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, moneyStyle)
		f.SetCellStyle(sheetName, "F"+rowStr, "F"+rowStr, style)
		f.SetCellStyle(sheetName, "G"+rowStr, "G"+rowStr, moneyStyle)

		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++

	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Labor Subtotal:", data.Budget.LaborSubtotal},
		{"Project Management (" + FormatPercent(data.ProjectManagementPercent) + "):", data.Budget.ProjectManagementCost},
		{"Adoption:", data.Budget.AdoptionCost},
		{"Grand Total:", data.Budget.GrandTotal},
	}
	for _, s := range summary {
		summaryRow := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "F"+summaryRow, s.label)
		f.SetCellStyle(sheetName, "F"+summaryRow, "F"+summaryRow, summaryLabelStyle)
		f.SetCellValue(sheetName, "G"+summaryRow, s.value.InexactFloat64())
		f.SetCellStyle(sheetName, "G"+summaryRow, "G"+summaryRow, summaryValueStyle)
		row++
	}

	totalHoursRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "F"+totalHoursRow, "Total Hours:")
	f.SetCellStyle(sheetName, "F"+totalHoursRow, "F"+totalHoursRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "G"+totalHoursRow, data.Budget.TotalHours.InexactFloat64())

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// setDecimalCell writes a numeric cell, leaving it blank for zero values so
// solution headings and adjustment rows stay uncluttered.
func setDecimalCell(f *excelize.File, sheet, cell string, v decimal.Decimal) {
	if v.IsZero() {
		return
	}
	f.SetCellValue(sheet, cell, v.InexactFloat64())
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
