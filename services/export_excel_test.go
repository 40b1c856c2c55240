package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleLaborExport() LaborBudgetExport {
	sw := LaborCatalogItem{ID: "sw", Name: "Switch install", HoursPerUnit: d("2"), RatePerHour: d("50")}
	solutions := []Solution{
		{
			Name:               "Network Refresh",
			Items:              []PricedLineEntry{NewPricedLineEntry(sw, d("3"))},
			OverheadPercent:    d("10"),
			ContingencyPercent: d("5"),
		},
	}
	draft := LaborDraft{Solutions: solutions, ProjectManagementPercent: d("10")}
	return LaborBudgetExport{
		Title:                    "Acme Labor Budget",
		QuoteNumber:              "Q-LAB-26-001",
		CustomerName:             "Acme",
		CreatedDate:              "2026-01-15",
		Rows:                     BuildLaborExportRows(solutions),
		ProjectManagementPercent: d("10"),
		Budget:                   CalcLaborBudget(draft),
	}
}

func TestBuildLaborExportRows(t *testing.T) {
	rows := sampleLaborExport().Rows

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (solution, line, overhead, contingency), got %d", len(rows))
	}
	if rows[0].Level != 0 || rows[0].Description != "Network Refresh" {
		t.Errorf("first row = %+v, want solution heading", rows[0])
	}
	if !rows[0].Cost.Equal(d("345")) {
		t.Errorf("solution cost = %s, want 345", rows[0].Cost)
	}
	if rows[1].Index != "1.1" || !rows[1].Cost.Equal(d("300")) {
		t.Errorf("line row = %+v", rows[1])
	}
	if rows[2].Description != "Overhead (10%)" || !rows[2].Cost.Equal(d("30")) {
		t.Errorf("overhead row = %+v", rows[2])
	}
	if rows[3].Description != "Contingency (5%)" || !rows[3].Cost.Equal(d("15")) {
		t.Errorf("contingency row = %+v", rows[3])
	}
}

func TestBuildLaborExportRows_NoAdjustments(t *testing.T) {
	item := LaborCatalogItem{ID: "x", Name: "Thing", HoursPerUnit: d("1"), RatePerHour: d("1")}
	rows := BuildLaborExportRows([]Solution{{Name: "Plain", Items: []PricedLineEntry{NewPricedLineEntry(item, d("1"))}}})
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}

func TestGenerateLaborBudgetExcel_Basic(t *testing.T) {
	result, err := GenerateLaborBudgetExcel(sampleLaborExport())
	if err != nil {
		t.Fatalf("GenerateLaborBudgetExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateLaborBudgetExcel() returned empty bytes")
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "Acme Labor Budget" {
		t.Errorf("expected sheet name 'Acme Labor Budget', got %v", sheets)
	}

	title, _ := f.GetCellValue(sheets[0], "A1")
	if title != "Acme Labor Budget" {
		t.Errorf("expected title 'Acme Labor Budget', got %q", title)
	}

	header, _ := f.GetCellValue(sheets[0], "G5")
	if header != "Cost" {
		t.Errorf("expected G5 header 'Cost', got %q", header)
	}

	solution, _ := f.GetCellValue(sheets[0], "B6")
	if solution != "Network Refresh" {
		t.Errorf("expected B6 'Network Refresh', got %q", solution)
	}

	line, _ := f.GetCellValue(sheets[0], "B7")
	if !strings.Contains(line, "Switch install") {
		t.Errorf("expected B7 to contain line name, got %q", line)
	}
}

func TestGenerateLaborBudgetExcel_EmptyTitle(t *testing.T) {
	data := LaborBudgetExport{CreatedDate: "2026-01-15"}

	result, err := GenerateLaborBudgetExcel(data)
	if err != nil {
		t.Fatalf("GenerateLaborBudgetExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); sheets[0] != "Labor Budget" {
		t.Errorf("expected default sheet name, got %q", sheets[0])
	}
}

func TestGenerateLaborBudgetExcel_LongTitleTruncated(t *testing.T) {
	data := sampleLaborExport()
	data.Title = strings.Repeat("L", 40)

	result, err := GenerateLaborBudgetExcel(data)
	if err != nil {
		t.Fatalf("GenerateLaborBudgetExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets[0]) != 31 {
		t.Errorf("expected sheet name truncated to 31 chars, got %d", len(sheets[0]))
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"@cmd", "'@cmd"},
		{"Normal", "Normal"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.input); got != tt.expect {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}
