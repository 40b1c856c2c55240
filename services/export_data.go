package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuoteExportLine is one priced row of an MSP quote document.
type QuoteExportLine struct {
	Description string
	PricingUnit string
	UnitPrice   decimal.Decimal // per unit per month
	Quantity    int
	Months      int
	Amount      decimal.Decimal // UnitPrice * Quantity * Months
}

// QuoteExportData holds all data needed to render an MSP quote document.
type QuoteExportData struct {
	QuoteNumber      string
	CustomerName     string
	OfferingName     string
	ServiceLevelName string
	Status           string
	CreatedDate      string
	CurrencySymbol   string
	DurationMonths   int
	Lines            []QuoteExportLine
	MonthlyPrice     decimal.Decimal
	RawTotal         decimal.Decimal
	DiscountPercent  decimal.Decimal
	DiscountAmount   decimal.Decimal
	SetupFee         decimal.Decimal
	TotalPrice       decimal.Decimal
	Notes            string
}

// LaborExportRow is a single row in the labor budget export: a solution
// heading, one of its lines, or its overhead/contingency adjustments.
type LaborExportRow struct {
	Level        int    // 0 = solution, 1 = line or adjustment
	Index        string // "1", "1.1" etc; empty for adjustments
	Description  string
	Quantity     decimal.Decimal
	HoursPerUnit decimal.Decimal
	RatePerHour  decimal.Decimal
	Hours        decimal.Decimal
	Cost         decimal.Decimal
}

// LaborBudgetExport holds all data needed to render a labor budget workbook.
type LaborBudgetExport struct {
	Title                    string
	QuoteNumber              string
	CustomerName             string
	CreatedDate              string
	CurrencySymbol           string
	Rows                     []LaborExportRow
	ProjectManagementPercent decimal.Decimal
	Budget                   LaborBudget
}

// BuildLaborExportRows flattens solutions into export rows. Each solution
// heading carries the solution total; adjustment rows follow its lines.
func BuildLaborExportRows(solutions []Solution) []LaborExportRow {
	var rows []LaborExportRow
	for i, s := range solutions {
		totals := CalcSolution(s)
		rows = append(rows, LaborExportRow{
			Level:       0,
			Index:       fmt.Sprintf("%d", i+1),
			Description: s.Name,
			Hours:       totals.Hours,
			Cost:        totals.Total,
		})

		for j, item := range s.Items {
			rows = append(rows, LaborExportRow{
				Level:        1,
				Index:        fmt.Sprintf("%d.%d", i+1, j+1),
				Description:  item.Name(),
				Quantity:     item.Quantity(),
				HoursPerUnit: item.HoursPerUnit(),
				RatePerHour:  item.RatePerHour(),
				Hours:        item.LineHours(),
				Cost:         item.LineCost(),
			})
		}

		if !s.OverheadPercent.IsZero() {
			rows = append(rows, LaborExportRow{
				Level:       1,
				Description: "Overhead (" + FormatPercent(s.OverheadPercent) + ")",
				Cost:        totals.Overhead,
			})
		}
		if !s.ContingencyPercent.IsZero() {
			rows = append(rows, LaborExportRow{
				Level:       1,
				Description: "Contingency (" + FormatPercent(s.ContingencyPercent) + ")",
				Cost:        totals.Contingency,
			})
		}
	}
	return rows
}
