package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	pdfMutedColor  = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfHeaderColor = &props.Color{Red: 33, Green: 37, Blue: 41}
)

// GenerateQuotePDF creates an MSP quote document using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateQuotePDF(data QuoteExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	money := func(v decimal.Decimal) string {
		symbol := data.CurrencySymbol
		if symbol == "" {
			symbol = DefaultCurrencySymbol
		}
		return FormatMoney(v, symbol)
	}

	addQuoteHeader(m, data)
	addQuoteTableHeader(m)
	for _, line := range data.Lines {
		addQuoteLine(m, line, money)
	}
	addQuoteSummary(m, data, money)
	if data.Notes != "" {
		addQuoteNotes(m, data.Notes)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addQuoteHeader adds the title block: quote number, customer and service.
func addQuoteHeader(m core.Maroto, data QuoteExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Managed Services Quote", props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	muted := props.Text{Size: 9, Align: align.Left, Color: pdfMutedColor}
	mutedRight := muted
	mutedRight.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("Quote: "+data.QuoteNumber, muted)),
			col.New(6).Add(text.New("Date: "+data.CreatedDate, mutedRight)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("Customer: "+data.CustomerName, muted)),
			col.New(6).Add(text.New("Status: "+data.Status, mutedRight)),
		),
		row.New(6).Add(
			col.New(12).Add(text.New(fmt.Sprintf("Service: %s, %s", data.OfferingName, data.ServiceLevelName), muted)),
		),
	)

	m.AddRows(row.New(4))
}

// addQuoteTableHeader adds the column header row for the line table.
func addQuoteTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: pdfHeaderColor}

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(text.New("Service", headerTextLeft)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Monthly Price", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Months", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Amount", headerText)).WithStyle(&headerCell),
		),
	)
}

// addQuoteLine adds one priced row to the line table.
func addQuoteLine(m core.Maroto, line QuoteExportLine, money func(decimal.Decimal) string) {
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New(line.Description, left)),
			col.New(2).Add(text.New(line.PricingUnit, base)),
			col.New(2).Add(text.New(money(line.UnitPrice), right)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", line.Quantity), right)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", line.Months), right)),
			col.New(2).Add(text.New(money(line.Amount), right)),
		),
	)
}

type pdfSummaryLine struct {
	label string
	value string
}

// addQuoteSummary adds the totals block at the bottom of the quote.
func addQuoteSummary(m core.Maroto, data QuoteExportData, money func(decimal.Decimal) string) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueStyle := labelStyle

	lines := []pdfSummaryLine{
		{"Monthly Price", money(data.MonthlyPrice)},
		{fmt.Sprintf("Subtotal (%d months)", data.DurationMonths), money(data.RawTotal)},
	}
	if !data.DiscountAmount.IsZero() {
		lines = append(lines, pdfSummaryLine{"Annual Discount (" + FormatPercent(data.DiscountPercent) + ")", "-" + money(data.DiscountAmount)})
	}
	if !data.SetupFee.IsZero() {
		lines = append(lines, pdfSummaryLine{"Setup Fee", money(data.SetupFee)})
	}
	lines = append(lines, pdfSummaryLine{"Total", money(data.TotalPrice)})

	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(l.value, valueStyle)).WithStyle(summaryCell),
			),
		)
	}
}

// addQuoteNotes adds free-text notes under the summary.
func addQuoteNotes(m core.Maroto, notes string) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(text.New("Notes: "+notes, props.Text{
				Size:  8,
				Align: align.Left,
				Color: pdfMutedColor,
			})),
		),
	)
}
