package handlers

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/config"
	"quotedesk/services"
	"quotedesk/templates"
)

// buildSummaryData formats a quote for the summary page.
func buildSummaryData(app core.App, quote *core.Record, symbol string) (templates.QuoteSummaryData, error) {
	fmtMoney := func(f string) string { return services.FormatMoney(dec(quote, f), symbol) }

	data := templates.QuoteSummaryData{
		ID:           quote.Id,
		QuoteNumber:  quote.GetString("quote_number"),
		CustomerName: quote.GetString("customer_name"),
		Kind:         quote.GetString("kind"),
		Status:       quote.GetString("status"),
		CreatedDate:  quoteDate(quote),
		Notes:        quote.GetString("notes"),
	}

	if data.Kind == string(services.QuoteKindLabor) {
		draft, err := loadQuoteDraft(app, quote)
		if err != nil {
			return data, err
		}
		budget := services.CalcLaborBudget(draft)
		for _, s := range budget.Solutions {
			data.Solutions = append(data.Solutions, templates.SummarySolution{
				Name:  s.Name,
				Hours: s.Hours.Round(2).String(),
				Total: services.FormatMoney(s.Total, symbol),
			})
		}
		data.Lines = []templates.SummaryLine{
			{Label: "Labor Subtotal", Value: services.FormatMoney(budget.LaborSubtotal, symbol)},
			{Label: "Project Management", Value: services.FormatMoney(budget.ProjectManagementCost, symbol)},
			{Label: "Adoption", Value: services.FormatMoney(budget.AdoptionCost, symbol)},
			{Label: "Total Hours", Value: budget.TotalHours.Round(2).String()},
			{Label: "Grand Total", Value: services.FormatMoney(budget.GrandTotal, symbol), Bold: true},
		}
		data.ExportURL = "/quotes/" + quote.Id + "/export/excel"
		data.ExportLabel = "Download Excel"
		return data, nil
	}

	export := buildQuoteExportData(app, quote, symbol)
	data.Description = export.Lines[0].Description
	data.Lines = []templates.SummaryLine{
		{Label: "Monthly Price", Value: fmtMoney("monthly_price")},
		{Label: fmt.Sprintf("Subtotal (%d months)", quote.GetInt("duration_months")), Value: fmtMoney("raw_total")},
	}
	if !export.DiscountAmount.IsZero() {
		data.Lines = append(data.Lines, templates.SummaryLine{
			Label: "Annual Discount (" + services.FormatPercent(export.DiscountPercent) + ")",
			Value: "-" + fmtMoney("discount_amount"),
		})
	}
	if !export.SetupFee.IsZero() {
		data.Lines = append(data.Lines, templates.SummaryLine{Label: "Setup Fee", Value: fmtMoney("setup_fee")})
	}
	data.Lines = append(data.Lines, templates.SummaryLine{Label: "Total", Value: fmtMoney("total_price"), Bold: true})
	data.ExportURL = "/quotes/" + quote.Id + "/export/pdf"
	data.ExportLabel = "Download PDF"
	return data, nil
}

// HandleQuoteSummary renders a read-only HTML summary of a quote. HTMX
// requests get the card alone.
func HandleQuoteSummary(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Quote")
		}
		data, err := buildSummaryData(app, quote, cfg.CurrencySymbol)
		if err != nil {
			return serverError(e, "summary: HandleQuoteSummary", err)
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.QuoteSummaryContent(data)
		} else {
			component = templates.QuoteSummaryPage(data)
		}
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return component.Render(e.Request.Context(), e.Response)
	}
}
