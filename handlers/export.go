package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/config"
	"quotedesk/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// quoteDate formats a record's creation date for documents.
func quoteDate(r *core.Record) string {
	created := r.GetDateTime("created")
	if created.IsZero() {
		return time.Now().Format("02 Jan 2006")
	}
	return created.Time().Format("02 Jan 2006")
}

// buildQuoteExportData assembles the document data of an MSP quote from its
// stored snapshot. Option names are looked up for the description only.
func buildQuoteExportData(app core.App, quote *core.Record, symbol string) services.QuoteExportData {
	description := quote.GetString("offering_name")
	if level := quote.GetString("service_level_name"); level != "" {
		if description != "" {
			description += " - "
		}
		description += level
	}
	if ids := quote.GetStringSlice("options"); len(ids) > 0 {
		options, err := app.FindRecordsByIds("service_level_options", ids)
		if err != nil {
			log.Printf("export: buildQuoteExportData: options for %s: %v", quote.Id, err)
		}
		var names []string
		for _, o := range options {
			names = append(names, o.GetString("name"))
		}
		if len(names) > 0 {
			description += " (+ " + strings.Join(names, ", ") + ")"
		}
	}

	return services.QuoteExportData{
		QuoteNumber:      quote.GetString("quote_number"),
		CustomerName:     quote.GetString("customer_name"),
		OfferingName:     quote.GetString("offering_name"),
		ServiceLevelName: quote.GetString("service_level_name"),
		Status:           quote.GetString("status"),
		CreatedDate:      quoteDate(quote),
		CurrencySymbol:   symbol,
		DurationMonths:   quote.GetInt("duration_months"),
		Lines: []services.QuoteExportLine{{
			Description: description,
			PricingUnit: quote.GetString("pricing_unit"),
			UnitPrice:   dec(quote, "unit_price"),
			Quantity:    quote.GetInt("quantity"),
			Months:      quote.GetInt("duration_months"),
			Amount:      dec(quote, "raw_total"),
		}},
		MonthlyPrice:    dec(quote, "monthly_price"),
		RawTotal:        dec(quote, "raw_total"),
		DiscountPercent: dec(quote, "annual_discount_percent"),
		DiscountAmount:  dec(quote, "discount_amount"),
		SetupFee:        dec(quote, "setup_fee"),
		TotalPrice:      dec(quote, "total_price"),
		Notes:           quote.GetString("notes"),
	}
}

// buildLaborExportData assembles the workbook data of a labor quote.
func buildLaborExportData(app core.App, quote *core.Record, symbol string) (services.LaborBudgetExport, error) {
	draft, err := loadQuoteDraft(app, quote)
	if err != nil {
		return services.LaborBudgetExport{}, err
	}
	return services.LaborBudgetExport{
		Title:                    "Labor Budget",
		QuoteNumber:              quote.GetString("quote_number"),
		CustomerName:             quote.GetString("customer_name"),
		CreatedDate:              quoteDate(quote),
		CurrencySymbol:           symbol,
		Rows:                     services.BuildLaborExportRows(draft.Solutions),
		ProjectManagementPercent: draft.ProjectManagementPercent,
		Budget:                   services.CalcLaborBudget(draft),
	}, nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// findQuoteOfKind loads a quote and checks its kind, writing the error
// response itself when the quote is missing or of the wrong kind.
func findQuoteOfKind(e *core.RequestEvent, app core.App, kind services.QuoteKind) (*core.Record, error) {
	quote, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
	if err != nil {
		return nil, notFound(e, "Quote")
	}
	if quote.GetString("kind") != string(kind) {
		return nil, ErrorJSON(e, http.StatusBadRequest,
			fmt.Sprintf("Only %s quotes can be exported in this format", kind), nil)
	}
	return quote, nil
}

// HandleQuoteExportPDF downloads an MSP quote as a PDF document.
func HandleQuoteExportPDF(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := findQuoteOfKind(e, app, services.QuoteKindMSP)
		if quote == nil {
			return err
		}

		pdfBytes, err := services.GenerateQuotePDF(buildQuoteExportData(app, quote, cfg.CurrencySymbol))
		if err != nil {
			return serverError(e, "export_pdf: failed to generate", err)
		}

		filename := fmt.Sprintf("Quote_%s.pdf", sanitizeFilename(quote.GetString("quote_number")))
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleQuoteExportExcel downloads a labor quote as an Excel budget.
func HandleQuoteExportExcel(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := findQuoteOfKind(e, app, services.QuoteKindLabor)
		if quote == nil {
			return err
		}

		data, err := buildLaborExportData(app, quote, cfg.CurrencySymbol)
		if err != nil {
			return serverError(e, "export_excel: load", err)
		}
		xlsxBytes, err := services.GenerateLaborBudgetExcel(data)
		if err != nil {
			return serverError(e, "export_excel: failed to generate", err)
		}

		filename := fmt.Sprintf("Labor_%s.xlsx", sanitizeFilename(quote.GetString("quote_number")))
		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleBlueprintExportExcel downloads a blueprint's current budget as an
// Excel workbook, priced against today's catalog.
func HandleBlueprintExportExcel(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		bp, err := app.FindRecordById("solution_blueprints", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Blueprint")
		}
		_, draft, err := loadBlueprint(app, bp)
		if err != nil {
			return serverError(e, "export_excel: blueprint", err)
		}

		xlsxBytes, err := services.GenerateLaborBudgetExcel(services.LaborBudgetExport{
			Title:                    bp.GetString("name"),
			CreatedDate:              time.Now().Format("02 Jan 2006"),
			CurrencySymbol:           cfg.CurrencySymbol,
			Rows:                     services.BuildLaborExportRows(draft.Solutions),
			ProjectManagementPercent: draft.ProjectManagementPercent,
			Budget:                   services.CalcLaborBudget(draft),
		})
		if err != nil {
			return serverError(e, "export_excel: failed to generate", err)
		}

		filename := fmt.Sprintf("Blueprint_%s.xlsx", sanitizeFilename(bp.GetString("name")))
		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
