package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

const negativeLaborMessage = "Hours, rate, and price must be zero or higher"

// maxImportSize bounds uploaded catalog files.
const maxImportSize = 10 << 20

// applyLaborItemFields copies present payload fields onto a catalog item.
// A unitPrice of zero or null clears the override so the price follows
// hours * rate.
func applyLaborItemFields(r *core.Record, p *payload, creating bool) {
	if creating || p.Has("name") {
		r.Set("name", p.RequiredString("name", 200))
	}

	readNonNegative := func(field, column string) {
		if !p.Has(field) {
			return
		}
		v := p.Decimal(field)
		if v.IsNegative() {
			p.Fail(field, negativeLaborMessage)
			return
		}
		r.Set(column, v.InexactFloat64())
	}
	readNonNegative("hoursPerUnit", "hours_per_unit")
	readNonNegative("ratePerHour", "rate_per_hour")

	for field, column := range map[string]string{
		"unitOfMeasure":         "unit_of_measure",
		"section":               "section",
		"referenceArchitecture": "reference_architecture",
	} {
		if p.Has(field) {
			r.Set(column, p.String(field))
		}
	}

	override := decimal.Zero
	if p.Has("unitPrice") {
		override = p.Decimal("unitPrice")
		if override.IsNegative() {
			p.Fail("unitPrice", negativeLaborMessage)
			override = decimal.Zero
		}
		r.Set("unit_price_override", !override.IsZero())
	} else if r.GetBool("unit_price_override") {
		override = dec(r, "unit_price")
	}

	item := laborItemFromRecord(r)
	item.UnitPrice = override
	r.Set("unit_price", item.EffectiveUnitPrice().InexactFloat64())
}

// buildLaborItemFilter constructs the list filter for the catalog.
func buildLaborItemFilter(section, search string) (string, map[string]any) {
	var clauses []string
	params := map[string]any{}
	if section != "" {
		clauses = append(clauses, "section = {:section}")
		params["section"] = section
	}
	if search != "" {
		clauses = append(clauses, "(name ~ {:search} || section ~ {:search} || reference_architecture ~ {:search})")
		params["search"] = search
	}
	if len(clauses) == 0 {
		return matchAll, params
	}
	return strings.Join(clauses, " && "), params
}

// HandleLaborItemList lists the labor catalog, optionally filtered by
// ?section= and ?search=.
func HandleLaborItemList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()
		filter, params := buildLaborItemFilter(strings.TrimSpace(q.Get("section")), strings.TrimSpace(q.Get("search")))

		records, err := app.FindRecordsByFilter("labor_items", filter, "section,name", 0, 0, params)
		if err != nil {
			return serverError(e, "labor_items: HandleLaborItemList", err)
		}

		items := make([]laborItemDTO, 0, len(records))
		for _, r := range records {
			items = append(items, laborItemToDTO(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"items": items})
	}
}

// HandleLaborItemCreate adds an item to the labor catalog.
func HandleLaborItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		col, err := app.FindCollectionByNameOrId("labor_items")
		if err != nil {
			return serverError(e, "labor_items: HandleLaborItemCreate: collection", err)
		}

		r := core.NewRecord(col)
		applyLaborItemFields(r, p, true)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}
		if err := app.Save(r); err != nil {
			return serverError(e, "labor_items: HandleLaborItemCreate: save", err)
		}
		SetToast(e, "success", "Labor item created")
		return e.JSON(http.StatusCreated, laborItemToDTO(r))
	}
}

// HandleLaborItemUpdate updates a catalog item. Existing quotes are not
// affected because their lines hold snapshots.
func HandleLaborItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("labor_items", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Labor item")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		applyLaborItemFields(r, p, false)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}
		if err := app.Save(r); err != nil {
			return serverError(e, "labor_items: HandleLaborItemUpdate: save", err)
		}
		SetToast(e, "success", "Labor item updated")
		return e.JSON(http.StatusOK, laborItemToDTO(r))
	}
}

// HandleLaborItemDelete removes a catalog item. Blueprint items that still
// reference it become unresolved.
func HandleLaborItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "labor_items", "Labor item")
	}
}

// HandleLaborItemTemplate downloads the catalog import template.
func HandleLaborItemTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateCatalogTemplate()
		if err != nil {
			return serverError(e, "labor_items: HandleLaborItemTemplate", err)
		}
		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", `attachment; filename="labor_catalog_template.xlsx"`)
		e.Response.Write(data)
		return nil
	}
}

// HandleLaborItemImport imports a .csv or .xlsx catalog file uploaded as the
// "file" form field. With ?dryRun=true the file is only validated. A file
// with row errors is rejected as a whole.
func HandleLaborItemImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxImportSize); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Expected a multipart upload with a file field", nil)
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, "Missing file", nil)
		}
		defer file.Close()

		result, err := services.ParseCatalogFile(file, filepath.Base(header.Filename))
		if err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error(), nil)
		}

		if result.ErrorRows > 0 {
			SetToast(e, "error", fmt.Sprintf("%d row(s) have errors", result.ErrorRows))
			return e.JSON(http.StatusBadRequest, result)
		}
		if e.Request.URL.Query().Get("dryRun") == "true" {
			return e.JSON(http.StatusOK, result)
		}

		imported, err := services.CommitCatalogImport(app, result.Items)
		if err != nil {
			return serverError(e, "labor_items: HandleLaborItemImport: commit", err)
		}
		SetToast(e, "success", fmt.Sprintf("Imported %d labor item(s)", imported))
		return e.JSON(http.StatusCreated, map[string]any{
			"fileName": result.FileName,
			"imported": imported,
		})
	}
}

// HandleLookups returns the fixed option lists used by the client forms.
func HandleLookups() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]any{
			"pricingUnits":   services.PricingUnitOptions,
			"unitsOfMeasure": services.UOMOptions,
			"quoteKinds":     services.QuoteKindOptions,
			"quoteStatuses":  services.QuoteStatusOptions,
		})
	}
}
