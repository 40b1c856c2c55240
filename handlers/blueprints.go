package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/config"
)

// blueprintItemInput is one catalog selection of a blueprint request.
type blueprintItemInput struct {
	catalogItemID string
	quantity      decimal.Decimal
}

// applyBlueprintFields copies present payload fields onto a blueprint. New
// blueprints without overhead or contingency take the configured defaults.
func applyBlueprintFields(r *core.Record, p *payload, cfg *config.Settings, creating bool) {
	if creating || p.Has("name") {
		r.Set("name", p.RequiredString("name", 200))
	}
	if p.Has("description") {
		r.Set("description", p.String("description"))
	}

	defaults := map[string]float64{}
	if creating {
		defaults["overheadPercent"] = cfg.DefaultOverheadPercent
		defaults["contingencyPercent"] = cfg.DefaultContingencyPercent
	}
	for field, column := range map[string]string{
		"overheadPercent":          "overhead_percent",
		"contingencyPercent":       "contingency_percent",
		"projectManagementPercent": "project_management_percent",
		"projectManagementHours":   "project_management_hours",
		"projectManagementRate":    "project_management_rate",
		"adoptionHours":            "adoption_hours",
		"adoptionRate":             "adoption_rate",
	} {
		if p.Has(field) {
			r.Set(column, p.NonNegative(field).InexactFloat64())
		} else if def, ok := defaults[field]; ok {
			r.Set(column, def)
		}
	}
}

// readBlueprintItems reads the "items" list of a blueprint request.
func readBlueprintItems(p *payload) []blueprintItemInput {
	var items []blueprintItemInput
	for i, ri := range p.Objects("items") {
		it := blueprintItemInput{
			catalogItemID: ri.String("catalogItemId"),
			quantity:      ri.NonNegative("quantity"),
		}
		if it.catalogItemID == "" {
			ri.Fail("catalogItemId", "cannot be blank")
		}
		p.Merge(fmt.Sprintf("items[%d]", i), ri)
		items = append(items, it)
	}
	return items
}

// replaceBlueprintItems deletes the current items of a blueprint and saves
// the given ones in order.
func replaceBlueprintItems(app core.App, blueprintID string, items []blueprintItemInput) error {
	existing, err := app.FindRecordsByFilter("blueprint_items", "blueprint = {:id}", "", 0, 0,
		map[string]any{"id": blueprintID})
	if err != nil {
		return fmt.Errorf("query blueprint items: %w", err)
	}
	for _, r := range existing {
		if err := app.Delete(r); err != nil {
			return fmt.Errorf("delete blueprint item %s: %w", r.Id, err)
		}
	}

	col, err := app.FindCollectionByNameOrId("blueprint_items")
	if err != nil {
		return fmt.Errorf("blueprint_items collection not found: %w", err)
	}
	for i, it := range items {
		r := core.NewRecord(col)
		r.Set("blueprint", blueprintID)
		r.Set("catalog_item_id", it.catalogItemID)
		r.Set("quantity", it.quantity.InexactFloat64())
		r.Set("sort_order", i+1)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("save blueprint item %d: %w", i+1, err)
		}
	}
	return nil
}

// HandleBlueprintList lists blueprints with their computed budgets.
func HandleBlueprintList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("solution_blueprints", matchAll, "name", 0, 0)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintList: query", err)
		}
		items := make([]blueprintDTO, 0, len(records))
		for _, r := range records {
			dto, _, err := loadBlueprint(app, r)
			if err != nil {
				return serverError(e, "blueprints: HandleBlueprintList: load", err)
			}
			items = append(items, dto)
		}
		return e.JSON(http.StatusOK, map[string]any{"items": items})
	}
}

// HandleBlueprintGet returns a blueprint with its items resolved against the
// current catalog and its computed budget.
func HandleBlueprintGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("solution_blueprints", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Blueprint")
		}
		dto, _, err := loadBlueprint(app, r)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintGet", err)
		}
		return e.JSON(http.StatusOK, dto)
	}
}

// HandleBlueprintCreate creates a blueprint and its items in one transaction.
func HandleBlueprintCreate(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		col, err := app.FindCollectionByNameOrId("solution_blueprints")
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintCreate: collection", err)
		}

		r := core.NewRecord(col)
		applyBlueprintFields(r, p, cfg, true)
		items := readBlueprintItems(p)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		err = app.RunInTransaction(func(txApp core.App) error {
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save blueprint: %w", err)
			}
			return replaceBlueprintItems(txApp, r.Id, items)
		})
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintCreate", err)
		}

		dto, _, err := loadBlueprint(app, r)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintCreate: load", err)
		}
		SetToast(e, "success", "Blueprint created")
		return e.JSON(http.StatusCreated, dto)
	}
}

// HandleBlueprintUpdate updates a blueprint. When "items" is present the
// item list is replaced as a whole.
func HandleBlueprintUpdate(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("solution_blueprints", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Blueprint")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		applyBlueprintFields(r, p, cfg, false)
		replaceItems := p.Has("items")
		items := readBlueprintItems(p)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		err = app.RunInTransaction(func(txApp core.App) error {
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save blueprint: %w", err)
			}
			if !replaceItems {
				return nil
			}
			return replaceBlueprintItems(txApp, r.Id, items)
		})
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintUpdate", err)
		}

		dto, _, err := loadBlueprint(app, r)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintUpdate: load", err)
		}
		SetToast(e, "success", "Blueprint updated")
		return e.JSON(http.StatusOK, dto)
	}
}

// HandleBlueprintDelete deletes a blueprint and its items. Quotes cloned
// from it are independent and stay.
func HandleBlueprintDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "solution_blueprints", "Blueprint")
	}
}

// HandleBlueprintClone creates a pending labor quote from a blueprint. Its
// lines snapshot the current catalog; unresolved items are skipped and
// reported.
func HandleBlueprintClone(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		bp, err := app.FindRecordById("solution_blueprints", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Blueprint")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		customer := p.RequiredString("customerName", 200)
		notes := p.String("notes")
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		bpDTO, draft, err := loadBlueprint(app, bp)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintClone: load", err)
		}
		unresolved := append([]string{}, bpDTO.Unresolved...)
		if !hasLines(draft) {
			return ErrorJSON(e, http.StatusBadRequest, "Blueprint has no resolvable catalog items", nil)
		}

		quote, err := createLaborQuote(app, cfg, laborQuoteInput{
			customerName: customer,
			notes:        notes,
			blueprintID:  bp.Id,
			draft:        draft,
		})
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintClone: create", err)
		}

		dto, err := loadQuote(app, quote)
		if err != nil {
			return serverError(e, "blueprints: HandleBlueprintClone: load", err)
		}
		SetToast(e, "success", "Quote "+quote.GetString("quote_number")+" created")
		return e.JSON(http.StatusCreated, map[string]any{
			"quote":      dto,
			"unresolved": unresolved,
		})
	}
}
