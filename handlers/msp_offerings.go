package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// applyOfferingFields copies present payload fields onto an offering and
// re-derives the setup fee from its cost and margin.
func applyOfferingFields(r *core.Record, p *payload, creating bool) {
	if creating || p.Has("name") {
		r.Set("name", p.RequiredString("name", 200))
	}
	if p.Has("description") {
		r.Set("description", p.String("description"))
	}
	if p.Has("category") {
		r.Set("category", p.String("category"))
	}
	if p.Has("setupFeeCost") {
		r.Set("setup_fee_cost", p.NonNegative("setupFeeCost").InexactFloat64())
	}
	if p.Has("setupFeeMargin") {
		r.Set("setup_fee_margin", p.Decimal("setupFeeMargin").InexactFloat64())
	}
	if p.Has("isActive") {
		r.Set("is_active", p.Bool("isActive"))
	} else if creating {
		r.Set("is_active", true)
	}

	fee := services.SetupFee{Cost: dec(r, "setup_fee_cost"), Margin: dec(r, "setup_fee_margin")}
	r.Set("setup_fee", fee.Price().InexactFloat64())
}

// HandleOfferingList returns every MSP offering with its service levels and
// options. ?active=true limits the list to active offerings.
func HandleOfferingList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		filter := matchAll
		if e.Request.URL.Query().Get("active") == "true" {
			filter = "is_active = true"
		}

		records, err := app.FindRecordsByFilter("msp_offerings", filter, "name", 0, 0)
		if err != nil {
			return serverError(e, "msp_offerings: HandleOfferingList: query", err)
		}

		items := make([]offeringDTO, 0, len(records))
		for _, r := range records {
			dto, err := loadOffering(app, r)
			if err != nil {
				return serverError(e, "msp_offerings: HandleOfferingList: load", err)
			}
			items = append(items, dto)
		}
		return e.JSON(http.StatusOK, map[string]any{"items": items})
	}
}

// HandleOfferingGet returns one offering with its service levels and options.
func HandleOfferingGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("msp_offerings", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Offering")
		}
		dto, err := loadOffering(app, r)
		if err != nil {
			return serverError(e, "msp_offerings: HandleOfferingGet", err)
		}
		return e.JSON(http.StatusOK, dto)
	}
}

// HandleOfferingCreate creates an MSP offering.
func HandleOfferingCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}

		col, err := app.FindCollectionByNameOrId("msp_offerings")
		if err != nil {
			return serverError(e, "msp_offerings: HandleOfferingCreate: collection", err)
		}
		r := core.NewRecord(col)
		applyOfferingFields(r, p, true)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "msp_offerings: HandleOfferingCreate: save", err)
		}
		dto, err := loadOffering(app, r)
		if err != nil {
			return serverError(e, "msp_offerings: HandleOfferingCreate: load", err)
		}
		SetToast(e, "success", "Offering created")
		return e.JSON(http.StatusCreated, dto)
	}
}

// HandleOfferingUpdate updates the fields present in the body.
func HandleOfferingUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("msp_offerings", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Offering")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		applyOfferingFields(r, p, false)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "msp_offerings: HandleOfferingUpdate: save", err)
		}
		dto, err := loadOffering(app, r)
		if err != nil {
			return serverError(e, "msp_offerings: HandleOfferingUpdate: load", err)
		}
		SetToast(e, "success", "Offering updated")
		return e.JSON(http.StatusOK, dto)
	}
}

// HandleOfferingDelete deletes an offering together with its service levels
// and options. Quotes keep their snapshots.
func HandleOfferingDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "msp_offerings", "Offering")
	}
}

// deleteRecord deletes a record by the {id} path value.
func deleteRecord(e *core.RequestEvent, app core.App, collection, label string) error {
	r, err := app.FindRecordById(collection, e.Request.PathValue("id"))
	if err != nil {
		return notFound(e, label)
	}
	if err := app.Delete(r); err != nil {
		return serverError(e, collection+": delete "+r.Id, err)
	}
	SetToast(e, "success", label+" deleted")
	return e.NoContent(http.StatusNoContent)
}

// readPricingUnit reads and validates a pricing unit, defaulting to per_user.
func readPricingUnit(p *payload, r *core.Record, creating bool) {
	if !creating && !p.Has("pricingUnit") {
		return
	}
	unit := p.String("pricingUnit")
	if unit == "" {
		unit = string(services.PricingUnitPerUser)
	}
	if !services.IsPricingUnit(unit) {
		p.Fail("pricingUnit", "must be one of per_user, per_device, per_site, flat")
		return
	}
	r.Set("pricing_unit", unit)
}
