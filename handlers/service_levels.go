package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// applyServiceLevelFields copies present payload fields onto a service level
// and re-derives basePrice and professionalServicesPrice. Derived prices in
// the body are ignored.
func applyServiceLevelFields(r *core.Record, p *payload, creating bool) {
	if creating || p.Has("name") {
		r.Set("name", p.RequiredString("name", 200))
	}
	readPricingUnit(p, r, creating)
	if p.Has("licenseCost") {
		r.Set("license_cost", p.NonNegative("licenseCost").InexactFloat64())
	}
	if p.Has("licenseMargin") {
		r.Set("license_margin", p.Decimal("licenseMargin").InexactFloat64())
	}
	if p.Has("professionalServicesCost") {
		r.Set("professional_services_cost", p.NonNegative("professionalServicesCost").InexactFloat64())
	}
	if p.Has("professionalServicesMargin") {
		r.Set("professional_services_margin", p.Decimal("professionalServicesMargin").InexactFloat64())
	}
	if p.Has("sortOrder") {
		r.Set("sort_order", p.Int("sortOrder"))
	}

	level := serviceLevelFromRecord(r)
	level.Reprice()
	r.Set("base_price", level.BasePrice.InexactFloat64())
	r.Set("professional_services_price", level.ProfessionalServicesPrice.InexactFloat64())
}

// applyOptionFields copies present payload fields onto an add-on option and
// re-derives its monthly price.
func applyOptionFields(r *core.Record, p *payload, creating bool) {
	if creating || p.Has("name") {
		r.Set("name", p.RequiredString("name", 200))
	}
	readPricingUnit(p, r, creating)
	if p.Has("monthlyCost") {
		r.Set("monthly_cost", p.NonNegative("monthlyCost").InexactFloat64())
	}
	if p.Has("marginPercent") {
		r.Set("margin_percent", p.Decimal("marginPercent").InexactFloat64())
	}

	opt := optionFromRecord(r)
	opt.Reprice()
	r.Set("monthly_price", opt.MonthlyPrice.InexactFloat64())
}

// HandleServiceLevelCreate adds a service level to an offering.
func HandleServiceLevelCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		offering, err := app.FindRecordById("msp_offerings", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Offering")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}

		col, err := app.FindCollectionByNameOrId("service_levels")
		if err != nil {
			return serverError(e, "service_levels: HandleServiceLevelCreate: collection", err)
		}
		r := core.NewRecord(col)
		r.Set("offering", offering.Id)
		applyServiceLevelFields(r, p, true)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "service_levels: HandleServiceLevelCreate: save", err)
		}
		SetToast(e, "success", "Service level created")
		return e.JSON(http.StatusCreated, serviceLevelToDTO(r, nil))
	}
}

// HandleServiceLevelUpdate updates a service level; derived prices follow
// any cost or margin change.
func HandleServiceLevelUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("service_levels", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Service level")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		applyServiceLevelFields(r, p, false)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "service_levels: HandleServiceLevelUpdate: save", err)
		}
		options, err := app.FindRecordsByFilter("service_level_options", "service_level = {:id}", "name", 0, 0,
			map[string]any{"id": r.Id})
		if err != nil {
			return serverError(e, "service_levels: HandleServiceLevelUpdate: options", err)
		}
		SetToast(e, "success", "Service level updated")
		return e.JSON(http.StatusOK, serviceLevelToDTO(r, options))
	}
}

// HandleServiceLevelDelete deletes a service level and its options.
func HandleServiceLevelDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "service_levels", "Service level")
	}
}

// HandleOptionCreate adds an add-on option to a service level.
func HandleOptionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		level, err := app.FindRecordById("service_levels", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Service level")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}

		col, err := app.FindCollectionByNameOrId("service_level_options")
		if err != nil {
			return serverError(e, "service_levels: HandleOptionCreate: collection", err)
		}
		r := core.NewRecord(col)
		r.Set("service_level", level.Id)
		applyOptionFields(r, p, true)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "service_levels: HandleOptionCreate: save", err)
		}
		SetToast(e, "success", "Option created")
		return e.JSON(http.StatusCreated, optionToDTO(r))
	}
}

// HandleOptionUpdate updates an add-on option.
func HandleOptionUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("service_level_options", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Option")
		}
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		applyOptionFields(r, p, false)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		if err := app.Save(r); err != nil {
			return serverError(e, "service_levels: HandleOptionUpdate: save", err)
		}
		SetToast(e, "success", "Option updated")
		return e.JSON(http.StatusOK, optionToDTO(r))
	}
}

// HandleOptionDelete deletes an add-on option.
func HandleOptionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "service_level_options", "Option")
	}
}
