package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

// ── Response shapes ─────────────────────────────────────────────────────

type optionDTO struct {
	ID             string  `json:"id"`
	ServiceLevelID string  `json:"serviceLevelId"`
	Name           string  `json:"name"`
	PricingUnit    string  `json:"pricingUnit"`
	MonthlyCost    float64 `json:"monthlyCost"`
	MarginPercent  float64 `json:"marginPercent"`
	MonthlyPrice   float64 `json:"monthlyPrice"`
}

type serviceLevelDTO struct {
	ID                         string      `json:"id"`
	OfferingID                 string      `json:"offeringId"`
	Name                       string      `json:"name"`
	PricingUnit                string      `json:"pricingUnit"`
	LicenseCost                float64     `json:"licenseCost"`
	LicenseMargin              float64     `json:"licenseMargin"`
	BasePrice                  float64     `json:"basePrice"`
	ProfessionalServicesCost   float64     `json:"professionalServicesCost"`
	ProfessionalServicesMargin float64     `json:"professionalServicesMargin"`
	ProfessionalServicesPrice  float64     `json:"professionalServicesPrice"`
	SortOrder                  int         `json:"sortOrder"`
	Options                    []optionDTO `json:"options"`
}

type offeringDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	SetupFeeCost   float64           `json:"setupFeeCost"`
	SetupFeeMargin float64           `json:"setupFeeMargin"`
	SetupFee       float64           `json:"setupFee"`
	IsActive       bool              `json:"isActive"`
	ServiceLevels  []serviceLevelDTO `json:"serviceLevels"`
	Created        string            `json:"created"`
	Updated        string            `json:"updated"`
}

type laborItemDTO struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	HoursPerUnit          float64 `json:"hoursPerUnit"`
	RatePerHour           float64 `json:"ratePerHour"`
	UnitPrice             float64 `json:"unitPrice"`
	UnitPriceOverride     bool    `json:"unitPriceOverride"`
	UnitOfMeasure         string  `json:"unitOfMeasure"`
	Section               string  `json:"section"`
	ReferenceArchitecture string  `json:"referenceArchitecture"`
}

type lineDTO struct {
	CatalogItemID string  `json:"catalogItemId"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	HoursPerUnit  float64 `json:"hoursPerUnit"`
	RatePerHour   float64 `json:"ratePerHour"`
	LineHours     float64 `json:"lineHours"`
	LineCost      float64 `json:"lineCost"`
}

type solutionDTO struct {
	Name               string    `json:"name"`
	OverheadPercent    float64   `json:"overheadPercent"`
	ContingencyPercent float64   `json:"contingencyPercent"`
	Lines              []lineDTO `json:"lines"`
}

type solutionTotalsDTO struct {
	Name        string  `json:"name"`
	Hours       float64 `json:"hours"`
	Subtotal    float64 `json:"subtotal"`
	Overhead    float64 `json:"overhead"`
	Contingency float64 `json:"contingency"`
	Total       float64 `json:"total"`
}

type budgetDTO struct {
	Solutions             []solutionTotalsDTO `json:"solutions"`
	TotalHours            float64             `json:"totalHours"`
	LaborSubtotal         float64             `json:"laborSubtotal"`
	ProjectManagementCost float64             `json:"projectManagementCost"`
	AdoptionCost          float64             `json:"adoptionCost"`
	GrandTotal            float64             `json:"grandTotal"`
}

type blueprintItemDTO struct {
	ID            string  `json:"id"`
	CatalogItemID string  `json:"catalogItemId"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Resolved      bool    `json:"resolved"`
}

type blueprintDTO struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	Description              string             `json:"description"`
	OverheadPercent          float64            `json:"overheadPercent"`
	ContingencyPercent       float64            `json:"contingencyPercent"`
	ProjectManagementPercent float64            `json:"projectManagementPercent"`
	ProjectManagementHours   float64            `json:"projectManagementHours"`
	ProjectManagementRate    float64            `json:"projectManagementRate"`
	AdoptionHours            float64            `json:"adoptionHours"`
	AdoptionRate             float64            `json:"adoptionRate"`
	Items                    []blueprintItemDTO `json:"items"`
	Budget                   *budgetDTO         `json:"budget,omitempty"`
	Unresolved               []string           `json:"unresolved,omitempty"`
}

type quoteDTO struct {
	ID                       string        `json:"id"`
	QuoteNumber              string        `json:"quoteNumber"`
	CustomerName             string        `json:"customerName"`
	Kind                     string        `json:"kind"`
	Status                   string        `json:"status"`
	OfferingID               string        `json:"offeringId,omitempty"`
	ServiceLevelID           string        `json:"serviceLevelId,omitempty"`
	OptionIDs                []string      `json:"optionIds,omitempty"`
	OfferingName             string        `json:"offeringName,omitempty"`
	ServiceLevelName         string        `json:"serviceLevelName,omitempty"`
	PricingUnit              string        `json:"pricingUnit,omitempty"`
	UnitPrice                float64       `json:"unitPrice"`
	Quantity                 int           `json:"quantity"`
	DurationMonths           int           `json:"durationMonths"`
	AnnualDiscountPercent    float64       `json:"annualDiscountPercent"`
	ApplySetupFee            bool          `json:"applySetupFee"`
	SetupFee                 float64       `json:"setupFee"`
	MonthlyPrice             float64       `json:"monthlyPrice"`
	RawTotal                 float64       `json:"rawTotal"`
	DiscountAmount           float64       `json:"discountAmount"`
	TotalPrice               float64       `json:"totalPrice"`
	ProjectManagementPercent float64       `json:"projectManagementPercent"`
	ProjectManagementHours   float64       `json:"projectManagementHours"`
	ProjectManagementRate    float64       `json:"projectManagementRate"`
	AdoptionHours            float64       `json:"adoptionHours"`
	AdoptionRate             float64       `json:"adoptionRate"`
	BlueprintID              string        `json:"blueprintId,omitempty"`
	Solutions                []solutionDTO `json:"solutions,omitempty"`
	Budget                   *budgetDTO    `json:"budget,omitempty"`
	Notes                    string        `json:"notes"`
	Created                  string        `json:"created"`
	Updated                  string        `json:"updated"`
}

// matchAll is the filter used when a list has no other conditions.
const matchAll = "id != ''"

// ── Conversions ─────────────────────────────────────────────────────────

// money rounds an amount to cents for output.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// dec reads a number field as a decimal.
func dec(r *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(field))
}

func optionFromRecord(r *core.Record) services.Option {
	return services.Option{
		ID:            r.Id,
		Name:          r.GetString("name"),
		PricingUnit:   services.PricingUnit(r.GetString("pricing_unit")),
		MonthlyCost:   dec(r, "monthly_cost"),
		MarginPercent: dec(r, "margin_percent"),
		MonthlyPrice:  dec(r, "monthly_price"),
	}
}

func serviceLevelFromRecord(r *core.Record) services.ServiceLevel {
	return services.ServiceLevel{
		ID:                         r.Id,
		Name:                       r.GetString("name"),
		PricingUnit:                services.PricingUnit(r.GetString("pricing_unit")),
		LicenseCost:                dec(r, "license_cost"),
		LicenseMargin:              dec(r, "license_margin"),
		BasePrice:                  dec(r, "base_price"),
		ProfessionalServicesCost:   dec(r, "professional_services_cost"),
		ProfessionalServicesMargin: dec(r, "professional_services_margin"),
		ProfessionalServicesPrice:  dec(r, "professional_services_price"),
	}
}

func laborItemFromRecord(r *core.Record) services.LaborCatalogItem {
	item := services.LaborCatalogItem{
		ID:                    r.Id,
		Name:                  r.GetString("name"),
		HoursPerUnit:          dec(r, "hours_per_unit"),
		RatePerHour:           dec(r, "rate_per_hour"),
		UnitOfMeasure:         r.GetString("unit_of_measure"),
		Section:               r.GetString("section"),
		ReferenceArchitecture: r.GetString("reference_architecture"),
	}
	if r.GetBool("unit_price_override") {
		item.UnitPrice = dec(r, "unit_price")
	}
	return item
}

func optionToDTO(r *core.Record) optionDTO {
	return optionDTO{
		ID:             r.Id,
		ServiceLevelID: r.GetString("service_level"),
		Name:           r.GetString("name"),
		PricingUnit:    r.GetString("pricing_unit"),
		MonthlyCost:    r.GetFloat("monthly_cost"),
		MarginPercent:  r.GetFloat("margin_percent"),
		MonthlyPrice:   r.GetFloat("monthly_price"),
	}
}

func serviceLevelToDTO(r *core.Record, options []*core.Record) serviceLevelDTO {
	dto := serviceLevelDTO{
		ID:                         r.Id,
		OfferingID:                 r.GetString("offering"),
		Name:                       r.GetString("name"),
		PricingUnit:                r.GetString("pricing_unit"),
		LicenseCost:                r.GetFloat("license_cost"),
		LicenseMargin:              r.GetFloat("license_margin"),
		BasePrice:                  r.GetFloat("base_price"),
		ProfessionalServicesCost:   r.GetFloat("professional_services_cost"),
		ProfessionalServicesMargin: r.GetFloat("professional_services_margin"),
		ProfessionalServicesPrice:  r.GetFloat("professional_services_price"),
		SortOrder:                  r.GetInt("sort_order"),
		Options:                    []optionDTO{},
	}
	for _, o := range options {
		dto.Options = append(dto.Options, optionToDTO(o))
	}
	return dto
}

func laborItemToDTO(r *core.Record) laborItemDTO {
	return laborItemDTO{
		ID:                    r.Id,
		Name:                  r.GetString("name"),
		HoursPerUnit:          r.GetFloat("hours_per_unit"),
		RatePerHour:           r.GetFloat("rate_per_hour"),
		UnitPrice:             r.GetFloat("unit_price"),
		UnitPriceOverride:     r.GetBool("unit_price_override"),
		UnitOfMeasure:         r.GetString("unit_of_measure"),
		Section:               r.GetString("section"),
		ReferenceArchitecture: r.GetString("reference_architecture"),
	}
}

func lineToDTO(l services.PricedLineEntry) lineDTO {
	return lineDTO{
		CatalogItemID: l.CatalogItemID(),
		Name:          l.Name(),
		Quantity:      l.Quantity().InexactFloat64(),
		HoursPerUnit:  l.HoursPerUnit().InexactFloat64(),
		RatePerHour:   l.RatePerHour().InexactFloat64(),
		LineHours:     l.LineHours().InexactFloat64(),
		LineCost:      money(l.LineCost()),
	}
}

func solutionToDTO(s services.Solution) solutionDTO {
	dto := solutionDTO{
		Name:               s.Name,
		OverheadPercent:    s.OverheadPercent.InexactFloat64(),
		ContingencyPercent: s.ContingencyPercent.InexactFloat64(),
		Lines:              []lineDTO{},
	}
	for _, l := range s.Items {
		dto.Lines = append(dto.Lines, lineToDTO(l))
	}
	return dto
}

func budgetToDTO(b services.LaborBudget) *budgetDTO {
	dto := &budgetDTO{
		Solutions:             []solutionTotalsDTO{},
		TotalHours:            b.TotalHours.InexactFloat64(),
		LaborSubtotal:         money(b.LaborSubtotal),
		ProjectManagementCost: money(b.ProjectManagementCost),
		AdoptionCost:          money(b.AdoptionCost),
		GrandTotal:            money(b.GrandTotal),
	}
	for _, s := range b.Solutions {
		dto.Solutions = append(dto.Solutions, solutionTotalsDTO{
			Name:        s.Name,
			Hours:       s.Hours.InexactFloat64(),
			Subtotal:    money(s.Subtotal),
			Overhead:    money(s.Overhead),
			Contingency: money(s.Contingency),
			Total:       money(s.Total),
		})
	}
	return dto
}

func quoteToDTO(r *core.Record) quoteDTO {
	return quoteDTO{
		ID:                       r.Id,
		QuoteNumber:              r.GetString("quote_number"),
		CustomerName:             r.GetString("customer_name"),
		Kind:                     r.GetString("kind"),
		Status:                   r.GetString("status"),
		OfferingID:               r.GetString("offering"),
		ServiceLevelID:           r.GetString("service_level"),
		OptionIDs:                r.GetStringSlice("options"),
		OfferingName:             r.GetString("offering_name"),
		ServiceLevelName:         r.GetString("service_level_name"),
		PricingUnit:              r.GetString("pricing_unit"),
		UnitPrice:                r.GetFloat("unit_price"),
		Quantity:                 r.GetInt("quantity"),
		DurationMonths:           r.GetInt("duration_months"),
		AnnualDiscountPercent:    r.GetFloat("annual_discount_percent"),
		ApplySetupFee:            r.GetBool("apply_setup_fee"),
		SetupFee:                 r.GetFloat("setup_fee"),
		MonthlyPrice:             r.GetFloat("monthly_price"),
		RawTotal:                 r.GetFloat("raw_total"),
		DiscountAmount:           r.GetFloat("discount_amount"),
		TotalPrice:               r.GetFloat("total_price"),
		ProjectManagementPercent: r.GetFloat("project_management_percent"),
		ProjectManagementHours:   r.GetFloat("project_management_hours"),
		ProjectManagementRate:    r.GetFloat("project_management_rate"),
		AdoptionHours:            r.GetFloat("adoption_hours"),
		AdoptionRate:             r.GetFloat("adoption_rate"),
		BlueprintID:              r.GetString("blueprint"),
		Notes:                    r.GetString("notes"),
		Created:                  r.GetDateTime("created").String(),
		Updated:                  r.GetDateTime("updated").String(),
	}
}

// ── Loaders ─────────────────────────────────────────────────────────────

// loadOffering returns an offering with its service levels and options.
func loadOffering(app core.App, offering *core.Record) (offeringDTO, error) {
	dto := offeringDTO{
		ID:             offering.Id,
		Name:           offering.GetString("name"),
		Description:    offering.GetString("description"),
		Category:       offering.GetString("category"),
		SetupFeeCost:   offering.GetFloat("setup_fee_cost"),
		SetupFeeMargin: offering.GetFloat("setup_fee_margin"),
		SetupFee:       offering.GetFloat("setup_fee"),
		IsActive:       offering.GetBool("is_active"),
		ServiceLevels:  []serviceLevelDTO{},
		Created:        offering.GetDateTime("created").String(),
		Updated:        offering.GetDateTime("updated").String(),
	}

	levels, err := app.FindRecordsByFilter("service_levels", "offering = {:id}", "sort_order,name", 0, 0,
		map[string]any{"id": offering.Id})
	if err != nil {
		return dto, fmt.Errorf("query service levels: %w", err)
	}
	for _, l := range levels {
		options, err := app.FindRecordsByFilter("service_level_options", "service_level = {:id}", "name", 0, 0,
			map[string]any{"id": l.Id})
		if err != nil {
			return dto, fmt.Errorf("query options: %w", err)
		}
		dto.ServiceLevels = append(dto.ServiceLevels, serviceLevelToDTO(l, options))
	}
	return dto, nil
}

// loadCatalog returns the catalog items with the given ids. Ids that do not
// exist are simply absent from the map.
func loadCatalog(app core.App, ids []string) (map[string]services.LaborCatalogItem, error) {
	catalog := make(map[string]services.LaborCatalogItem, len(ids))
	if len(ids) == 0 {
		return catalog, nil
	}
	records, err := app.FindRecordsByIds("labor_items", ids)
	if err != nil {
		return nil, fmt.Errorf("query labor items: %w", err)
	}
	for _, r := range records {
		catalog[r.Id] = laborItemFromRecord(r)
	}
	return catalog, nil
}

// draftParams reads the project-management and adoption parameters shared
// by blueprints and labor quotes.
func draftParams(r *core.Record) services.LaborDraft {
	return services.LaborDraft{
		ProjectManagementPercent: dec(r, "project_management_percent"),
		ProjectManagementHours:   dec(r, "project_management_hours"),
		ProjectManagementRate:    dec(r, "project_management_rate"),
		AdoptionHours:            dec(r, "adoption_hours"),
		AdoptionRate:             dec(r, "adoption_rate"),
	}
}

// loadBlueprint resolves a blueprint's items against the current catalog.
// Items whose catalog entry no longer exists are reported as unresolved and
// contribute nothing to the budget.
func loadBlueprint(app core.App, bp *core.Record) (blueprintDTO, services.LaborDraft, error) {
	dto := blueprintDTO{
		ID:                       bp.Id,
		Name:                     bp.GetString("name"),
		Description:              bp.GetString("description"),
		OverheadPercent:          bp.GetFloat("overhead_percent"),
		ContingencyPercent:       bp.GetFloat("contingency_percent"),
		ProjectManagementPercent: bp.GetFloat("project_management_percent"),
		ProjectManagementHours:   bp.GetFloat("project_management_hours"),
		ProjectManagementRate:    bp.GetFloat("project_management_rate"),
		AdoptionHours:            bp.GetFloat("adoption_hours"),
		AdoptionRate:             bp.GetFloat("adoption_rate"),
		Items:                    []blueprintItemDTO{},
	}

	items, err := app.FindRecordsByFilter("blueprint_items", "blueprint = {:id}", "sort_order", 0, 0,
		map[string]any{"id": bp.Id})
	if err != nil {
		return dto, services.LaborDraft{}, fmt.Errorf("query blueprint items: %w", err)
	}

	ids := make([]string, 0, len(items))
	selections := make([]services.LineSelection, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.GetString("catalog_item_id"))
		selections = append(selections, services.LineSelection{
			CatalogItemID: it.GetString("catalog_item_id"),
			Quantity:      dec(it, "quantity"),
		})
	}
	catalog, err := loadCatalog(app, ids)
	if err != nil {
		return dto, services.LaborDraft{}, err
	}

	for _, it := range items {
		id := it.GetString("catalog_item_id")
		cat, ok := catalog[id]
		dto.Items = append(dto.Items, blueprintItemDTO{
			ID:            it.Id,
			CatalogItemID: id,
			Name:          cat.Name,
			Quantity:      it.GetFloat("quantity"),
			Resolved:      ok,
		})
	}

	entries, unresolved := services.PriceSelections(catalog, selections)
	dto.Unresolved = unresolved

	draft := draftParams(bp)
	draft.Solutions = []services.Solution{{
		Name:               dto.Name,
		Items:              entries,
		OverheadPercent:    dec(bp, "overhead_percent"),
		ContingencyPercent: dec(bp, "contingency_percent"),
	}}
	dto.Budget = budgetToDTO(services.CalcLaborBudget(draft))
	return dto, draft, nil
}

// loadQuoteDraft rebuilds the labor draft of a quote from its stored
// solutions and line snapshots.
func loadQuoteDraft(app core.App, quote *core.Record) (services.LaborDraft, error) {
	draft := draftParams(quote)

	solutions, err := app.FindRecordsByFilter("quote_solutions", "quote = {:id}", "sort_order", 0, 0,
		map[string]any{"id": quote.Id})
	if err != nil {
		return draft, fmt.Errorf("query quote solutions: %w", err)
	}
	for _, s := range solutions {
		lines, err := app.FindRecordsByFilter("quote_labor_lines", "solution = {:id}", "sort_order", 0, 0,
			map[string]any{"id": s.Id})
		if err != nil {
			return draft, fmt.Errorf("query quote lines: %w", err)
		}
		sol := services.Solution{
			Name:               s.GetString("name"),
			OverheadPercent:    dec(s, "overhead_percent"),
			ContingencyPercent: dec(s, "contingency_percent"),
		}
		for _, l := range lines {
			sol.Items = append(sol.Items, services.RestorePricedLineEntry(
				l.GetString("catalog_item_id"),
				l.GetString("name"),
				dec(l, "quantity"),
				dec(l, "hours_per_unit"),
				dec(l, "rate_per_hour"),
			))
		}
		draft.Solutions = append(draft.Solutions, sol)
	}
	return draft, nil
}
