package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type laborItemDef struct {
	key          string
	name         string
	hoursPerUnit float64
	ratePerHour  float64
	uom          string
	section      string
	refArch      string
}

type optionDef struct {
	name        string
	unit        string
	monthlyCost float64
	margin      float64
}

type levelDef struct {
	name        string
	unit        string
	licenseCost float64
	licenseMgn  float64
	psCost      float64
	psMargin    float64
	options     []optionDef
}

type offeringDef struct {
	name         string
	description  string
	category     string
	setupFeeCost float64
	setupFeeMgn  float64
	levels       []levelDef
}

type blueprintItemDef struct {
	itemKey  string
	quantity float64
}

var seedLaborItems = []laborItemDef{
	{"switch", "Switch install and configuration", 2, 125, "Switch", "Network", "Campus LAN"},
	{"ap", "Wireless access point install", 1.5, 110, "Access Point", "Network", "Campus Wi-Fi"},
	{"survey", "Wireless site survey", 8, 140, "Site", "Network", "Campus Wi-Fi"},
	{"server", "Server build and hardening", 6, 150, "Server", "Infrastructure", "Hybrid Datacenter"},
	{"mailbox", "Mailbox migration", 0.5, 95, "Mailbox", "Modern Workplace", "Microsoft 365"},
	{"intune", "Endpoint enrollment (Intune)", 0.75, 95, "Device", "Modern Workplace", "Microsoft 365"},
	{"training", "End-user training session", 2, 85, "Hour", "Adoption", ""},
}

var seedOfferings = []offeringDef{
	{
		name:         "Managed Endpoint",
		description:  "Patching, monitoring and help desk for user devices",
		category:     "Managed Services",
		setupFeeCost: 400,
		setupFeeMgn:  25,
		levels: []levelDef{
			{
				name: "Basic", unit: "per_device", licenseCost: 12, licenseMgn: 40, psCost: 0, psMargin: 0,
				options: []optionDef{{"Backup (50 GB)", "per_device", 4, 50}},
			},
			{
				name: "Premium", unit: "per_device", licenseCost: 24, licenseMgn: 35, psCost: 150, psMargin: 20,
				options: []optionDef{
					{"Backup (250 GB)", "per_device", 9, 45},
					{"After-hours support", "flat", 300, 30},
				},
			},
		},
	},
	{
		name:         "Managed Network",
		description:  "24x7 monitoring of switching, routing and wireless",
		category:     "Managed Services",
		setupFeeCost: 1200,
		setupFeeMgn:  20,
		levels: []levelDef{
			{name: "Standard", unit: "per_site", licenseCost: 180, licenseMgn: 30, psCost: 500, psMargin: 25},
		},
	},
}

// Seed populates the labor catalog, MSP offerings and a solution blueprint
// with demo data. It is safe to call on every startup because it returns
// early if any labor item already exists.
func Seed(app core.App) error {
	// ── idempotency: skip if the catalog already has items ──────────────
	itemsCol, err := app.FindCollectionByNameOrId("labor_items")
	if err != nil {
		return fmt.Errorf("seed: could not find labor_items collection: %w", err)
	}
	existing, err := app.FindAllRecords(itemsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query labor items: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: labor catalog is empty - inserting demo data ...")

	return app.RunInTransaction(func(txApp core.App) error {
		itemIDs, err := seedCatalog(txApp)
		if err != nil {
			return err
		}
		if err := seedOfferingsAndLevels(txApp); err != nil {
			return err
		}
		if err := seedBlueprint(txApp, itemIDs); err != nil {
			return err
		}
		log.Printf("seed: inserted %d labor items, %d offerings and 1 blueprint\n", len(itemIDs), len(seedOfferings))
		return nil
	})
}

func seedCatalog(app core.App) (map[string]string, error) {
	col, err := app.FindCollectionByNameOrId("labor_items")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find labor_items collection: %w", err)
	}

	ids := make(map[string]string, len(seedLaborItems))
	for _, d := range seedLaborItems {
		item := services.LaborCatalogItem{
			HoursPerUnit: decimal.NewFromFloat(d.hoursPerUnit),
			RatePerHour:  decimal.NewFromFloat(d.ratePerHour),
		}
		r := core.NewRecord(col)
		r.Set("name", d.name)
		r.Set("hours_per_unit", d.hoursPerUnit)
		r.Set("rate_per_hour", d.ratePerHour)
		r.Set("unit_price", item.EffectiveUnitPrice().InexactFloat64())
		r.Set("unit_of_measure", d.uom)
		r.Set("section", d.section)
		r.Set("reference_architecture", d.refArch)
		if err := app.Save(r); err != nil {
			return nil, fmt.Errorf("seed: save labor item %q: %w", d.name, err)
		}
		ids[d.key] = r.Id
	}
	return ids, nil
}

func seedOfferingsAndLevels(app core.App) error {
	offeringsCol, err := app.FindCollectionByNameOrId("msp_offerings")
	if err != nil {
		return fmt.Errorf("seed: could not find msp_offerings collection: %w", err)
	}
	levelsCol, err := app.FindCollectionByNameOrId("service_levels")
	if err != nil {
		return fmt.Errorf("seed: could not find service_levels collection: %w", err)
	}
	optionsCol, err := app.FindCollectionByNameOrId("service_level_options")
	if err != nil {
		return fmt.Errorf("seed: could not find service_level_options collection: %w", err)
	}

	for _, o := range seedOfferings {
		fee := services.SetupFee{
			Cost:   decimal.NewFromFloat(o.setupFeeCost),
			Margin: decimal.NewFromFloat(o.setupFeeMgn),
		}
		offering := core.NewRecord(offeringsCol)
		offering.Set("name", o.name)
		offering.Set("description", o.description)
		offering.Set("category", o.category)
		offering.Set("setup_fee_cost", o.setupFeeCost)
		offering.Set("setup_fee_margin", o.setupFeeMgn)
		offering.Set("setup_fee", fee.Price().InexactFloat64())
		offering.Set("is_active", true)
		if err := app.Save(offering); err != nil {
			return fmt.Errorf("seed: save offering %q: %w", o.name, err)
		}

		for i, l := range o.levels {
			level := services.ServiceLevel{
				LicenseCost:                decimal.NewFromFloat(l.licenseCost),
				LicenseMargin:              decimal.NewFromFloat(l.licenseMgn),
				ProfessionalServicesCost:   decimal.NewFromFloat(l.psCost),
				ProfessionalServicesMargin: decimal.NewFromFloat(l.psMargin),
			}
			level.Reprice()

			lr := core.NewRecord(levelsCol)
			lr.Set("offering", offering.Id)
			lr.Set("name", l.name)
			lr.Set("pricing_unit", l.unit)
			lr.Set("license_cost", l.licenseCost)
			lr.Set("license_margin", l.licenseMgn)
			lr.Set("base_price", level.BasePrice.InexactFloat64())
			lr.Set("professional_services_cost", l.psCost)
			lr.Set("professional_services_margin", l.psMargin)
			lr.Set("professional_services_price", level.ProfessionalServicesPrice.InexactFloat64())
			lr.Set("sort_order", i+1)
			if err := app.Save(lr); err != nil {
				return fmt.Errorf("seed: save service level %q: %w", l.name, err)
			}

			for _, od := range l.options {
				opt := services.Option{
					MonthlyCost:   decimal.NewFromFloat(od.monthlyCost),
					MarginPercent: decimal.NewFromFloat(od.margin),
				}
				opt.Reprice()

				or := core.NewRecord(optionsCol)
				or.Set("service_level", lr.Id)
				or.Set("name", od.name)
				or.Set("pricing_unit", od.unit)
				or.Set("monthly_cost", od.monthlyCost)
				or.Set("margin_percent", od.margin)
				or.Set("monthly_price", opt.MonthlyPrice.InexactFloat64())
				if err := app.Save(or); err != nil {
					return fmt.Errorf("seed: save option %q: %w", od.name, err)
				}
			}
		}
	}
	return nil
}

func seedBlueprint(app core.App, itemIDs map[string]string) error {
	blueprintsCol, err := app.FindCollectionByNameOrId("solution_blueprints")
	if err != nil {
		return fmt.Errorf("seed: could not find solution_blueprints collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("blueprint_items")
	if err != nil {
		return fmt.Errorf("seed: could not find blueprint_items collection: %w", err)
	}

	bp := core.NewRecord(blueprintsCol)
	bp.Set("name", "Small Office Wi-Fi Refresh")
	bp.Set("description", "Survey, switching and wireless for a single-site office")
	bp.Set("overhead_percent", 10)
	bp.Set("contingency_percent", 5)
	bp.Set("project_management_percent", 8)
	bp.Set("adoption_hours", 4)
	bp.Set("adoption_rate", 85)
	if err := app.Save(bp); err != nil {
		return fmt.Errorf("seed: save blueprint: %w", err)
	}

	items := []blueprintItemDef{
		{"survey", 1},
		{"switch", 2},
		{"ap", 8},
	}
	for i, it := range items {
		r := core.NewRecord(itemsCol)
		r.Set("blueprint", bp.Id)
		r.Set("catalog_item_id", itemIDs[it.itemKey])
		r.Set("quantity", it.quantity)
		r.Set("sort_order", i+1)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save blueprint item %q: %w", it.itemKey, err)
		}
	}
	return nil
}
