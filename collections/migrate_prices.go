package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

// derivedPrice names a stored price field and the cost/margin fields it is
// computed from.
type derivedPrice struct {
	collection string
	cost       string
	margin     string
	price      string
}

var derivedPrices = []derivedPrice{
	{"msp_offerings", "setup_fee_cost", "setup_fee_margin", "setup_fee"},
	{"service_levels", "license_cost", "license_margin", "base_price"},
	{"service_levels", "professional_services_cost", "professional_services_margin", "professional_services_price"},
	{"service_level_options", "monthly_cost", "margin_percent", "monthly_price"},
}

// MigrateDerivedPrices recomputes every stored derived price from its
// cost/margin pair and repairs rows where they disagree. Labor items without
// an explicit unit price get hours * rate. Safe to call on every startup.
// Returns the number of records that were rewritten.
func MigrateDerivedPrices(app core.App) (int, error) {
	fixed := 0

	for _, dp := range derivedPrices {
		records, err := app.FindAllRecords(dp.collection)
		if err != nil {
			return fixed, fmt.Errorf("migrate_prices: could not query %s: %w", dp.collection, err)
		}

		for _, r := range records {
			want := services.CalculatePrice(
				decimal.NewFromFloat(r.GetFloat(dp.cost)),
				decimal.NewFromFloat(r.GetFloat(dp.margin)),
			)
			if decimal.NewFromFloat(r.GetFloat(dp.price)).Equal(want) {
				continue
			}

			r.Set(dp.price, want.InexactFloat64())
			if err := app.Save(r); err != nil {
				log.Printf("migrate_prices: failed to update %s %s: %v\n", dp.collection, r.Id, err)
				continue
			}
			fixed++
		}
	}

	items, err := app.FindRecordsByFilter("labor_items", "unit_price_override = false", "", 0, 0)
	if err != nil {
		return fixed, fmt.Errorf("migrate_prices: could not query labor_items: %w", err)
	}
	for _, r := range items {
		item := services.LaborCatalogItem{
			HoursPerUnit: decimal.NewFromFloat(r.GetFloat("hours_per_unit")),
			RatePerHour:  decimal.NewFromFloat(r.GetFloat("rate_per_hour")),
		}
		want := item.EffectiveUnitPrice()
		if decimal.NewFromFloat(r.GetFloat("unit_price")).Equal(want) {
			continue
		}

		r.Set("unit_price", want.InexactFloat64())
		if err := app.Save(r); err != nil {
			log.Printf("migrate_prices: failed to update labor_items %s: %v\n", r.Id, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		app.Logger().Info("Repaired derived prices", "records", fixed)
	}
	return fixed, nil
}
