// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestLaborItem creates a labor catalog item whose unit price is
// hours * rate and returns it.
func CreateTestLaborItem(t *testing.T, app core.App, name string, hoursPerUnit, ratePerHour float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("labor_items")
	if err != nil {
		t.Fatalf("failed to find labor_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("hours_per_unit", hoursPerUnit)
	record.Set("rate_per_hour", ratePerHour)
	record.Set("unit_price", hoursPerUnit*ratePerHour)
	record.Set("unit_of_measure", "Each")
	record.Set("section", "Network")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test labor item: %v", err)
	}

	return record
}

// CreateTestOffering creates an active MSP offering with the given setup fee
// cost and margin. The stored setup fee is left for the caller to check.
func CreateTestOffering(t *testing.T, app core.App, name string, setupFeeCost, setupFeeMargin, setupFee float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("msp_offerings")
	if err != nil {
		t.Fatalf("failed to find msp_offerings collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("category", "Managed Services")
	record.Set("setup_fee_cost", setupFeeCost)
	record.Set("setup_fee_margin", setupFeeMargin)
	record.Set("setup_fee", setupFee)
	record.Set("is_active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test offering: %v", err)
	}

	return record
}

// CreateTestServiceLevel creates a per-user service level under an offering.
// basePrice is stored as given so tests can seed inconsistent rows.
func CreateTestServiceLevel(t *testing.T, app core.App, offeringID, name string, licenseCost, licenseMargin, basePrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("service_levels")
	if err != nil {
		t.Fatalf("failed to find service_levels collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("offering", offeringID)
	record.Set("name", name)
	record.Set("pricing_unit", "per_user")
	record.Set("license_cost", licenseCost)
	record.Set("license_margin", licenseMargin)
	record.Set("base_price", basePrice)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test service level: %v", err)
	}

	return record
}

// CreateTestOption creates an add-on option under a service level.
func CreateTestOption(t *testing.T, app core.App, levelID, name string, monthlyCost, marginPercent, monthlyPrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("service_level_options")
	if err != nil {
		t.Fatalf("failed to find service_level_options collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("service_level", levelID)
	record.Set("name", name)
	record.Set("pricing_unit", "per_user")
	record.Set("monthly_cost", monthlyCost)
	record.Set("margin_percent", marginPercent)
	record.Set("monthly_price", monthlyPrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test option: %v", err)
	}

	return record
}

// CreateTestBlueprint creates a solution blueprint with 10% overhead and 5%
// contingency and one item per catalog id, each with the given quantity.
func CreateTestBlueprint(t *testing.T, app core.App, name string, quantity float64, catalogItemIDs ...string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("solution_blueprints")
	if err != nil {
		t.Fatalf("failed to find solution_blueprints collection: %v", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("blueprint_items")
	if err != nil {
		t.Fatalf("failed to find blueprint_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("overhead_percent", 10)
	record.Set("contingency_percent", 5)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test blueprint: %v", err)
	}

	for i, id := range catalogItemIDs {
		item := core.NewRecord(itemsCol)
		item.Set("blueprint", record.Id)
		item.Set("catalog_item_id", id)
		item.Set("quantity", quantity)
		item.Set("sort_order", i+1)
		if err := app.Save(item); err != nil {
			t.Fatalf("failed to save test blueprint item: %v", err)
		}
	}

	return record
}

// CreateTestQuote creates a pending MSP quote with the given number and
// total and returns it.
func CreateTestQuote(t *testing.T, app core.App, quoteNumber, customer string, totalPrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("quote_number", quoteNumber)
	record.Set("customer_name", customer)
	record.Set("kind", "msp")
	record.Set("status", "pending")
	record.Set("offering_name", "Managed Endpoint")
	record.Set("service_level_name", "Basic")
	record.Set("pricing_unit", "per_user")
	record.Set("unit_price", totalPrice/12)
	record.Set("quantity", 1)
	record.Set("duration_months", 12)
	record.Set("monthly_price", totalPrice/12)
	record.Set("raw_total", totalPrice)
	record.Set("total_price", totalPrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	return record
}

// DecodeJSON unmarshals a response body into v, failing the test on error.
func DecodeJSON(t *testing.T, body string, v any) {
	t.Helper()

	if err := json.Unmarshal([]byte(body), v); err != nil {
		t.Fatalf("failed to decode JSON response: %v\nbody (first 500 chars): %s", err, truncate(body, 500))
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
