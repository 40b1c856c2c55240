package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"

	"quotedesk/testhelpers"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 0.005 }

func TestHandleCalcPrice(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		name string
		body string
		want float64
	}{
		{"camelCase", `{"cost": 100, "marginPercent": 25}`, 125},
		{"snake_case", `{"cost": 100, "margin_percent": 25}`, 125},
		{"PascalCase strings", `{"Cost": "80", "MarginPercent": "12.5"}`, 90},
		{"zero cost", `{"cost": 0, "marginPercent": 50}`, 0},
		{"full markdown", `{"cost": 10, "marginPercent": -100}`, 0},
		{"rounds to cents", `{"cost": 9.99, "marginPercent": 33.333}`, 13.32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app, HandleCalcPrice(app), newJSONRequest(http.MethodPost, "/calc/price", tt.body))
			assertStatus(t, rec, http.StatusOK)

			var resp priceResponse
			testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
			if !approx(resp.Price, tt.want) {
				t.Errorf("expected price %.2f, got %.2f", tt.want, resp.Price)
			}
		})
	}
}

func TestHandleCalcPrice_NegativeCost(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := serve(t, app, HandleCalcPrice(app),
		newJSONRequest(http.MethodPost, "/calc/price", `{"cost": -5, "marginPercent": 10}`))
	assertStatus(t, rec, http.StatusBadRequest)

	var resp map[string]any
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	errs, ok := resp["errors"].(map[string]any)
	if !ok || errs["cost"] == nil {
		t.Errorf("expected field error for cost, got %v", resp)
	}
}

func TestHandleCalcMSPQuote_InlineBasePrice(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"basePrice": 20, "quantity": 10, "durationMonths": 12,
		"annualDiscountPercent": 10, "applySetupFee": true, "setupFee": 500}`
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusOK)

	var resp mspTotalsResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if resp.MonthlyPrice != 200 || resp.RawTotal != 2400 {
		t.Errorf("unexpected monthly/raw: %v / %v", resp.MonthlyPrice, resp.RawTotal)
	}
	if resp.DiscountAmount != 240 || !resp.DiscountApplied {
		t.Errorf("expected 240 discount, got %v", resp.DiscountAmount)
	}
	if resp.TotalPrice != 2660 {
		t.Errorf("expected total 2660, got %v", resp.TotalPrice)
	}
}

func TestHandleCalcMSPQuote_DiscountCliff(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"basePrice": 20, "quantity": 10, "durationMonths": 11, "annualDiscountPercent": 10}`
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusOK)

	var resp mspTotalsResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if resp.DiscountAmount != 0 || resp.DiscountApplied {
		t.Errorf("expected no discount under 12 months, got %v", resp.DiscountAmount)
	}
	if resp.TotalPrice != 2200 {
		t.Errorf("expected total 2200, got %v", resp.TotalPrice)
	}
}

func TestHandleCalcMSPQuote_ServiceLevelWithOptions(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 400, 25, 500)
	level := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 12, 40, 16.8)
	opt := testhelpers.CreateTestOption(t, app, level.Id, "Backup", 4, 50, 6)

	body := fmt.Sprintf(`{"serviceLevelId": %q, "optionIds": [%q], "quantity": 25,
		"durationMonths": 12, "applySetupFee": true}`, level.Id, opt.Id)
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusOK)

	var resp mspTotalsResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if !approx(resp.UnitPrice, 22.8) {
		t.Errorf("expected unit price 22.80, got %v", resp.UnitPrice)
	}
	if !approx(resp.MonthlyPrice, 570) {
		t.Errorf("expected monthly 570, got %v", resp.MonthlyPrice)
	}
	// Setup fee defaults to the offering's fee.
	if !approx(resp.SetupFee, 500) || !approx(resp.TotalPrice, 7340) {
		t.Errorf("expected setup 500 and total 7340, got %v / %v", resp.SetupFee, resp.TotalPrice)
	}
}

func TestHandleCalcMSPQuote_ForeignOption(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 0, 0, 0)
	basic := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 10, 0, 10)
	premium := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Premium", 20, 0, 20)
	opt := testhelpers.CreateTestOption(t, app, premium.Id, "Backup", 4, 0, 4)

	body := fmt.Sprintf(`{"serviceLevelId": %q, "optionIds": [%q], "quantity": 1, "durationMonths": 1}`, basic.Id, opt.Id)
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleCalcMSPQuote_OptionsNeedServiceLevel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 0, 0, 0)
	level := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 10, 0, 10)
	opt := testhelpers.CreateTestOption(t, app, level.Id, "Backup", 5, 0, 5)

	body := fmt.Sprintf(`{"basePrice": 10, "optionIds": [%q], "quantity": 1, "durationMonths": 1}`, opt.Id)
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusBadRequest)

	var resp map[string]any
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	errs, _ := resp["errors"].(map[string]any)
	if errs["optionIds"] == nil {
		t.Errorf("expected error on optionIds, got %v", resp)
	}
}

func TestHandleCalcMSPQuote_DuplicateOptionIds(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 0, 0, 0)
	level := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 10, 0, 10)
	opt := testhelpers.CreateTestOption(t, app, level.Id, "Backup", 5, 0, 5)

	body := fmt.Sprintf(`{"serviceLevelId": %q, "optionIds": [%q, %q], "quantity": 1, "durationMonths": 1}`,
		level.Id, opt.Id, opt.Id)
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusOK)

	var resp mspTotalsResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	// The option counts once: 10 + 5.
	if !approx(resp.UnitPrice, 15) || !approx(resp.TotalPrice, 15) {
		t.Errorf("expected unit and total 15, got %v / %v", resp.UnitPrice, resp.TotalPrice)
	}
}

func TestUniqueStrings(t *testing.T) {
	got := uniqueStrings([]string{"a", "b", "a", "c", "b"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("uniqueStrings = %v, want [a b c]", got)
	}
}

func TestHandleCalcMSPQuote_UnknownLevel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"serviceLevelId": "missing", "quantity": 1, "durationMonths": 1}`
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleCalcMSPQuote_DiscountOver100(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"basePrice": 10, "quantity": 1, "durationMonths": 12, "annualDiscountPercent": 150}`
	rec := serve(t, app, HandleCalcMSPQuote(app), newJSONRequest(http.MethodPost, "/calc/msp-quote", body))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleCalcLaborBudget(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	survey := testhelpers.CreateTestLaborItem(t, app, "Site survey", 8, 140)

	body := fmt.Sprintf(`{
		"projectManagementPercent": 10,
		"adoptionHours": 4, "adoptionRate": 120,
		"solutions": [{
			"name": "Wi-Fi", "overheadPercent": 10, "contingencyPercent": 5,
			"items": [
				{"catalogItemId": %q, "quantity": 1},
				{"name": "AP install", "quantity": 10, "hoursPerUnit": 1.5, "ratePerHour": 100},
				{"catalogItemId": "deleted-item", "quantity": 3}
			]
		}]
	}`, survey.Id)
	rec := serve(t, app, HandleCalcLaborBudget(app), newJSONRequest(http.MethodPost, "/calc/labor-budget", body))
	assertStatus(t, rec, http.StatusOK)

	var resp laborBudgetResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if len(resp.Unresolved) != 1 || resp.Unresolved[0] != "deleted-item" {
		t.Errorf("expected deleted-item unresolved, got %v", resp.Unresolved)
	}
	if len(resp.Solutions) != 1 || len(resp.Solutions[0].Lines) != 2 {
		t.Fatalf("expected 1 solution with 2 lines, got %+v", resp.Solutions)
	}
	b := resp.Budget
	if b.LaborSubtotal != 3013 || b.ProjectManagementCost != 301.3 || b.AdoptionCost != 480 {
		t.Errorf("unexpected budget %+v", b)
	}
	if b.GrandTotal != 3794.3 || b.TotalHours != 27 {
		t.Errorf("unexpected grand total/hours %v / %v", b.GrandTotal, b.TotalHours)
	}
}

func TestHandleCalcLaborBudget_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"no solutions", `{}`},
		{"negative quantity", `{"solutions": [{"items": [{"name": "x", "quantity": -1}]}]}`},
		{"inline line without name", `{"solutions": [{"items": [{"quantity": 1, "hoursPerUnit": 1}]}]}`},
		{"negative overhead", `{"solutions": [{"overheadPercent": -5, "items": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app, HandleCalcLaborBudget(app), newJSONRequest(http.MethodPost, "/calc/labor-budget", tt.body))
			assertStatus(t, rec, http.StatusBadRequest)
		})
	}
}
