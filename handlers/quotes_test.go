package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"

	"quotedesk/testhelpers"
)

// createMSPQuote posts an MSP quote for a fresh offering and returns it.
func createMSPQuote(t *testing.T, app *pocketbase.PocketBase, customer string) quoteDTO {
	t.Helper()
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 400, 25, 500)
	level := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 12, 40, 16.8)

	body := fmt.Sprintf(`{"customerName": %q, "serviceLevelId": %q, "quantity": 25,
		"durationMonths": 12, "annualDiscountPercent": 10, "applySetupFee": true,
		"totalPrice": 1}`, customer, level.Id)
	rec := serve(t, app, HandleQuoteCreateMSP(app, testSettings()), newJSONRequest(http.MethodPost, "/quotes/msp", body))
	assertStatus(t, rec, http.StatusCreated)

	var dto quoteDTO
	testhelpers.DecodeJSON(t, rec.Body.String(), &dto)
	return dto
}

func TestHandleQuoteCreateMSP(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	dto := createMSPQuote(t, app, "Acme Corp")

	wantNumber := fmt.Sprintf("Q-MSP-%02d-001", time.Now().Year()%100)
	if dto.QuoteNumber != wantNumber {
		t.Errorf("expected quote number %s, got %s", wantNumber, dto.QuoteNumber)
	}
	if dto.Status != "pending" || dto.Kind != "msp" {
		t.Errorf("expected pending msp quote, got %s/%s", dto.Status, dto.Kind)
	}
	if dto.OfferingName != "Managed Endpoint" || dto.ServiceLevelName != "Basic" {
		t.Errorf("expected name snapshots, got %q/%q", dto.OfferingName, dto.ServiceLevelName)
	}
	// 16.80 * 25 = 420/month, 5040 raw, 504 discount, +500 setup
	if dto.MonthlyPrice != 420 || dto.RawTotal != 5040 || dto.DiscountAmount != 504 {
		t.Errorf("unexpected amounts %+v", dto)
	}
	if dto.TotalPrice != 5036 {
		t.Errorf("expected server-computed total 5036, got %v", dto.TotalPrice)
	}
}

func TestHandleQuoteCreateMSP_SequentialNumbers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	first := createMSPQuote(t, app, "Acme Corp")
	second := createMSPQuote(t, app, "Globex")

	if first.QuoteNumber == second.QuoteNumber {
		t.Fatalf("expected distinct numbers, both %s", first.QuoteNumber)
	}
	if !strings.HasSuffix(second.QuoteNumber, "-002") {
		t.Errorf("expected second number to end in -002, got %s", second.QuoteNumber)
	}
}

func TestHandleQuoteCreateMSP_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	offering := testhelpers.CreateTestOffering(t, app, "Managed Endpoint", 0, 0, 0)
	level := testhelpers.CreateTestServiceLevel(t, app, offering.Id, "Basic", 10, 0, 10)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing customer", fmt.Sprintf(`{"serviceLevelId": %q, "quantity": 1, "durationMonths": 1}`, level.Id), "customerName"},
		{"zero quantity", fmt.Sprintf(`{"customerName": "A", "serviceLevelId": %q, "quantity": 0, "durationMonths": 1}`, level.Id), "quantity"},
		{"zero months", fmt.Sprintf(`{"customerName": "A", "serviceLevelId": %q, "quantity": 1, "durationMonths": 0}`, level.Id), "durationMonths"},
		{"inline price not allowed", `{"customerName": "A", "basePrice": 10, "quantity": 1, "durationMonths": 1}`, "serviceLevelId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app, HandleQuoteCreateMSP(app, testSettings()), newJSONRequest(http.MethodPost, "/quotes/msp", tt.body))
			assertStatus(t, rec, http.StatusBadRequest)

			var resp map[string]any
			testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
			errs, _ := resp["errors"].(map[string]any)
			if errs[tt.field] == nil {
				t.Errorf("expected error on %s, got %v", tt.field, resp)
			}
		})
	}
}

func TestHandleQuoteCreateLabor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	survey := testhelpers.CreateTestLaborItem(t, app, "Site survey", 8, 140)

	body := fmt.Sprintf(`{
		"customerName": "Acme Corp",
		"projectManagementHours": 10, "projectManagementRate": 150,
		"solutions": [
			{"name": "Wi-Fi", "overheadPercent": 10, "items": [{"catalogItemId": %q, "quantity": 2}]},
			{"name": "Cabling", "items": [{"name": "Cable drop", "quantity": 20, "hoursPerUnit": 0.5, "ratePerHour": 90}]}
		]
	}`, survey.Id)
	rec := serve(t, app, HandleQuoteCreateLabor(app, testSettings()), newJSONRequest(http.MethodPost, "/quotes/labor", body))
	assertStatus(t, rec, http.StatusCreated)

	var resp struct {
		Quote      quoteDTO
		Unresolved []string
	}
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	q := resp.Quote
	wantPrefix := fmt.Sprintf("Q-LAB-%02d-", time.Now().Year()%100)
	if !strings.HasPrefix(q.QuoteNumber, wantPrefix) {
		t.Errorf("expected labor number prefix %s, got %s", wantPrefix, q.QuoteNumber)
	}
	if len(q.Solutions) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(q.Solutions))
	}
	// Wi-Fi: 2240 + 224 = 2464; Cabling: 900; PM: 1500
	if q.Budget == nil || q.Budget.LaborSubtotal != 3364 || q.Budget.ProjectManagementCost != 1500 {
		t.Fatalf("unexpected budget %+v", q.Budget)
	}
	if q.TotalPrice != 4864 || q.Budget.GrandTotal != 4864 {
		t.Errorf("expected total 4864, got %v / %v", q.TotalPrice, q.Budget.GrandTotal)
	}
}

func TestHandleQuoteCreateLabor_OnlyUnresolved(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"customerName": "Acme", "solutions": [{"items": [{"catalogItemId": "gone", "quantity": 1}]}]}`
	rec := serve(t, app, HandleQuoteCreateLabor(app, testSettings()), newJSONRequest(http.MethodPost, "/quotes/labor", body))
	assertStatus(t, rec, http.StatusBadRequest)

	quotes, _ := app.FindAllRecords("quotes")
	if len(quotes) != 0 {
		t.Errorf("expected no quote saved, got %d", len(quotes))
	}
}

func TestHandleQuoteList_FiltersAndPagination(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for i := 1; i <= 5; i++ {
		testhelpers.CreateTestQuote(t, app, fmt.Sprintf("Q-MSP-26-%03d", i), fmt.Sprintf("Customer %d", i), float64(i*100))
	}
	approved := testhelpers.CreateTestQuote(t, app, "Q-MSP-26-006", "Approved Co", 600)
	approved.Set("status", "approved")
	if err := app.Save(approved); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		query      string
		wantItems  int
		wantTotal  int
		wantPages  int
		firstTotal float64
	}{
		{"default", "", 6, 6, 1, 0},
		{"page size", "?perPage=4&page=2&sort=total_price", 2, 6, 2, 500},
		{"status filter", "?status=pending", 5, 5, 1, 0},
		{"accepted alias", "?status=accepted", 1, 1, 1, 600},
		{"search", "?search=Approved", 1, 1, 1, 600},
		{"kind filter", "?kind=labor", 0, 0, 1, 0},
		{"page past end clamps", "?perPage=4&page=9&sort=total_price", 2, 6, 2, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app, HandleQuoteList(app), httptest.NewRequest(http.MethodGet, "/quotes"+tt.query, nil))
			assertStatus(t, rec, http.StatusOK)

			var resp quoteListResponse
			testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
			if len(resp.Items) != tt.wantItems || resp.TotalItems != tt.wantTotal || resp.TotalPages != tt.wantPages {
				t.Errorf("got items=%d total=%d pages=%d", len(resp.Items), resp.TotalItems, resp.TotalPages)
			}
			if tt.firstTotal != 0 && len(resp.Items) > 0 && resp.Items[0].TotalPrice != tt.firstTotal {
				t.Errorf("expected first total %v, got %v", tt.firstTotal, resp.Items[0].TotalPrice)
			}
		})
	}
}

func TestHandleQuoteList_InvalidFilters(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, q := range []string{"?status=maybe", "?kind=hardware"} {
		rec := serve(t, app, HandleQuoteList(app), httptest.NewRequest(http.MethodGet, "/quotes"+q, nil))
		assertStatus(t, rec, http.StatusBadRequest)
	}
}

func TestParseQuoteListParams_IgnoresUnknownSort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/quotes?sort=password&perPage=500&page=-1", nil)
	e := newTestRequestEvent(nil, req, httptest.NewRecorder())
	params, err := parseQuoteListParams(e)
	if err != nil {
		t.Fatal(err)
	}
	if params.Sort != defaultSort || params.PageSize != defaultPageSize || params.Page != defaultPage {
		t.Errorf("expected defaults, got %+v", params)
	}
}

func TestHandleQuoteGetAndDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Q-MSP-26-001", "Acme", 1200)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", quote.Id)
	rec := serve(t, app, HandleQuoteGet(app), req)
	assertStatus(t, rec, http.StatusOK)

	var dto quoteDTO
	testhelpers.DecodeJSON(t, rec.Body.String(), &dto)
	if dto.QuoteNumber != "Q-MSP-26-001" || dto.Budget != nil {
		t.Errorf("unexpected quote %+v", dto)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.SetPathValue("id", quote.Id)
	assertStatus(t, serve(t, app, HandleQuoteDelete(app), req), http.StatusNoContent)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", quote.Id)
	assertStatus(t, serve(t, app, HandleQuoteGet(app), req), http.StatusNotFound)
}

func TestHandleQuoteDelete_RemovesLines(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `{"customerName": "Acme", "solutions": [{"items": [{"name": "Custom", "quantity": 1, "hoursPerUnit": 2, "ratePerHour": 50}]}]}`
	rec := serve(t, app, HandleQuoteCreateLabor(app, testSettings()), newJSONRequest(http.MethodPost, "/quotes/labor", body))
	assertStatus(t, rec, http.StatusCreated)

	var resp struct{ Quote quoteDTO }
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.SetPathValue("id", resp.Quote.ID)
	assertStatus(t, serve(t, app, HandleQuoteDelete(app), req), http.StatusNoContent)

	lines, _ := app.FindAllRecords("quote_labor_lines")
	if len(lines) != 0 {
		t.Errorf("expected lines to be deleted with the quote, got %d", len(lines))
	}
}
