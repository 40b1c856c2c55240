package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotedesk/testhelpers"
)

func TestHandleQuoteSummary_MSP(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	dto := createMSPQuote(t, app, "Acme Corp")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", dto.ID)
	rec := serve(t, app, HandleQuoteSummary(app, testSettings()), req)
	assertStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!DOCTYPE html>",
		"<title>"+dto.QuoteNumber,
		"Managed Endpoint - Basic",
		"Subtotal (12 months)",
		"Annual Discount (10%)",
		"-$504.00",
		"Setup Fee",
		"$5,036.00",
		"/quotes/"+dto.ID+"/export/pdf",
	)
}

func TestHandleQuoteSummary_HTMXPartial(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	id := createLaborQuoteViaAPI(t, app)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", id)
	rec := serve(t, app, HandleQuoteSummary(app, testSettings()), req)
	assertStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("expected partial content for HTMX request")
	}
	// Wi-Fi: 720; Cabling: 900 + 45 contingency
	testhelpers.AssertHTMLContains(t, body,
		`id="quote-summary"`,
		"Wi-Fi", "Cabling",
		"$945.00",
		"Grand Total", "$1,665.00",
		"/quotes/"+id+"/export/excel",
	)
}

func TestHandleQuoteSummary_EscapesCustomer(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Q-MSP-26-001", "<script>alert(1)</script>", 1200)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", quote.Id)
	rec := serve(t, app, HandleQuoteSummary(app, testSettings()), req)
	assertStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	if strings.Contains(body, "<script>alert") {
		t.Error("expected customer name to be escaped")
	}
	testhelpers.AssertHTMLContains(t, body, "&lt;script&gt;")
}

func TestHandleQuoteSummary_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", "missing")
	assertStatus(t, serve(t, app, HandleQuoteSummary(app, testSettings()), req), http.StatusNotFound)
}
