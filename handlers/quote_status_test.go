package handlers

import (
	"net/http"
	"testing"

	"quotedesk/testhelpers"
)

func TestHandleQuoteStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantValue  string
	}{
		{"approve", `{"status": "approved"}`, http.StatusOK, "approved"},
		{"deny", `{"status": "denied"}`, http.StatusOK, "denied"},
		{"accepted alias", `{"status": "accepted"}`, http.StatusOK, "approved"},
		{"rejected alias", `{"status": "Rejected"}`, http.StatusOK, "denied"},
		{"back to pending", `{"status": "pending"}`, http.StatusBadRequest, "pending"},
		{"unknown", `{"status": "maybe"}`, http.StatusBadRequest, "pending"},
		{"missing", `{}`, http.StatusBadRequest, "pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			quote := testhelpers.CreateTestQuote(t, app, "Q-MSP-26-001", "Acme", 100)

			req := newJSONRequest(http.MethodPost, "/", tt.body)
			req.SetPathValue("id", quote.Id)
			rec := serve(t, app, HandleQuoteStatus(app), req)
			assertStatus(t, rec, tt.wantStatus)

			stored, err := app.FindRecordById("quotes", quote.Id)
			if err != nil {
				t.Fatal(err)
			}
			if got := stored.GetString("status"); got != tt.wantValue {
				t.Errorf("expected stored status %s, got %s", tt.wantValue, got)
			}
		})
	}
}

func TestHandleQuoteStatus_AlreadyDecided(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Q-MSP-26-001", "Acme", 100)

	req := newJSONRequest(http.MethodPost, "/", `{"status": "approved"}`)
	req.SetPathValue("id", quote.Id)
	assertStatus(t, serve(t, app, HandleQuoteStatus(app), req), http.StatusOK)

	req = newJSONRequest(http.MethodPost, "/", `{"status": "denied"}`)
	req.SetPathValue("id", quote.Id)
	assertStatus(t, serve(t, app, HandleQuoteStatus(app), req), http.StatusConflict)

	stored, _ := app.FindRecordById("quotes", quote.Id)
	if stored.GetString("status") != "approved" {
		t.Errorf("expected status to stay approved, got %s", stored.GetString("status"))
	}
}

func TestHandleQuoteStatus_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := newJSONRequest(http.MethodPost, "/", `{"status": "approved"}`)
	req.SetPathValue("id", "missing")
	assertStatus(t, serve(t, app, HandleQuoteStatus(app), req), http.StatusNotFound)
}
