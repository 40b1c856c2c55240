package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

func TestSetToast_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	SetToast(e, "success", "Quote saved")

	trigger := rec.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}

	var parsed map[string]map[string]string
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	toast, ok := parsed["showToast"]
	if !ok {
		t.Fatal("expected showToast key in HX-Trigger JSON")
	}
	if toast["message"] != "Quote saved" {
		t.Errorf("expected message %q, got %q", "Quote saved", toast["message"])
	}
	if toast["type"] != "success" {
		t.Errorf("expected type %q, got %q", "success", toast["type"])
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	rec.Header().Set("HX-Trigger", `{"quoteChanged":{"id":"abc"}}`)

	SetToast(e, "success", "Merged toast")

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := parsed["quoteChanged"]; !ok {
		t.Error("expected quoteChanged key to be preserved after merge")
	}
	if _, ok := parsed["showToast"]; !ok {
		t.Error("expected showToast key after merge")
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
		t.Fatalf("HX-Trigger should be valid JSON after overwrite: %v", err)
	}
	if _, ok := parsed["showToast"]; !ok {
		t.Error("expected showToast key after overwriting invalid header")
	}
}

func TestSetToast_SpecialCharacters(t *testing.T) {
	messages := []string{`Item "Special" saved`, `<script>alert("xss")</script>`, "line1\nline2"}
	for _, msg := range messages {
		rec := httptest.NewRecorder()
		e := &core.RequestEvent{}
		e.Response = rec

		SetToast(e, "info", msg)

		var parsed map[string]map[string]string
		if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
			t.Fatalf("HX-Trigger is not valid JSON for message %q: %v", msg, err)
		}
		if parsed["showToast"]["message"] != msg {
			t.Errorf("expected message %q, got %q", msg, parsed["showToast"]["message"])
		}
	}
}

func TestErrorJSON_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	e.Request = httptest.NewRequest(http.MethodPost, "/labor-items", nil)

	fieldErrs := validation.Errors{"name": errors.New("cannot be blank")}
	if err := ErrorJSON(e, http.StatusBadRequest, "Validation failed", fieldErrs); err != nil {
		t.Fatalf("ErrorJSON returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none")
	}

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body.Message != "Validation failed" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Errors["name"] != "cannot be blank" {
		t.Errorf("errors.name = %q", body.Errors["name"])
	}
}

func TestErrorJSON_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input"},
		{"not found", http.StatusNotFound, "Quote not found"},
		{"conflict", http.StatusConflict, "Quote is no longer pending"},
		{"server error", http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec
			e.Request = httptest.NewRequest(http.MethodGet, "/quotes/x", nil)

			ErrorJSON(e, tt.code, tt.msg, nil)

			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not valid JSON: %v", err)
			}
			if _, ok := body["errors"]; ok {
				t.Error("errors key should be omitted without field errors")
			}
		})
	}
}
