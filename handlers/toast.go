package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

// SetToast sets the HX-Trigger response header so HTMX-driven clients show
// a toast notification. If an HX-Trigger header already exists, the toast
// payload is merged into the existing JSON object.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	}

	merged := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			merged = map[string]any{}
		}
	}
	merged["showToast"] = toast["showToast"]

	data, err := json.Marshal(merged)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
	Errors  error  `json:"errors,omitempty"`
}

// ErrorJSON writes a JSON error body and fires an error toast. Field errors
// are included when fieldErrs is a validation.Errors map.
func ErrorJSON(e *core.RequestEvent, statusCode int, message string, fieldErrs error) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")

	body := errorResponse{Message: message}
	var ve validation.Errors
	if errors.As(fieldErrs, &ve) && len(ve) > 0 {
		body.Errors = ve
	}
	return e.JSON(statusCode, body)
}

// badRequest reports a validation failure.
func badRequest(e *core.RequestEvent, err error) error {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return ErrorJSON(e, http.StatusBadRequest, "Validation failed", ve)
	}
	return ErrorJSON(e, http.StatusBadRequest, err.Error(), nil)
}

// notFound reports a missing record.
func notFound(e *core.RequestEvent, what string) error {
	return ErrorJSON(e, http.StatusNotFound, what+" not found", nil)
}

// serverError logs err and returns a generic message to the client.
func serverError(e *core.RequestEvent, logPrefix string, err error) error {
	log.Printf("%s: %v", logPrefix, err)
	return ErrorJSON(e, http.StatusInternalServerError, "Something went wrong", nil)
}
