package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// HandleQuoteStatus moves a pending quote to approved or denied. Quotes that
// were already decided answer 409.
func HandleQuoteStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		raw := p.RequiredString("status", 20)
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}
		next, err := services.ParseQuoteStatus(raw)
		if err != nil {
			p.Fail("status", "must be approved or denied")
			return badRequest(e, p.Err())
		}

		var quote *core.Record
		err = app.RunInTransaction(func(txApp core.App) error {
			r, err := txApp.FindRecordById("quotes", e.Request.PathValue("id"))
			if err != nil {
				return err
			}
			current := services.QuoteStatus(r.GetString("status"))
			if err := services.TransitionQuoteStatus(current, next); err != nil {
				return err
			}
			r.Set("status", string(next))
			if err := txApp.Save(r); err != nil {
				return err
			}
			quote = r
			return nil
		})
		switch {
		case errors.Is(err, services.ErrQuoteNotPending):
			return ErrorJSON(e, http.StatusConflict, "Quote has already been decided", nil)
		case errors.Is(err, services.ErrUnknownStatus):
			p.Fail("status", "must be approved or denied")
			return badRequest(e, p.Err())
		case errors.Is(err, sql.ErrNoRows):
			return notFound(e, "Quote")
		case err != nil:
			return serverError(e, "quote_status: HandleQuoteStatus", err)
		}

		SetToast(e, "success", "Quote "+quote.GetString("quote_number")+" "+string(next))
		return e.JSON(http.StatusOK, quoteToDTO(quote))
	}
}
