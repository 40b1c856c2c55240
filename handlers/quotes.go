package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/config"
	"quotedesk/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultPage     = 1
	defaultSort     = "-created"
)

// quoteListParams holds parsed query parameters for the quote list.
type quoteListParams struct {
	Page     int
	PageSize int
	Status   string
	Kind     string
	Search   string
	Sort     string
}

var allowedQuoteSorts = map[string]bool{
	"created": true, "updated": true, "quote_number": true,
	"customer_name": true, "total_price": true, "status": true,
}

// parseQuoteListParams extracts and validates query parameters.
func parseQuoteListParams(e *core.RequestEvent) (quoteListParams, error) {
	q := e.Request.URL.Query()
	params := quoteListParams{
		Page:     defaultPage,
		PageSize: defaultPageSize,
		Sort:     defaultSort,
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("perPage")); err == nil && v > 0 && v <= maxPageSize {
		params.PageSize = v
	}
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		status, err := services.ParseQuoteStatus(s)
		if err != nil {
			return params, err
		}
		params.Status = string(status)
	}
	if k := strings.TrimSpace(q.Get("kind")); k != "" {
		if k != string(services.QuoteKindMSP) && k != string(services.QuoteKindLabor) {
			return params, fmt.Errorf("unknown quote kind %q", k)
		}
		params.Kind = k
	}
	params.Search = strings.TrimSpace(q.Get("search"))
	if s := q.Get("sort"); s != "" && allowedQuoteSorts[strings.TrimPrefix(s, "-")] {
		params.Sort = s
	}
	return params, nil
}

// buildQuoteFilter constructs a PocketBase filter string and bind params.
func buildQuoteFilter(params quoteListParams) (string, map[string]any) {
	var clauses []string
	bind := map[string]any{}
	if params.Status != "" {
		clauses = append(clauses, "status = {:status}")
		bind["status"] = params.Status
	}
	if params.Kind != "" {
		clauses = append(clauses, "kind = {:kind}")
		bind["kind"] = params.Kind
	}
	if params.Search != "" {
		clauses = append(clauses, "(customer_name ~ {:search} || quote_number ~ {:search})")
		bind["search"] = params.Search
	}
	if len(clauses) == 0 {
		return matchAll, bind
	}
	return strings.Join(clauses, " && "), bind
}

type quoteListResponse struct {
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	Items      []quoteDTO `json:"items"`
}

// HandleQuoteList lists quotes with status/kind filters, search, sorting
// and pagination.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params, err := parseQuoteListParams(e)
		if err != nil {
			return badRequest(e, err)
		}
		filter, bind := buildQuoteFilter(params)

		all, err := app.FindRecordsByFilter("quotes", filter, params.Sort, 0, 0, bind)
		if err != nil {
			return serverError(e, "quotes: HandleQuoteList: count", err)
		}
		totalCount := len(all)

		totalPages := int(math.Ceil(float64(totalCount) / float64(params.PageSize)))
		if totalPages < 1 {
			totalPages = 1
		}
		if params.Page > totalPages {
			params.Page = totalPages
		}

		offset := (params.Page - 1) * params.PageSize
		records, err := app.FindRecordsByFilter("quotes", filter, params.Sort, params.PageSize, offset, bind)
		if err != nil {
			return serverError(e, "quotes: HandleQuoteList: query", err)
		}

		resp := quoteListResponse{
			Page:       params.Page,
			PerPage:    params.PageSize,
			TotalItems: totalCount,
			TotalPages: totalPages,
			Items:      make([]quoteDTO, 0, len(records)),
		}
		for _, r := range records {
			resp.Items = append(resp.Items, quoteToDTO(r))
		}
		return e.JSON(http.StatusOK, resp)
	}
}

// loadQuote returns a quote; labor quotes include their solutions and a
// budget recomputed from the stored line snapshots.
func loadQuote(app core.App, r *core.Record) (quoteDTO, error) {
	dto := quoteToDTO(r)
	if r.GetString("kind") != string(services.QuoteKindLabor) {
		return dto, nil
	}

	draft, err := loadQuoteDraft(app, r)
	if err != nil {
		return dto, err
	}
	dto.Solutions = []solutionDTO{}
	for _, s := range draft.Solutions {
		dto.Solutions = append(dto.Solutions, solutionToDTO(s))
	}
	dto.Budget = budgetToDTO(services.CalcLaborBudget(draft))
	return dto, nil
}

// HandleQuoteGet returns one quote.
func HandleQuoteGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "Quote")
		}
		dto, err := loadQuote(app, r)
		if err != nil {
			return serverError(e, "quotes: HandleQuoteGet", err)
		}
		return e.JSON(http.StatusOK, dto)
	}
}

// HandleQuoteDelete deletes a quote with its solutions and lines.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return deleteRecord(e, app, "quotes", "Quote")
	}
}

// newQuoteRecord creates an unsaved pending quote with the next number.
func newQuoteRecord(app core.App, cfg *config.Settings, kind services.QuoteKind, customer, notes string) (*core.Record, error) {
	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		return nil, fmt.Errorf("quotes collection not found: %w", err)
	}
	number, err := services.GenerateQuoteNumber(app, cfg.QuotePrefix, kind, time.Now())
	if err != nil {
		return nil, err
	}

	r := core.NewRecord(col)
	r.Set("quote_number", number)
	r.Set("customer_name", customer)
	r.Set("kind", string(kind))
	r.Set("status", string(services.QuoteStatusPending))
	r.Set("notes", notes)
	return r, nil
}

// HandleQuoteCreateMSP prices and saves an MSP quote. Prices are computed
// on the server from the stored service level; totals in the body are
// ignored.
func HandleQuoteCreateMSP(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		customer := p.RequiredString("customerName", 200)
		notes := p.String("notes")
		req, err := parseMSPRequest(app, p, false, 1)
		if err != nil {
			if p.Err() != nil {
				return badRequest(e, err)
			}
			return serverError(e, "quotes: HandleQuoteCreateMSP: parse", err)
		}

		t := req.totals()
		var quote *core.Record
		err = app.RunInTransaction(func(txApp core.App) error {
			r, err := newQuoteRecord(txApp, cfg, services.QuoteKindMSP, customer, notes)
			if err != nil {
				return err
			}
			if req.offering != nil {
				r.Set("offering", req.offering.Id)
				r.Set("offering_name", req.offering.GetString("name"))
			}
			r.Set("service_level", req.levelRecord.Id)
			r.Set("service_level_name", req.level.Name)
			r.Set("options", req.optionIDs)
			r.Set("pricing_unit", string(req.level.PricingUnit))
			r.Set("unit_price", money(req.unitPrice()))
			r.Set("quantity", req.quantity)
			r.Set("duration_months", req.months)
			r.Set("annual_discount_percent", req.discount.InexactFloat64())
			r.Set("apply_setup_fee", req.applySetupFee)
			r.Set("setup_fee", money(t.SetupFee))
			r.Set("monthly_price", money(t.MonthlyPrice))
			r.Set("raw_total", money(t.RawTotal))
			r.Set("discount_amount", money(t.DiscountAmount))
			r.Set("total_price", money(t.TotalPrice))
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save quote: %w", err)
			}
			quote = r
			return nil
		})
		if err != nil {
			return serverError(e, "quotes: HandleQuoteCreateMSP", err)
		}

		SetToast(e, "success", "Quote "+quote.GetString("quote_number")+" created")
		return e.JSON(http.StatusCreated, quoteToDTO(quote))
	}
}

// laborQuoteInput is everything needed to save a labor quote.
type laborQuoteInput struct {
	customerName string
	notes        string
	blueprintID  string
	draft        services.LaborDraft
}

// hasLines reports whether any solution of the draft has a priced line.
func hasLines(d services.LaborDraft) bool {
	for _, s := range d.Solutions {
		if len(s.Items) > 0 {
			return true
		}
	}
	return false
}

// createLaborQuote saves a labor quote, its solutions and line snapshots in
// one transaction.
func createLaborQuote(app core.App, cfg *config.Settings, in laborQuoteInput) (*core.Record, error) {
	budget := services.CalcLaborBudget(in.draft)

	var quote *core.Record
	err := app.RunInTransaction(func(txApp core.App) error {
		r, err := newQuoteRecord(txApp, cfg, services.QuoteKindLabor, in.customerName, in.notes)
		if err != nil {
			return err
		}
		setDraftParams(r, in.draft)
		r.Set("blueprint", in.blueprintID)
		r.Set("raw_total", money(budget.LaborSubtotal))
		r.Set("total_price", money(budget.GrandTotal))
		if err := txApp.Save(r); err != nil {
			return fmt.Errorf("save quote: %w", err)
		}
		if err := saveQuoteSolutions(txApp, r.Id, in.draft.Solutions); err != nil {
			return err
		}
		quote = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// HandleQuoteCreateLabor saves a labor quote from solutions of catalog
// selections and/or custom lines. Unresolved catalog ids are skipped and
// reported; at least one line must remain.
func HandleQuoteCreateLabor(app *pocketbase.PocketBase, cfg *config.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		customer := p.RequiredString("customerName", 200)
		notes := p.String("notes")
		draft, unresolved, err := parseLaborDraft(app, p)
		if err != nil {
			if p.Err() != nil {
				return badRequest(e, err)
			}
			return serverError(e, "quotes: HandleQuoteCreateLabor: parse", err)
		}
		if !hasLines(draft) {
			p.Fail("solutions", "at least one catalog item or line is required")
			return badRequest(e, p.Err())
		}

		quote, err := createLaborQuote(app, cfg, laborQuoteInput{
			customerName: customer,
			notes:        notes,
			draft:        draft,
		})
		if err != nil {
			return serverError(e, "quotes: HandleQuoteCreateLabor", err)
		}

		dto, err := loadQuote(app, quote)
		if err != nil {
			return serverError(e, "quotes: HandleQuoteCreateLabor: load", err)
		}
		SetToast(e, "success", "Quote "+quote.GetString("quote_number")+" created")
		return e.JSON(http.StatusCreated, map[string]any{
			"quote":      dto,
			"unresolved": append([]string{}, unresolved...),
		})
	}
}
