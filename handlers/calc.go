package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

// mspRequest is a validated MSP pricing request.
type mspRequest struct {
	offering      *core.Record
	levelRecord   *core.Record
	level         services.ServiceLevel
	options       []services.Option
	optionIDs     []string
	quantity      int
	months        int
	discount      decimal.Decimal
	applySetupFee bool
	setupFee      decimal.Decimal
}

// totals runs the MSP Quote Totalizer for the request.
func (r *mspRequest) totals() services.MSPQuoteTotals {
	return services.CalculateQuoteWithOptions(r.level, r.options, r.quantity, r.months, r.discount, r.applySetupFee, r.setupFee)
}

// unitPrice is the per-unit monthly price including options.
func (r *mspRequest) unitPrice() decimal.Decimal {
	u := r.level.BasePrice
	for _, o := range r.options {
		u = u.Add(o.MonthlyPrice)
	}
	return u
}

// parseMSPRequest reads an MSP pricing request. The service level comes from
// serviceLevelId, or from an inline basePrice when allowInline is set. The
// setup fee defaults to the offering's derived setup fee.
func parseMSPRequest(app core.App, p *payload, allowInline bool, minQuantity int) (*mspRequest, error) {
	req := &mspRequest{
		quantity:      p.Int("quantity"),
		months:        p.Int("durationMonths"),
		discount:      p.NonNegative("annualDiscountPercent"),
		applySetupFee: p.Bool("applySetupFee"),
		optionIDs:     uniqueStrings(p.Strings("optionIds")),
	}
	if req.quantity < minQuantity {
		p.Fail("quantity", fmt.Sprintf("must be at least %d", minQuantity))
	}
	if req.months < minQuantity {
		p.Fail("durationMonths", fmt.Sprintf("must be at least %d", minQuantity))
	}
	if req.discount.GreaterThan(hundredPercent) {
		p.Fail("annualDiscountPercent", "must be at most 100")
	}

	levelID := p.String("serviceLevelId")
	switch {
	case levelID != "":
		rec, err := app.FindRecordById("service_levels", levelID)
		if err != nil {
			p.Fail("serviceLevelId", "service level not found")
			break
		}
		req.levelRecord = rec
		req.level = serviceLevelFromRecord(rec)
		if off, err := app.FindRecordById("msp_offerings", rec.GetString("offering")); err == nil {
			req.offering = off
		}
	case allowInline && p.Has("basePrice"):
		req.level = services.ServiceLevel{Name: "Custom", BasePrice: p.NonNegative("basePrice")}
	default:
		p.Fail("serviceLevelId", "a service level is required")
	}

	if len(req.optionIDs) > 0 && levelID == "" {
		p.Fail("optionIds", "options require a serviceLevelId")
	}
	if len(req.optionIDs) > 0 && req.levelRecord != nil {
		records, err := app.FindRecordsByIds("service_level_options", req.optionIDs)
		if err != nil {
			return nil, fmt.Errorf("query options: %w", err)
		}
		if len(records) != len(req.optionIDs) {
			p.Fail("optionIds", "one or more options were not found")
		}
		for _, o := range records {
			if o.GetString("service_level") != req.levelRecord.Id {
				p.Fail("optionIds", "options must belong to the selected service level")
				break
			}
			req.options = append(req.options, optionFromRecord(o))
		}
	}

	switch {
	case p.Has("setupFee"):
		req.setupFee = p.NonNegative("setupFee")
	case req.offering != nil:
		req.setupFee = dec(req.offering, "setup_fee")
	}

	if err := p.Err(); err != nil {
		return nil, err
	}
	return req, nil
}

var hundredPercent = decimal.NewFromInt(100)

// uniqueStrings drops repeated values, keeping the first occurrence.
func uniqueStrings(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

type priceResponse struct {
	Cost          float64 `json:"cost"`
	MarginPercent float64 `json:"marginPercent"`
	Price         float64 `json:"price"`
}

// HandleCalcPrice runs the Margin Pricing Calculator.
func HandleCalcPrice(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		cost := p.NonNegative("cost")
		margin := p.Decimal("marginPercent")
		if err := p.Err(); err != nil {
			return badRequest(e, err)
		}

		return e.JSON(http.StatusOK, priceResponse{
			Cost:          cost.InexactFloat64(),
			MarginPercent: margin.InexactFloat64(),
			Price:         services.CalculatePrice(cost, margin).InexactFloat64(),
		})
	}
}

type mspTotalsResponse struct {
	ServiceLevelName string  `json:"serviceLevelName"`
	UnitPrice        float64 `json:"unitPrice"`
	Quantity         int     `json:"quantity"`
	DurationMonths   int     `json:"durationMonths"`
	MonthlyPrice     float64 `json:"monthlyPrice"`
	RawTotal         float64 `json:"rawTotal"`
	DiscountApplied  bool    `json:"discountApplied"`
	DiscountAmount   float64 `json:"discountAmount"`
	SetupFee         float64 `json:"setupFee"`
	TotalPrice       float64 `json:"totalPrice"`
}

// HandleCalcMSPQuote runs the MSP Quote Totalizer without saving anything.
func HandleCalcMSPQuote(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		req, err := parseMSPRequest(app, p, true, 0)
		if err != nil {
			if p.Err() != nil {
				return badRequest(e, err)
			}
			return serverError(e, "calc: HandleCalcMSPQuote", err)
		}

		t := req.totals()
		return e.JSON(http.StatusOK, mspTotalsResponse{
			ServiceLevelName: req.level.Name,
			UnitPrice:        money(req.unitPrice()),
			Quantity:         req.quantity,
			DurationMonths:   req.months,
			MonthlyPrice:     money(t.MonthlyPrice),
			RawTotal:         money(t.RawTotal),
			DiscountApplied:  req.months >= services.AnnualDiscountMinMonths,
			DiscountAmount:   money(t.DiscountAmount),
			SetupFee:         money(t.SetupFee),
			TotalPrice:       money(t.TotalPrice),
		})
	}
}

type laborBudgetResponse struct {
	Solutions  []solutionDTO `json:"solutions"`
	Budget     *budgetDTO    `json:"budget"`
	Unresolved []string      `json:"unresolved"`
}

// HandleCalcLaborBudget runs the Labor Budget Aggregator over an ad hoc
// draft without saving anything.
func HandleCalcLaborBudget(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := readPayload(e)
		if err != nil {
			return badRequest(e, err)
		}
		draft, unresolved, err := parseLaborDraft(app, p)
		if err != nil {
			if p.Err() != nil {
				return badRequest(e, err)
			}
			return serverError(e, "calc: HandleCalcLaborBudget", err)
		}

		resp := laborBudgetResponse{
			Solutions:  []solutionDTO{},
			Budget:     budgetToDTO(services.CalcLaborBudget(draft)),
			Unresolved: []string{},
		}
		resp.Unresolved = append(resp.Unresolved, unresolved...)
		for _, s := range draft.Solutions {
			resp.Solutions = append(resp.Solutions, solutionToDTO(s))
		}
		return e.JSON(http.StatusOK, resp)
	}
}
