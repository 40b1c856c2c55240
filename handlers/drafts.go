package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

const maxSolutionsPerDraft = 50

// parseDraftParams reads the project-management and adoption parameters of
// a labor draft.
func parseDraftParams(p *payload) services.LaborDraft {
	return services.LaborDraft{
		ProjectManagementPercent: p.NonNegative("projectManagementPercent"),
		ProjectManagementHours:   p.NonNegative("projectManagementHours"),
		ProjectManagementRate:    p.NonNegative("projectManagementRate"),
		AdoptionHours:            p.NonNegative("adoptionHours"),
		AdoptionRate:             p.NonNegative("adoptionRate"),
	}
}

// parseLaborDraft builds a labor draft from a request payload. Each solution
// lists items that either reference the catalog by catalogItemId, which
// snapshots the current catalog hours and rate, or carry their own name,
// hoursPerUnit and ratePerHour. Catalog references that cannot be resolved
// are skipped and returned.
func parseLaborDraft(app core.App, p *payload) (services.LaborDraft, []string, error) {
	draft := parseDraftParams(p)

	rawSolutions := p.Objects("solutions")
	if len(rawSolutions) == 0 && p.Err() == nil {
		p.Fail("solutions", "at least one solution is required")
	}
	if len(rawSolutions) > maxSolutionsPerDraft {
		p.Fail("solutions", fmt.Sprintf("at most %d solutions are allowed", maxSolutionsPerDraft))
	}

	type itemInput struct {
		catalogID string
		name      string
		quantity  decimal.Decimal
		hours     decimal.Decimal
		rate      decimal.Decimal
	}
	type solutionInput struct {
		name        string
		overhead    decimal.Decimal
		contingency decimal.Decimal
		items       []itemInput
	}

	var inputs []solutionInput
	var catalogIDs []string
	for i, rs := range rawSolutions {
		prefix := fmt.Sprintf("solutions[%d]", i)
		in := solutionInput{
			name:        rs.String("name"),
			overhead:    rs.NonNegative("overheadPercent"),
			contingency: rs.NonNegative("contingencyPercent"),
		}
		if in.name == "" {
			in.name = fmt.Sprintf("Solution %d", i+1)
		}

		for j, ri := range rs.Objects("items") {
			item := itemInput{
				catalogID: ri.String("catalogItemId"),
				quantity:  ri.NonNegative("quantity"),
			}
			if item.catalogID == "" {
				item.name = ri.RequiredString("name", 200)
				item.hours = ri.NonNegative("hoursPerUnit")
				item.rate = ri.NonNegative("ratePerHour")
			} else {
				catalogIDs = append(catalogIDs, item.catalogID)
			}
			rs.Merge(fmt.Sprintf("items[%d]", j), ri)
			in.items = append(in.items, item)
		}
		p.Merge(prefix, rs)
		inputs = append(inputs, in)
	}

	if err := p.Err(); err != nil {
		return draft, nil, err
	}

	catalog, err := loadCatalog(app, catalogIDs)
	if err != nil {
		return draft, nil, err
	}

	var unresolved []string
	for _, in := range inputs {
		sol := services.Solution{
			Name:               in.name,
			OverheadPercent:    in.overhead,
			ContingencyPercent: in.contingency,
		}
		for _, it := range in.items {
			if it.catalogID == "" {
				sol.Items = append(sol.Items, services.RestorePricedLineEntry("", it.name, it.quantity, it.hours, it.rate))
				continue
			}
			entries, missing := services.PriceSelections(catalog, []services.LineSelection{{
				CatalogItemID: it.catalogID,
				Quantity:      it.quantity,
			}})
			sol.Items = append(sol.Items, entries...)
			unresolved = append(unresolved, missing...)
		}
		draft.Solutions = append(draft.Solutions, sol)
	}
	return draft, unresolved, nil
}

// saveQuoteSolutions persists the solutions and line snapshots of a labor
// draft under a quote.
func saveQuoteSolutions(app core.App, quoteID string, solutions []services.Solution) error {
	solutionsCol, err := app.FindCollectionByNameOrId("quote_solutions")
	if err != nil {
		return fmt.Errorf("quote_solutions collection not found: %w", err)
	}
	linesCol, err := app.FindCollectionByNameOrId("quote_labor_lines")
	if err != nil {
		return fmt.Errorf("quote_labor_lines collection not found: %w", err)
	}

	for i, s := range solutions {
		sr := core.NewRecord(solutionsCol)
		sr.Set("quote", quoteID)
		sr.Set("name", s.Name)
		sr.Set("overhead_percent", s.OverheadPercent.InexactFloat64())
		sr.Set("contingency_percent", s.ContingencyPercent.InexactFloat64())
		sr.Set("sort_order", i+1)
		if err := app.Save(sr); err != nil {
			return fmt.Errorf("save solution %q: %w", s.Name, err)
		}

		for j, l := range s.Items {
			lr := core.NewRecord(linesCol)
			lr.Set("solution", sr.Id)
			lr.Set("catalog_item_id", l.CatalogItemID())
			lr.Set("name", l.Name())
			lr.Set("quantity", l.Quantity().InexactFloat64())
			lr.Set("hours_per_unit", l.HoursPerUnit().InexactFloat64())
			lr.Set("rate_per_hour", l.RatePerHour().InexactFloat64())
			lr.Set("sort_order", j+1)
			if err := app.Save(lr); err != nil {
				return fmt.Errorf("save line %q: %w", l.Name(), err)
			}
		}
	}
	return nil
}

// setDraftParams writes the project-management and adoption parameters.
func setDraftParams(r *core.Record, d services.LaborDraft) {
	r.Set("project_management_percent", d.ProjectManagementPercent.InexactFloat64())
	r.Set("project_management_hours", d.ProjectManagementHours.InexactFloat64())
	r.Set("project_management_rate", d.ProjectManagementRate.InexactFloat64())
	r.Set("adoption_hours", d.AdoptionHours.InexactFloat64())
	r.Set("adoption_rate", d.AdoptionRate.InexactFloat64())
}
