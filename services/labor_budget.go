package services

import "github.com/shopspring/decimal"

// LaborCatalogItem is a reusable unit-of-work definition.
type LaborCatalogItem struct {
	ID                    string
	Name                  string
	HoursPerUnit          decimal.Decimal
	RatePerHour           decimal.Decimal
	UnitPrice             decimal.Decimal // zero means hours * rate
	UnitOfMeasure         string
	Section               string
	ReferenceArchitecture string
}

// EffectiveUnitPrice returns the override unit price, or hours * rate when
// none is set.
func (c LaborCatalogItem) EffectiveUnitPrice() decimal.Decimal {
	if !c.UnitPrice.IsZero() {
		return c.UnitPrice
	}
	return c.HoursPerUnit.Mul(c.RatePerHour)
}

// LineSelection is a catalog item picked by the user with a quantity.
type LineSelection struct {
	CatalogItemID string
	Quantity      decimal.Decimal
}

// PricedLineEntry is a line whose hours and rate were copied from the
// catalog when it was selected. Later catalog edits do not affect it.
type PricedLineEntry struct {
	catalogItemID string
	name          string
	quantity      decimal.Decimal
	hoursPerUnit  decimal.Decimal
	ratePerHour   decimal.Decimal
}

// NewPricedLineEntry snapshots a catalog item for the given quantity.
func NewPricedLineEntry(item LaborCatalogItem, quantity decimal.Decimal) PricedLineEntry {
	return PricedLineEntry{
		catalogItemID: item.ID,
		name:          item.Name,
		quantity:      quantity,
		hoursPerUnit:  item.HoursPerUnit,
		ratePerHour:   item.RatePerHour,
	}
}

// RestorePricedLineEntry rebuilds a snapshot that was persisted earlier.
func RestorePricedLineEntry(catalogItemID, name string, quantity, hoursPerUnit, ratePerHour decimal.Decimal) PricedLineEntry {
	return PricedLineEntry{
		catalogItemID: catalogItemID,
		name:          name,
		quantity:      quantity,
		hoursPerUnit:  hoursPerUnit,
		ratePerHour:   ratePerHour,
	}
}

func (p PricedLineEntry) CatalogItemID() string { return p.catalogItemID }
func (p PricedLineEntry) Name() string { return p.name }
func (p PricedLineEntry) Quantity() decimal.Decimal { return p.quantity }
func (p PricedLineEntry) HoursPerUnit() decimal.Decimal { return p.hoursPerUnit }
func (p PricedLineEntry) RatePerHour() decimal.Decimal { return p.ratePerHour }
func (p PricedLineEntry) LineHours() decimal.Decimal { return p.quantity.Mul(p.hoursPerUnit) }
func (p PricedLineEntry) LineCost() decimal.Decimal { return p.LineHours().Mul(p.ratePerHour) }

// PriceSelections resolves selections against the catalog. Selections whose
// catalog item cannot be found are skipped and their ids returned.
func PriceSelections(catalog map[string]LaborCatalogItem, selections []LineSelection) ([]PricedLineEntry, []string) {
	var entries []PricedLineEntry
	var unresolved []string
	for _, sel := range selections {
		item, ok := catalog[sel.CatalogItemID]
		if !ok {
			unresolved = append(unresolved, sel.CatalogItemID)
			continue
		}
		entries = append(entries, NewPricedLineEntry(item, sel.Quantity))
	}
	return entries, unresolved
}

// Solution is a named group of priced lines with its own overhead and
// contingency percentages.
type Solution struct {
	Name               string
	Items              []PricedLineEntry
	OverheadPercent    decimal.Decimal
	ContingencyPercent decimal.Decimal
}

// SolutionTotals holds the computed amounts of one solution.
type SolutionTotals struct {
	Name        string
	Hours       decimal.Decimal
	Subtotal    decimal.Decimal
	Overhead    decimal.Decimal
	Contingency decimal.Decimal
	Total       decimal.Decimal
}

// CalcSolution folds the lines of a solution into its totals.
func CalcSolution(s Solution) SolutionTotals {
	hours := decimal.Zero
	subtotal := decimal.Zero
	for _, item := range s.Items {
		hours = hours.Add(item.LineHours())
		subtotal = subtotal.Add(item.LineCost())
	}
	overhead := subtotal.Mul(s.OverheadPercent).Div(hundred)
	contingency := subtotal.Mul(s.ContingencyPercent).Div(hundred)

	return SolutionTotals{
		Name:        s.Name,
		Hours:       hours,
		Subtotal:    subtotal,
		Overhead:    overhead,
		Contingency: contingency,
		Total:       subtotal.Add(overhead).Add(contingency),
	}
}

// LaborDraft is the full set of solutions plus project-management and
// adoption parameters that make up a labor quote.
type LaborDraft struct {
	Solutions                []Solution
	ProjectManagementPercent decimal.Decimal
	ProjectManagementHours   decimal.Decimal
	ProjectManagementRate    decimal.Decimal
	AdoptionHours            decimal.Decimal
	AdoptionRate             decimal.Decimal
}

// LaborBudget holds the computed amounts of a whole draft.
type LaborBudget struct {
	Solutions             []SolutionTotals
	TotalHours            decimal.Decimal // line hours plus PM and adoption hours
	LaborSubtotal         decimal.Decimal
	ProjectManagementCost decimal.Decimal
	AdoptionCost          decimal.Decimal
	GrandTotal            decimal.Decimal
}

// CalcLaborBudget aggregates every solution of the draft and layers the
// project-management and adoption costs on top.
func CalcLaborBudget(d LaborDraft) LaborBudget {
	budget := LaborBudget{
		Solutions:     make([]SolutionTotals, 0, len(d.Solutions)),
		TotalHours:    decimal.Zero,
		LaborSubtotal: decimal.Zero,
	}
	for _, s := range d.Solutions {
		st := CalcSolution(s)
		budget.Solutions = append(budget.Solutions, st)
		budget.TotalHours = budget.TotalHours.Add(st.Hours)
		budget.LaborSubtotal = budget.LaborSubtotal.Add(st.Total)
	}

	budget.ProjectManagementCost = budget.LaborSubtotal.Mul(d.ProjectManagementPercent).Div(hundred).
		Add(d.ProjectManagementHours.Mul(d.ProjectManagementRate))
	budget.AdoptionCost = d.AdoptionHours.Mul(d.AdoptionRate)
	budget.TotalHours = budget.TotalHours.Add(d.ProjectManagementHours).Add(d.AdoptionHours)
	budget.GrandTotal = budget.LaborSubtotal.Add(budget.ProjectManagementCost).Add(budget.AdoptionCost)
	return budget
}
