// Package services provides the pricing calculators, quote numbering,
// document exports and catalog import used by the quoting handlers.
package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculatePrice derives a sell price from a cost and a margin percentage:
// cost * (1 + margin/100), rounded to cents. A negative margin is a markdown.
func CalculatePrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(hundred))
	return cost.Mul(factor).Round(2)
}

// PricingUnit is the billing basis of a service level or add-on option.
type PricingUnit string

const (
	PricingUnitPerUser   PricingUnit = "per_user"
	PricingUnitPerDevice PricingUnit = "per_device"
	PricingUnitPerSite   PricingUnit = "per_site"
	PricingUnitFlat      PricingUnit = "flat"
)

// ServiceLevel is a priced tier of an MSP offering. BasePrice and
// ProfessionalServicesPrice are derived from their cost/margin pairs and
// must only be set through Reprice.
type ServiceLevel struct {
	ID                         string
	Name                       string
	PricingUnit                PricingUnit
	LicenseCost                decimal.Decimal
	LicenseMargin              decimal.Decimal
	BasePrice                  decimal.Decimal
	ProfessionalServicesCost   decimal.Decimal
	ProfessionalServicesMargin decimal.Decimal
	ProfessionalServicesPrice  decimal.Decimal
	Options                    []Option
}

// Reprice recomputes the derived prices of the level and of every option.
func (l *ServiceLevel) Reprice() {
	l.BasePrice = CalculatePrice(l.LicenseCost, l.LicenseMargin)
	l.ProfessionalServicesPrice = CalculatePrice(l.ProfessionalServicesCost, l.ProfessionalServicesMargin)
	for i := range l.Options {
		l.Options[i].Reprice()
	}
}

// Option is an add-on priced per month on top of a service level.
type Option struct {
	ID            string
	Name          string
	PricingUnit   PricingUnit
	MonthlyCost   decimal.Decimal
	MarginPercent decimal.Decimal
	MonthlyPrice  decimal.Decimal
}

// Reprice recomputes MonthlyPrice from MonthlyCost and MarginPercent.
func (o *Option) Reprice() {
	o.MonthlyPrice = CalculatePrice(o.MonthlyCost, o.MarginPercent)
}

// SetupFee is the one-time fee of an MSP offering.
type SetupFee struct {
	Cost   decimal.Decimal
	Margin decimal.Decimal
}

// Price returns the derived setup fee.
func (s SetupFee) Price() decimal.Decimal {
	return CalculatePrice(s.Cost, s.Margin)
}
