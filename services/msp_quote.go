package services

import "github.com/shopspring/decimal"

// AnnualDiscountMinMonths is the contract length from which the annual
// discount applies. Shorter contracts get no discount at all.
const AnnualDiscountMinMonths = 12

// MSPQuoteTotals holds the computed amounts of an MSP quote.
type MSPQuoteTotals struct {
	MonthlyPrice   decimal.Decimal // base price (plus options) * quantity
	RawTotal       decimal.Decimal // MonthlyPrice * months
	DiscountAmount decimal.Decimal
	SetupFee       decimal.Decimal // fee actually charged, zero when not applied
	TotalPrice     decimal.Decimal // RawTotal - DiscountAmount + SetupFee
}

// CalculateQuote totals an MSP quote for one service level.
func CalculateQuote(level ServiceLevel, quantity, durationMonths int, annualDiscountPercent decimal.Decimal, applySetupFee bool, setupFee decimal.Decimal) MSPQuoteTotals {
	return CalculateQuoteWithOptions(level, nil, quantity, durationMonths, annualDiscountPercent, applySetupFee, setupFee)
}

// CalculateQuoteWithOptions is CalculateQuote with selected add-on options
// added to the per-unit monthly price.
func CalculateQuoteWithOptions(level ServiceLevel, options []Option, quantity, durationMonths int, annualDiscountPercent decimal.Decimal, applySetupFee bool, setupFee decimal.Decimal) MSPQuoteTotals {
	unitPrice := level.BasePrice
	for _, o := range options {
		unitPrice = unitPrice.Add(o.MonthlyPrice)
	}

	monthly := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	raw := monthly.Mul(decimal.NewFromInt(int64(durationMonths)))

	discount := decimal.Zero
	if durationMonths >= AnnualDiscountMinMonths {
		discount = raw.Mul(annualDiscountPercent).Div(hundred)
	}

	fee := decimal.Zero
	if applySetupFee {
		fee = setupFee
	}

	return MSPQuoteTotals{
		MonthlyPrice:   monthly,
		RawTotal:       raw,
		DiscountAmount: discount,
		SetupFee:       fee,
		TotalPrice:     raw.Sub(discount).Add(fee),
	}
}
