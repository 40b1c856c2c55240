package services

// PricingUnitOptions lists the billing bases of service levels and options.
var PricingUnitOptions = []string{
	string(PricingUnitPerUser),
	string(PricingUnitPerDevice),
	string(PricingUnitPerSite),
	string(PricingUnitFlat),
}

// UOMOptions lists the units of measure offered for labor catalog items.
var UOMOptions = []string{
	"Each",
	"Hour",
	"Day",
	"User",
	"Device",
	"Site",
	"Switch",
	"Access Point",
	"Server",
	"Mailbox",
	"Lot",
}

// QuoteKindOptions lists the quote kinds.
var QuoteKindOptions = []string{string(QuoteKindMSP), string(QuoteKindLabor)}

// QuoteStatusOptions lists the stored quote statuses.
var QuoteStatusOptions = []string{
	string(QuoteStatusPending),
	string(QuoteStatusApproved),
	string(QuoteStatusDenied),
}

// IsPricingUnit reports whether s is a known pricing unit.
func IsPricingUnit(s string) bool {
	for _, u := range PricingUnitOptions {
		if u == s {
			return true
		}
	}
	return false
}
