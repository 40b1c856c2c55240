package services

import (
	"testing"
)

func sampleQuoteExport() QuoteExportData {
	return QuoteExportData{
		QuoteNumber:      "Q-MSP-26-001",
		CustomerName:     "Acme",
		OfferingName:     "Managed Endpoint",
		ServiceLevelName: "Premium",
		Status:           "pending",
		CreatedDate:      "15 Jan 2026",
		DurationMonths:   12,
		Lines: []QuoteExportLine{
			{Description: "Premium", PricingUnit: "per_user", UnitPrice: d("100"), Quantity: 1, Months: 12, Amount: d("1200")},
		},
		MonthlyPrice:    d("100"),
		RawTotal:        d("1200"),
		DiscountPercent: d("10"),
		DiscountAmount:  d("120"),
		SetupFee:        d("250"),
		TotalPrice:      d("1330"),
		Notes:           "Prices exclude tax.",
	}
}

func TestGenerateQuotePDF_Basic(t *testing.T) {
	result, err := GenerateQuotePDF(sampleQuoteExport())
	if err != nil {
		t.Fatalf("GenerateQuotePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuotePDF() returned empty bytes")
	}
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateQuotePDF_NoDiscountNoFee(t *testing.T) {
	data := sampleQuoteExport()
	data.DurationMonths = 6
	data.DiscountAmount = d("0")
	data.SetupFee = d("0")
	data.Notes = ""

	result, err := GenerateQuotePDF(data)
	if err != nil {
		t.Fatalf("GenerateQuotePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuotePDF() returned empty bytes")
	}
}

func TestGenerateQuotePDF_NoLines(t *testing.T) {
	result, err := GenerateQuotePDF(QuoteExportData{QuoteNumber: "Q-MSP-26-002"})
	if err != nil {
		t.Fatalf("GenerateQuotePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuotePDF() returned empty bytes")
	}
}
