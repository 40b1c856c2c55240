package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		name   string
		cost   string
		margin string
		expect string
	}{
		{"positive margin", "100", "25", "125"},
		{"markdown", "100", "-50", "50"},
		{"zero margin", "200", "0", "200"},
		{"zero cost", "0", "35", "0"},
		{"full markdown", "80", "-100", "0"},
		{"rounds to cents", "10", "33.333", "13.33"},
		{"rounds half up", "0.05", "50", "0.08"},
		{"fractional cost", "19.99", "15", "22.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrice(d(tt.cost), d(tt.margin))
			assert.True(t, got.Equal(d(tt.expect)), "CalculatePrice(%s, %s) = %s, want %s", tt.cost, tt.margin, got, tt.expect)
		})
	}
}

func TestCalculatePrice_ZeroCostAnyMargin(t *testing.T) {
	for _, m := range []string{"-250", "-100", "0", "12.5", "1000"} {
		assert.True(t, CalculatePrice(decimal.Zero, d(m)).IsZero(), "margin %s", m)
	}
}

func TestCalculatePrice_MonotonicInMargin(t *testing.T) {
	cost := d("137.42")
	prev := CalculatePrice(cost, d("-100"))
	for m := -99; m <= 300; m++ {
		got := CalculatePrice(cost, decimal.NewFromInt(int64(m)))
		assert.True(t, got.GreaterThan(prev), "margin %d: %s not greater than %s", m, got, prev)
		prev = got
	}
}

func TestCalculatePrice_Idempotent(t *testing.T) {
	first := CalculatePrice(d("42.10"), d("17.5"))
	second := CalculatePrice(d("42.10"), d("17.5"))
	assert.True(t, first.Equal(second))
}

func TestServiceLevel_Reprice(t *testing.T) {
	level := ServiceLevel{
		Name:                       "Premium",
		LicenseCost:                d("40"),
		LicenseMargin:              d("25"),
		BasePrice:                  d("999"), // stale
		ProfessionalServicesCost:   d("1000"),
		ProfessionalServicesMargin: d("10"),
		Options: []Option{
			{Name: "Backup", MonthlyCost: d("5"), MarginPercent: d("100")},
		},
	}

	level.Reprice()

	assert.True(t, level.BasePrice.Equal(d("50")), "BasePrice = %s", level.BasePrice)
	assert.True(t, level.ProfessionalServicesPrice.Equal(d("1100")), "ProfessionalServicesPrice = %s", level.ProfessionalServicesPrice)
	assert.True(t, level.Options[0].MonthlyPrice.Equal(d("10")), "option MonthlyPrice = %s", level.Options[0].MonthlyPrice)
}

func TestSetupFee_Price(t *testing.T) {
	fee := SetupFee{Cost: d("500"), Margin: d("20")}
	assert.True(t, fee.Price().Equal(d("600")))
}
