package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when no symbol is configured.
const DefaultCurrencySymbol = "$"

// FormatMoney formats an amount with the given currency symbol, thousands
// separators and exactly 2 decimal places (e.g. $1,234,567.89).
func FormatMoney(amount decimal.Decimal, symbol string) string {
	negative := amount.IsNegative()
	raw := amount.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	result := symbol + applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative && !amount.Round(2).IsZero() {
		result = "-" + result
	}
	return result
}

// FormatUSD is FormatMoney with the default symbol.
func FormatUSD(amount decimal.Decimal) string {
	return FormatMoney(amount, DefaultCurrencySymbol)
}

// FormatPercent renders a percentage with up to 2 decimals and no trailing
// zeros (10 → "10%", 12.5 → "12.5%").
func FormatPercent(p decimal.Decimal) string {
	return p.Round(2).String() + "%"
}

// applyThousandsGrouping inserts a comma every 3 digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
