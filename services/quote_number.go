package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// QuoteKind distinguishes MSP subscription quotes from labor budget quotes.
type QuoteKind string

const (
	QuoteKindMSP   QuoteKind = "msp"
	QuoteKindLabor QuoteKind = "labor"
)

// DefaultQuotePrefix is used when no prefix is configured.
const DefaultQuotePrefix = "Q"

// kindCode returns the short code embedded in quote numbers.
func kindCode(kind QuoteKind) string {
	if kind == QuoteKindLabor {
		return "LAB"
	}
	return "MSP"
}

// formatQuoteNumber constructs the quote number string from components.
func formatQuoteNumber(prefix string, kind QuoteKind, year int, sequence int) string {
	return fmt.Sprintf("%s-%s-%02d-%03d", prefix, kindCode(kind), year%100, sequence)
}

// GenerateQuoteNumber creates the next quote number for a kind.
// Format: {prefix}-{MSP|LAB}-{yy}-{sequence}
//   - yy: calendar year of now
//   - sequence: at least 3 digits zero-padded, per kind per year, one past
//     the highest
func GenerateQuoteNumber(app core.App, prefix string, kind QuoteKind, now time.Time) (string, error) {
	if prefix == "" {
		prefix = DefaultQuotePrefix
	}

	like := fmt.Sprintf("%s-%s-%02d-", prefix, kindCode(kind), now.Year()%100)

	// Numbers are text, so "-1000" sorts below "-999". Every number of the
	// kind and year is scanned and the highest parsed sequence wins, which
	// also keeps deleted quotes from causing a reuse.
	existing, err := app.FindRecordsByFilter(
		"quotes",
		"kind = {:kind} && quote_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{
			"kind":   string(kind),
			"prefix": like + "%",
		},
	)
	if err != nil {
		return "", fmt.Errorf("query quote numbers: %w", err)
	}

	highest := 0
	for _, r := range existing {
		seq, err := strconv.Atoi(strings.TrimPrefix(r.GetString("quote_number"), like))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	next := highest + 1

	return formatQuoteNumber(prefix, kind, now.Year(), next), nil
}
