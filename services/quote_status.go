package services

import (
	"errors"
	"fmt"
	"strings"
)

// QuoteStatus is the approval state of a quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusDenied   QuoteStatus = "denied"
)

var (
	ErrUnknownStatus   = errors.New("unknown quote status")
	ErrQuoteNotPending = errors.New("quote is no longer pending")
)

// ParseQuoteStatus normalizes a status string. The backend vocabulary
// "accepted"/"rejected" maps to approved/denied.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return QuoteStatusPending, nil
	case "approved", "accepted":
		return QuoteStatusApproved, nil
	case "denied", "rejected":
		return QuoteStatusDenied, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// TransitionQuoteStatus validates a single-step status change. Only pending
// quotes can be decided, and only to approved or denied.
func TransitionQuoteStatus(current, next QuoteStatus) error {
	if current != QuoteStatusPending {
		return fmt.Errorf("%w: status is %s", ErrQuoteNotPending, current)
	}
	if next != QuoteStatusApproved && next != QuoteStatusDenied {
		return fmt.Errorf("%w: cannot move to %s", ErrUnknownStatus, next)
	}
	return nil
}
