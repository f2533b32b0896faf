package enums

import (
	"fmt"
	"slices"
)

// PaymentOutcome is the result reported by a payment operator callback.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

var paymentOutcomeValues = []PaymentOutcome{
	PaymentOutcomeSuccess,
	PaymentOutcomeFailure,
}

// String implements fmt.Stringer.
func (v PaymentOutcome) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PaymentOutcome.
func (v PaymentOutcome) IsValid() bool {
	return slices.Contains(paymentOutcomeValues, v)
}

// ParsePaymentOutcome converts raw input into a PaymentOutcome.
func ParsePaymentOutcome(value string) (PaymentOutcome, error) {
	candidate := PaymentOutcome(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid payment outcome %q", value)
	}
	return candidate, nil
}
