package enums

import (
	"fmt"
	"slices"
)

// OrderDecision is an admin verdict on a boutique order.
type OrderDecision string

const (
	OrderDecisionApproved OrderDecision = "approved"
	OrderDecisionRejected OrderDecision = "rejected"
)

var orderDecisionValues = []OrderDecision{
	OrderDecisionApproved,
	OrderDecisionRejected,
}

// String implements fmt.Stringer.
func (v OrderDecision) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OrderDecision.
func (v OrderDecision) IsValid() bool {
	return slices.Contains(orderDecisionValues, v)
}

// ParseOrderDecision converts raw input into a OrderDecision.
func ParseOrderDecision(value string) (OrderDecision, error) {
	candidate := OrderDecision(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid order decision %q", value)
	}
	return candidate, nil
}
