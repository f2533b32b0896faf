package enums

import (
	"fmt"
	"slices"
)

// ModerationDecision is an admin verdict on a pending campaign.
type ModerationDecision string

const (
	ModerationApprove ModerationDecision = "approve"
	ModerationReject  ModerationDecision = "reject"
)

var moderationDecisionValues = []ModerationDecision{
	ModerationApprove,
	ModerationReject,
}

// String implements fmt.Stringer.
func (v ModerationDecision) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ModerationDecision.
func (v ModerationDecision) IsValid() bool {
	return slices.Contains(moderationDecisionValues, v)
}

// ParseModerationDecision converts raw input into a ModerationDecision.
func ParseModerationDecision(value string) (ModerationDecision, error) {
	candidate := ModerationDecision(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid moderation decision %q", value)
	}
	return candidate, nil
}
