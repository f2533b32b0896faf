package enums

import (
	"fmt"
	"slices"
)

// DonationStatus tracks a monetary pledge through payment confirmation. Completed and failed are terminal.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

var donationStatusValues = []DonationStatus{
	DonationStatusPending,
	DonationStatusCompleted,
	DonationStatusFailed,
}

// String implements fmt.Stringer.
func (v DonationStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known DonationStatus.
func (v DonationStatus) IsValid() bool {
	return slices.Contains(donationStatusValues, v)
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	candidate := DonationStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid donation status %q", value)
	}
	return candidate, nil
}

// IsTerminal reports whether no further transition is allowed.
func (v DonationStatus) IsTerminal() bool {
	return v == DonationStatusCompleted || v == DonationStatusFailed
}
