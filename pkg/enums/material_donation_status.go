package enums

import (
	"fmt"
	"slices"
)

// MaterialDonationStatus tracks an in-kind donation through verification.
type MaterialDonationStatus string

const (
	MaterialDonationPendingVerification MaterialDonationStatus = "pending_verification"
	MaterialDonationPublished           MaterialDonationStatus = "published_in_store"
	MaterialDonationRejected            MaterialDonationStatus = "rejected"
)

var materialDonationStatusValues = []MaterialDonationStatus{
	MaterialDonationPendingVerification,
	MaterialDonationPublished,
	MaterialDonationRejected,
}

// String implements fmt.Stringer.
func (v MaterialDonationStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known MaterialDonationStatus.
func (v MaterialDonationStatus) IsValid() bool {
	return slices.Contains(materialDonationStatusValues, v)
}

// ParseMaterialDonationStatus converts raw input into a MaterialDonationStatus.
func ParseMaterialDonationStatus(value string) (MaterialDonationStatus, error) {
	candidate := MaterialDonationStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid material donation status %q", value)
	}
	return candidate, nil
}
