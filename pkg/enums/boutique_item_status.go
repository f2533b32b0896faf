package enums

import (
	"fmt"
	"slices"
)

// BoutiqueItemStatus tracks whether a published item can still be requested.
type BoutiqueItemStatus string

const (
	BoutiqueItemAvailable   BoutiqueItemStatus = "available"
	BoutiqueItemAllocated   BoutiqueItemStatus = "allocated"
	BoutiqueItemUnavailable BoutiqueItemStatus = "unavailable"
)

var boutiqueItemStatusValues = []BoutiqueItemStatus{
	BoutiqueItemAvailable,
	BoutiqueItemAllocated,
	BoutiqueItemUnavailable,
}

// String implements fmt.Stringer.
func (v BoutiqueItemStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known BoutiqueItemStatus.
func (v BoutiqueItemStatus) IsValid() bool {
	return slices.Contains(boutiqueItemStatusValues, v)
}

// ParseBoutiqueItemStatus converts raw input into a BoutiqueItemStatus.
func ParseBoutiqueItemStatus(value string) (BoutiqueItemStatus, error) {
	candidate := BoutiqueItemStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid boutique item status %q", value)
	}
	return candidate, nil
}
