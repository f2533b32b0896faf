package enums

import (
	"fmt"
	"slices"
)

// BoutiqueOrderStatus tracks a beneficiary request for a boutique item.
type BoutiqueOrderStatus string

const (
	BoutiqueOrderPendingApproval BoutiqueOrderStatus = "pending_approval"
	BoutiqueOrderApproved        BoutiqueOrderStatus = "approved"
	BoutiqueOrderRejected        BoutiqueOrderStatus = "rejected"
)

var boutiqueOrderStatusValues = []BoutiqueOrderStatus{
	BoutiqueOrderPendingApproval,
	BoutiqueOrderApproved,
	BoutiqueOrderRejected,
}

// String implements fmt.Stringer.
func (v BoutiqueOrderStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known BoutiqueOrderStatus.
func (v BoutiqueOrderStatus) IsValid() bool {
	return slices.Contains(boutiqueOrderStatusValues, v)
}

// ParseBoutiqueOrderStatus converts raw input into a BoutiqueOrderStatus.
func ParseBoutiqueOrderStatus(value string) (BoutiqueOrderStatus, error) {
	candidate := BoutiqueOrderStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid boutique order status %q", value)
	}
	return candidate, nil
}
