package enums

import (
	"fmt"
	"slices"
)

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateCampaign          OutboxAggregateType = "campaign"
	AggregateFinancialDonation OutboxAggregateType = "financial_donation"
	AggregateMaterialDonation  OutboxAggregateType = "material_donation"
	AggregateBoutiqueItem      OutboxAggregateType = "boutique_item"
	AggregateBoutiqueOrder     OutboxAggregateType = "boutique_order"
)

var outboxAggregateTypeValues = []OutboxAggregateType{
	AggregateCampaign,
	AggregateFinancialDonation,
	AggregateMaterialDonation,
	AggregateBoutiqueItem,
	AggregateBoutiqueOrder,
}

// String implements fmt.Stringer.
func (v OutboxAggregateType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (v OutboxAggregateType) IsValid() bool {
	return slices.Contains(outboxAggregateTypeValues, v)
}

// ParseOutboxAggregateType converts raw input into a OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	candidate := OutboxAggregateType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid aggregate type %q", value)
	}
	return candidate, nil
}
