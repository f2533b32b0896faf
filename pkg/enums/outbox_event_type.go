package enums

import (
	"fmt"
	"slices"
)

// OutboxEventType names a domain event published through the outbox.
type OutboxEventType string

const (
	EventCampaignCreated           OutboxEventType = "campaign_created"
	EventCampaignModerated         OutboxEventType = "campaign_moderated"
	EventDonationInitiated         OutboxEventType = "donation_initiated"
	EventDonationCompleted         OutboxEventType = "donation_completed"
	EventDonationFailed            OutboxEventType = "donation_failed"
	EventCampaignTotalCorrected    OutboxEventType = "campaign_total_corrected"
	EventMaterialDonationSubmitted OutboxEventType = "material_donation_submitted"
	EventMaterialDonationRejected  OutboxEventType = "material_donation_rejected"
	EventBoutiqueItemPublished     OutboxEventType = "boutique_item_published"
	EventBoutiqueItemWithdrawn     OutboxEventType = "boutique_item_withdrawn"
	EventBoutiqueOrderRequested    OutboxEventType = "boutique_order_requested"
	EventBoutiqueOrderApproved     OutboxEventType = "boutique_order_approved"
	EventBoutiqueOrderRejected     OutboxEventType = "boutique_order_rejected"
)

var outboxEventTypeValues = []OutboxEventType{
	EventCampaignCreated,
	EventCampaignModerated,
	EventDonationInitiated,
	EventDonationCompleted,
	EventDonationFailed,
	EventCampaignTotalCorrected,
	EventMaterialDonationSubmitted,
	EventMaterialDonationRejected,
	EventBoutiqueItemPublished,
	EventBoutiqueItemWithdrawn,
	EventBoutiqueOrderRequested,
	EventBoutiqueOrderApproved,
	EventBoutiqueOrderRejected,
}

// String implements fmt.Stringer.
func (v OutboxEventType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OutboxEventType.
func (v OutboxEventType) IsValid() bool {
	return slices.Contains(outboxEventTypeValues, v)
}

// ParseOutboxEventType converts raw input into a OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	candidate := OutboxEventType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid outbox event type %q", value)
	}
	return candidate, nil
}
