package enums

import (
	"fmt"
	"slices"
)

// CampaignStatus tracks moderation of a fundraising campaign.
type CampaignStatus string

const (
	CampaignStatusPending  CampaignStatus = "pending"
	CampaignStatusApproved CampaignStatus = "approved"
	CampaignStatusRejected CampaignStatus = "rejected"
)

var campaignStatusValues = []CampaignStatus{
	CampaignStatusPending,
	CampaignStatusApproved,
	CampaignStatusRejected,
}

// String implements fmt.Stringer.
func (v CampaignStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CampaignStatus.
func (v CampaignStatus) IsValid() bool {
	return slices.Contains(campaignStatusValues, v)
}

// ParseCampaignStatus converts raw input into a CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	candidate := CampaignStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid campaign status %q", value)
	}
	return candidate, nil
}
