package campaigns

import (
	"time"

	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/money"
)

// CreateCampaignInput carries a new fundraising goal.
type CreateCampaignInput struct {
	CreatorID       uuid.UUID
	Title           string
	Description     string
	GoalAmountCents int64
}

// UpdateCampaignInput is a partial merge; nil fields are left untouched.
type UpdateCampaignInput struct {
	ID          uuid.UUID
	ActorID     uuid.UUID
	Title       *string
	Description *string
}

type ModerateInput struct {
	CampaignID uuid.UUID
	AdminID    uuid.UUID
	Decision   enums.ModerationDecision
}

// ListFilters narrows List. Zero values match everything.
type ListFilters struct {
	Status    *enums.CampaignStatus
	CreatorID *uuid.UUID
}

// CampaignDTO is the public campaign shape. Amounts are exposed both in
// cents and as decimal strings in major units.
type CampaignDTO struct {
	ID                 uuid.UUID            `json:"id"`
	CreatorID          uuid.UUID            `json:"creator_id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	GoalAmountCents    int64                `json:"goal_amount_cents"`
	GoalAmount         string               `json:"goal_amount"`
	CurrentAmountCents int64                `json:"current_amount_cents"`
	CurrentAmount      string               `json:"current_amount"`
	Status             enums.CampaignStatus `json:"status"`
	ModeratedBy        *uuid.UUID           `json:"moderated_by,omitempty"`
	ModeratedAt        *time.Time           `json:"moderated_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func FromModel(c *models.Campaign) *CampaignDTO {
	if c == nil {
		return nil
	}
	return &CampaignDTO{
		ID:                 c.ID,
		CreatorID:          c.CreatorID,
		Title:              c.Title,
		Description:        c.Description,
		GoalAmountCents:    c.GoalAmountCents,
		GoalAmount:         money.FormatCents(c.GoalAmountCents),
		CurrentAmountCents: c.CurrentAmountCents,
		CurrentAmount:      money.FormatCents(c.CurrentAmountCents),
		Status:             c.Status,
		ModeratedBy:        c.ModeratedBy,
		ModeratedAt:        c.ModeratedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// CampaignCreatedEvent is the outbox payload for a new campaign.
type CampaignCreatedEvent struct {
	CampaignID      uuid.UUID `json:"campaign_id"`
	CreatorID       uuid.UUID `json:"creator_id"`
	GoalAmountCents int64     `json:"goal_amount_cents"`
}

// CampaignModeratedEvent is the outbox payload for a moderation decision.
type CampaignModeratedEvent struct {
	CampaignID uuid.UUID                `json:"campaign_id"`
	Decision   enums.ModerationDecision `json:"decision"`
	Status     enums.CampaignStatus     `json:"status"`
}
