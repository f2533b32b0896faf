package models

import (
	"time"

	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign is a fundraising goal. CurrentAmountCents only moves through
// in-SQL increments when a donation completes, or through the totals
// reconciliation pass.
type Campaign struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CreatorID          uuid.UUID            `gorm:"column:creator_id;type:uuid;not null;index"`
	Title              string               `gorm:"column:title;not null"`
	Description        string               `gorm:"column:description;type:text;not null"`
	GoalAmountCents    int64                `gorm:"column:goal_amount_cents;not null"`
	CurrentAmountCents int64                `gorm:"column:current_amount_cents;not null;default:0"`
	Status             enums.CampaignStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	ModeratedBy        *uuid.UUID           `gorm:"column:moderated_by;type:uuid"`
	ModeratedAt        *time.Time           `gorm:"column:moderated_at"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Campaign) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
