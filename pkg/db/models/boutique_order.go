package models

import (
	"time"

	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoutiqueOrder is a beneficiary's request for an item. At most one order per
// item ever reaches approved.
type BoutiqueOrder struct {
	ID                uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ItemID            uuid.UUID                 `gorm:"column:item_id;type:uuid;not null;index"`
	RequesterID       uuid.UUID                 `gorm:"column:requester_id;type:uuid;not null;index"`
	MotivationMessage string                    `gorm:"column:motivation_message;type:text;not null"`
	Status            enums.BoutiqueOrderStatus `gorm:"column:status;type:text;not null;default:pending_approval"`
	HandledBy         *uuid.UUID                `gorm:"column:handled_by;type:uuid"`
	HandledAt         *time.Time                `gorm:"column:handled_at"`
	RejectionReason   *string                   `gorm:"column:rejection_reason"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *BoutiqueOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
