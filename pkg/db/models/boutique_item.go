package models

import (
	"time"

	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoutiqueItem is a published good that beneficiaries can request.
type BoutiqueItem struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	MaterialDonationID *uuid.UUID               `gorm:"column:material_donation_id;type:uuid;uniqueIndex:ux_boutique_items_material_donation"`
	Title              string                   `gorm:"column:title;not null"`
	Description        string                   `gorm:"column:description;type:text;not null"`
	Category           string                   `gorm:"column:category;not null"`
	Status             enums.BoutiqueItemStatus `gorm:"column:status;type:text;not null;default:available;index"`
	PublishedBy        uuid.UUID                `gorm:"column:published_by;type:uuid;not null"`
	AllocatedOrderID   *uuid.UUID               `gorm:"column:allocated_order_id;type:uuid"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *BoutiqueItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
