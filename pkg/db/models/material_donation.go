package models

import (
	"time"

	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialDonation is an in-kind gift awaiting admin verification.
type MaterialDonation struct {
	ID              uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	DonorID         uuid.UUID                    `gorm:"column:donor_id;type:uuid;not null;index"`
	Title           string                       `gorm:"column:title;not null"`
	Description     string                       `gorm:"column:description;type:text;not null"`
	Category        string                       `gorm:"column:category;not null"`
	Condition       string                       `gorm:"column:condition;not null"`
	Status          enums.MaterialDonationStatus `gorm:"column:status;type:text;not null;default:pending_verification;index"`
	VerifiedBy      *uuid.UUID                   `gorm:"column:verified_by;type:uuid"`
	VerifiedAt      *time.Time                   `gorm:"column:verified_at"`
	RejectionReason *string                      `gorm:"column:rejection_reason"`
	CreatedAt       time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MaterialDonation) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
