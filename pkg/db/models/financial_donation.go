package models

import (
	"time"

	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinancialDonation is a monetary pledge toward a campaign.
type FinancialDonation struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CampaignID            uuid.UUID            `gorm:"column:campaign_id;type:uuid;not null;index"`
	DonorID               *uuid.UUID           `gorm:"column:donor_id;type:uuid;index"`
	DonorName             *string              `gorm:"column:donor_name"`
	DonorEmail            *string              `gorm:"column:donor_email"`
	AmountCents           int64                `gorm:"column:amount_cents;not null"`
	Currency              string               `gorm:"column:currency;not null;default:EUR"`
	Operator              string               `gorm:"column:operator;not null"`
	OperatorTransactionID string               `gorm:"column:operator_transaction_id;not null;uniqueIndex:ux_financial_donations_operator_tx"`
	Status                enums.DonationStatus `gorm:"column:status;type:text;not null;default:pending"`
	CompletedAt           *time.Time           `gorm:"column:completed_at"`
	FailedAt              *time.Time           `gorm:"column:failed_at"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *FinancialDonation) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
