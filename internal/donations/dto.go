package donations

import (
	"time"

	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/money"
)

const defaultCurrency = "EUR"

// Donor identifies who pledged. All fields are optional; a donation with no
// user id is anonymous.
type Donor struct {
	UserID *uuid.UUID
	Name   *string
	Email  *string
}

type InitiateDonationInput struct {
	CampaignID            uuid.UUID
	Donor                 Donor
	AmountCents           int64
	Currency              string
	Operator              string
	OperatorTransactionID string
}

// PaymentCallbackInput is the normalized body of an operator webhook.
// Operator, when set, must match the operator recorded on the donation.
type PaymentCallbackInput struct {
	Operator              string
	OperatorTransactionID string
	Outcome               enums.PaymentOutcome
	AmountCents           int64
}

// CallbackResult reports what a callback did. Applied is true only for the
// call that moved the donation out of pending; Duplicate marks callbacks
// for donations that were already terminal.
type CallbackResult struct {
	Donation  *DonationDTO `json:"donation"`
	Applied   bool         `json:"applied"`
	Duplicate bool         `json:"duplicate"`
}

type DonationDTO struct {
	ID                    uuid.UUID            `json:"id"`
	CampaignID            uuid.UUID            `json:"campaign_id"`
	DonorID               *uuid.UUID           `json:"donor_id,omitempty"`
	DonorName             *string              `json:"donor_name,omitempty"`
	AmountCents           int64                `json:"amount_cents"`
	Amount                string               `json:"amount"`
	Currency              string               `json:"currency"`
	Operator              string               `json:"operator"`
	OperatorTransactionID string               `json:"operator_transaction_id"`
	Status                enums.DonationStatus `json:"status"`
	CompletedAt           *time.Time           `json:"completed_at,omitempty"`
	FailedAt              *time.Time           `json:"failed_at,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
}

func FromModel(d *models.FinancialDonation) *DonationDTO {
	if d == nil {
		return nil
	}
	return &DonationDTO{
		ID:                    d.ID,
		CampaignID:            d.CampaignID,
		DonorID:               d.DonorID,
		DonorName:             d.DonorName,
		AmountCents:           d.AmountCents,
		Amount:                money.FormatCents(d.AmountCents),
		Currency:              d.Currency,
		Operator:              d.Operator,
		OperatorTransactionID: d.OperatorTransactionID,
		Status:                d.Status,
		CompletedAt:           d.CompletedAt,
		FailedAt:              d.FailedAt,
		CreatedAt:             d.CreatedAt,
	}
}

// TotalCorrection describes one campaign whose accumulator was rewritten.
type TotalCorrection struct {
	CampaignID    uuid.UUID `json:"campaign_id"`
	StoredCents   int64     `json:"stored_cents"`
	ExpectedCents int64     `json:"expected_cents"`
}

// ReconcileReport summarizes a totals reconciliation pass.
type ReconcileReport struct {
	Checked     int               `json:"checked"`
	Drifted     int               `json:"drifted"`
	Corrected   int               `json:"corrected"`
	Corrections []TotalCorrection `json:"corrections"`
}

// DonationEvent is the outbox payload for donation lifecycle events.
type DonationEvent struct {
	DonationID            uuid.UUID            `json:"donation_id"`
	CampaignID            uuid.UUID            `json:"campaign_id"`
	AmountCents           int64                `json:"amount_cents"`
	Currency              string               `json:"currency"`
	Operator              string               `json:"operator"`
	OperatorTransactionID string               `json:"operator_transaction_id"`
	Status                enums.DonationStatus `json:"status"`
}

func newDonationEvent(d *models.FinancialDonation) DonationEvent {
	return DonationEvent{
		DonationID:            d.ID,
		CampaignID:            d.CampaignID,
		AmountCents:           d.AmountCents,
		Currency:              d.Currency,
		Operator:              d.Operator,
		OperatorTransactionID: d.OperatorTransactionID,
		Status:                d.Status,
	}
}
