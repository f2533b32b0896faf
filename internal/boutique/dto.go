package boutique

import (
	"time"

	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
)

// SiblingRejectionReason is recorded on pending orders closed because the
// item went to another request.
const SiblingRejectionReason = "item allocated to another request"

// WithdrawnRejectionReason is recorded on pending orders closed because an
// admin withdrew the item.
const WithdrawnRejectionReason = "item withdrawn from the boutique"

type SubmitMaterialDonationInput struct {
	DonorID     uuid.UUID
	Title       string
	Description string
	Category    string
	Condition   string
}

// PublishInput turns a verified material donation into a boutique item.
// Empty Title, Description or Category fall back to the donation's values.
type PublishInput struct {
	MaterialDonationID uuid.UUID
	AdminID            uuid.UUID
	Title              string
	Description        string
	Category           string
}

type RejectMaterialDonationInput struct {
	MaterialDonationID uuid.UUID
	AdminID            uuid.UUID
	Reason             string
}

type RequestItemInput struct {
	ItemID            uuid.UUID
	UserID            uuid.UUID
	MotivationMessage string
}

type DecideInput struct {
	OrderID uuid.UUID
	AdminID uuid.UUID
	Outcome enums.OrderDecision
	Reason  string
}

type MaterialDonationFilters struct {
	Status  *enums.MaterialDonationStatus
	DonorID *uuid.UUID
}

type ItemFilters struct {
	Status   *enums.BoutiqueItemStatus
	Category string
}

type OrderFilters struct {
	ItemID      *uuid.UUID
	RequesterID *uuid.UUID
	Status      *enums.BoutiqueOrderStatus
}

type MaterialDonationDTO struct {
	ID              uuid.UUID                    `json:"id"`
	DonorID         uuid.UUID                    `json:"donor_id"`
	Title           string                       `json:"title"`
	Description     string                       `json:"description"`
	Category        string                       `json:"category"`
	Condition       string                       `json:"condition"`
	Status          enums.MaterialDonationStatus `json:"status"`
	VerifiedBy      *uuid.UUID                   `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time                   `json:"verified_at,omitempty"`
	RejectionReason *string                      `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
}

func MaterialDonationFromModel(m *models.MaterialDonation) *MaterialDonationDTO {
	if m == nil {
		return nil
	}
	return &MaterialDonationDTO{
		ID:              m.ID,
		DonorID:         m.DonorID,
		Title:           m.Title,
		Description:     m.Description,
		Category:        m.Category,
		Condition:       m.Condition,
		Status:          m.Status,
		VerifiedBy:      m.VerifiedBy,
		VerifiedAt:      m.VerifiedAt,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
	}
}

type ItemDTO struct {
	ID                 uuid.UUID                `json:"id"`
	MaterialDonationID *uuid.UUID               `json:"material_donation_id,omitempty"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Category           string                   `json:"category"`
	Status             enums.BoutiqueItemStatus `json:"status"`
	AllocatedOrderID   *uuid.UUID               `json:"allocated_order_id,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}

func ItemFromModel(i *models.BoutiqueItem) *ItemDTO {
	if i == nil {
		return nil
	}
	return &ItemDTO{
		ID:                 i.ID,
		MaterialDonationID: i.MaterialDonationID,
		Title:              i.Title,
		Description:        i.Description,
		Category:           i.Category,
		Status:             i.Status,
		AllocatedOrderID:   i.AllocatedOrderID,
		CreatedAt:          i.CreatedAt,
	}
}

type OrderDTO struct {
	ID                uuid.UUID                 `json:"id"`
	ItemID            uuid.UUID                 `json:"item_id"`
	RequesterID       uuid.UUID                 `json:"requester_id"`
	MotivationMessage string                    `json:"motivation_message"`
	Status            enums.BoutiqueOrderStatus `json:"status"`
	HandledBy         *uuid.UUID                `json:"handled_by,omitempty"`
	HandledAt         *time.Time                `json:"handled_at,omitempty"`
	RejectionReason   *string                   `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

func OrderFromModel(o *models.BoutiqueOrder) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:                o.ID,
		ItemID:            o.ItemID,
		RequesterID:       o.RequesterID,
		MotivationMessage: o.MotivationMessage,
		Status:            o.Status,
		HandledBy:         o.HandledBy,
		HandledAt:         o.HandledAt,
		RejectionReason:   o.RejectionReason,
		CreatedAt:         o.CreatedAt,
	}
}

// PublishResult pairs the verified donation with the item it produced.
type PublishResult struct {
	MaterialDonation *MaterialDonationDTO `json:"material_donation"`
	Item             *ItemDTO             `json:"item"`
}

// DecisionResult reports an admin verdict. AutoRejected lists sibling
// orders closed by an approval.
type DecisionResult struct {
	Order        *OrderDTO   `json:"order"`
	Item         *ItemDTO    `json:"item,omitempty"`
	AutoRejected []uuid.UUID `json:"auto_rejected,omitempty"`
}

type materialDonationEvent struct {
	MaterialDonationID uuid.UUID                    `json:"material_donation_id"`
	DonorID            uuid.UUID                    `json:"donor_id"`
	Status             enums.MaterialDonationStatus `json:"status"`
	Reason             *string                      `json:"reason,omitempty"`
}

type itemEvent struct {
	ItemID             uuid.UUID                `json:"item_id"`
	MaterialDonationID *uuid.UUID               `json:"material_donation_id,omitempty"`
	Status             enums.BoutiqueItemStatus `json:"status"`
	RejectedOrderIDs   []uuid.UUID              `json:"rejected_order_ids,omitempty"`
}

type orderEvent struct {
	OrderID      uuid.UUID                 `json:"order_id"`
	ItemID       uuid.UUID                 `json:"item_id"`
	RequesterID  uuid.UUID                 `json:"requester_id"`
	Status       enums.BoutiqueOrderStatus `json:"status"`
	Reason       *string                   `json:"reason,omitempty"`
	AutoRejected []uuid.UUID               `json:"auto_rejected,omitempty"`
}
