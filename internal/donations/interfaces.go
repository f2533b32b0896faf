package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

// Repository defines persistence operations for financial donations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.FinancialDonation) (*models.FinancialDonation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FinancialDonation, error)
	FindByOperatorTransactionID(ctx context.Context, operatorTxID string) (*models.FinancialDonation, error)
	// TransitionStatus performs the conditional write from -> to and reports
	// whether this call won it.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.DonationStatus, fields map[string]any) (bool, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, params pagination.Params, cursor *pagination.Cursor) ([]models.FinancialDonation, string, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params, cursor *pagination.Cursor) ([]models.FinancialDonation, string, error)
	SumCompleted(ctx context.Context, campaignID uuid.UUID) (int64, error)
}
