package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/internal/repo"
	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository binds a donations repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, donation *models.FinancialDonation) (*models.FinancialDonation, error) {
	if err := r.DB(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FinancialDonation, error) {
	var donation models.FinancialDonation
	if err := r.DB(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) FindByOperatorTransactionID(ctx context.Context, operatorTxID string) (*models.FinancialDonation, error) {
	var donation models.FinancialDonation
	if err := r.DB(ctx).Where("operator_transaction_id = ?", operatorTxID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.DonationStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.DB(ctx).Model(&models.FinancialDonation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, params pagination.Params, cursor *pagination.Cursor) ([]models.FinancialDonation, string, error) {
	return r.list(r.DB(ctx).Where("campaign_id = ?", campaignID), params, cursor)
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params, cursor *pagination.Cursor) ([]models.FinancialDonation, string, error) {
	return r.list(r.DB(ctx).Where("donor_id = ?", donorID), params, cursor)
}

func (r *repository) list(query *gorm.DB, params pagination.Params, cursor *pagination.Cursor) ([]models.FinancialDonation, string, error) {
	var rows []models.FinancialDonation
	if err := pagination.Apply(query.Model(&models.FinancialDonation{}), params, cursor).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(d models.FinancialDonation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})
	return page, next, nil
}

func (r *repository) SumCompleted(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var total int64
	err := r.DB(ctx).Model(&models.FinancialDonation{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("campaign_id = ? AND status = ?", campaignID, enums.DonationStatusCompleted).
		Scan(&total).Error
	return total, err
}
