package campaigns

import (
	"context"
	"fmt"

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

// NewRepository binds a campaigns repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.DB(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.DB(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.Campaign, string, error) {
	query := r.DB(ctx).Model(&models.Campaign{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}

	var rows []models.Campaign
	if err := pagination.Apply(query, params, cursor).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(c models.Campaign) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page, next, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Campaign{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.CampaignStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.DB(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AddToCurrentAmount(ctx context.Context, id uuid.UUID, deltaCents int64) error {
	res := r.DB(ctx).Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("current_amount_cents", gorm.Expr("current_amount_cents + ?", deltaCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("campaign %s not found: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *repository) SetCurrentAmount(ctx context.Context, id uuid.UUID, expected, actual int64) (bool, error) {
	res := r.DB(ctx).Model(&models.Campaign{}).
		Where("id = ? AND current_amount_cents = ?", id, expected).
		Update("current_amount_cents", actual)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).Model(&models.Campaign{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}
