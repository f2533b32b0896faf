package boutique

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/givehub/givehub-backend/internal/repo"
	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository binds a boutique repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *repository) CreateMaterialDonation(ctx context.Context, donation *models.MaterialDonation) (*models.MaterialDonation, error) {
	if err := r.DB(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindMaterialDonation(ctx context.Context, id uuid.UUID) (*models.MaterialDonation, error) {
	var donation models.MaterialDonation
	if err := r.DB(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) TransitionMaterialDonation(ctx context.Context, id uuid.UUID, from, to enums.MaterialDonationStatus, fields map[string]any) (bool, error) {
	return r.transition(ctx, &models.MaterialDonation{}, id, from, to, fields)
}

func (r *repository) ListMaterialDonations(ctx context.Context, filters MaterialDonationFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.MaterialDonation, string, error) {
	query := r.DB(ctx).Model(&models.MaterialDonation{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DonorID != nil {
		query = query.Where("donor_id = ?", *filters.DonorID)
	}

	var rows []models.MaterialDonation
	if err := pagination.Apply(query, params, cursor).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(m models.MaterialDonation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return page, next, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.BoutiqueItem) (*models.BoutiqueItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.BoutiqueItem, error) {
	var item models.BoutiqueItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) LockItem(ctx context.Context, id uuid.UUID) (*models.BoutiqueItem, error) {
	query := r.DB(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item models.BoutiqueItem
	if err := query.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) AllocateItem(ctx context.Context, itemID, orderID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Model(&models.BoutiqueItem{}).
		Where("id = ? AND status = ?", itemID, enums.BoutiqueItemAvailable).
		Updates(map[string]any{
			"status":             enums.BoutiqueItemAllocated,
			"allocated_order_id": orderID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) TransitionItem(ctx context.Context, id uuid.UUID, from, to enums.BoutiqueItemStatus) (bool, error) {
	return r.transition(ctx, &models.BoutiqueItem{}, id, from, to, nil)
}

func (r *repository) ListItems(ctx context.Context, filters ItemFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.BoutiqueItem, string, error) {
	query := r.DB(ctx).Model(&models.BoutiqueItem{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	var rows []models.BoutiqueItem
	if err := pagination.Apply(query, params, cursor).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(i models.BoutiqueItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
	})
	return page, next, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.BoutiqueOrder) (*models.BoutiqueOrder, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.BoutiqueOrder, error) {
	var order models.BoutiqueOrder
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) HasPendingOrder(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.BoutiqueOrder{}).
		Where("item_id = ? AND requester_id = ? AND status = ?", itemID, requesterID, enums.BoutiqueOrderPendingApproval).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) TransitionOrder(ctx context.Context, id uuid.UUID, from, to enums.BoutiqueOrderStatus, fields map[string]any) (bool, error) {
	return r.transition(ctx, &models.BoutiqueOrder{}, id, from, to, fields)
}

func (r *repository) RejectPendingSiblings(ctx context.Context, itemID, keepOrderID, adminID uuid.UUID, reason string, at time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).Model(&models.BoutiqueOrder{}).
		Where("item_id = ? AND status = ? AND id <> ?", itemID, enums.BoutiqueOrderPendingApproval, keepOrderID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	err = r.DB(ctx).Model(&models.BoutiqueOrder{}).
		Where("id IN ? AND status = ?", ids, enums.BoutiqueOrderPendingApproval).
		Updates(map[string]any{
			"status":           enums.BoutiqueOrderRejected,
			"handled_by":       adminID,
			"handled_at":       at,
			"rejection_reason": reason,
		}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.BoutiqueOrder, string, error) {
	query := r.DB(ctx).Model(&models.BoutiqueOrder{})
	if filters.ItemID != nil {
		query = query.Where("item_id = ?", *filters.ItemID)
	}
	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var rows []models.BoutiqueOrder
	if err := pagination.Apply(query, params, cursor).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(o models.BoutiqueOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return page, next, nil
}

func (r *repository) transition(ctx context.Context, model any, id uuid.UUID, from, to any, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.DB(ctx).Model(model).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
