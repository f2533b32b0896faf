package boutique

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

// Repository defines persistence for material donations, boutique items and
// orders. Every status change is a conditional update that reports whether
// this call performed it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateMaterialDonation(ctx context.Context, donation *models.MaterialDonation) (*models.MaterialDonation, error)
	FindMaterialDonation(ctx context.Context, id uuid.UUID) (*models.MaterialDonation, error)
	TransitionMaterialDonation(ctx context.Context, id uuid.UUID, from, to enums.MaterialDonationStatus, fields map[string]any) (bool, error)
	ListMaterialDonations(ctx context.Context, filters MaterialDonationFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.MaterialDonation, string, error)

	CreateItem(ctx context.Context, item *models.BoutiqueItem) (*models.BoutiqueItem, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.BoutiqueItem, error)
	// LockItem reads the item holding a row lock until the transaction ends.
	// Only postgres takes the lock; sqlite serializes writers already.
	LockItem(ctx context.Context, id uuid.UUID) (*models.BoutiqueItem, error)
	// AllocateItem flips an available item to allocated for orderID.
	AllocateItem(ctx context.Context, itemID, orderID uuid.UUID) (bool, error)
	TransitionItem(ctx context.Context, id uuid.UUID, from, to enums.BoutiqueItemStatus) (bool, error)
	ListItems(ctx context.Context, filters ItemFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.BoutiqueItem, string, error)

	CreateOrder(ctx context.Context, order *models.BoutiqueOrder) (*models.BoutiqueOrder, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.BoutiqueOrder, error)
	HasPendingOrder(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error)
	TransitionOrder(ctx context.Context, id uuid.UUID, from, to enums.BoutiqueOrderStatus, fields map[string]any) (bool, error)
	// RejectPendingSiblings closes every other pending order for itemID and
	// returns the ids it closed.
	RejectPendingSiblings(ctx context.Context, itemID, keepOrderID, adminID uuid.UUID, reason string, at time.Time) ([]uuid.UUID, error)
	ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.BoutiqueOrder, string, error)
}
