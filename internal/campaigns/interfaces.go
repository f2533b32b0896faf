package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

// Repository defines persistence operations for campaigns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.Campaign, string, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// TransitionStatus moves id from one status to another and reports
	// whether this call performed the transition.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.CampaignStatus, fields map[string]any) (bool, error)
	// AddToCurrentAmount increments the accumulator in SQL.
	AddToCurrentAmount(ctx context.Context, id uuid.UUID, deltaCents int64) error
	// SetCurrentAmount overwrites the accumulator when it equals expected.
	SetCurrentAmount(ctx context.Context, id uuid.UUID, expected, actual int64) (bool, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
