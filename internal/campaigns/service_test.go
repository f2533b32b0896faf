package campaigns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/internal/repo/repotest"
	"github.com/givehub/givehub-backend/pkg/db"
	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/outbox"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := repotest.Open(t)
	svc, err := NewService(NewRepository(conn), db.FromGorm(conn), outbox.NewService(outbox.NewRepository(conn), nil), nil)
	require.NoError(t, err)
	return svc, conn
}

func TestCreateStartsPendingAndEmitsEvent(t *testing.T) {
	svc, conn := newTestService(t)
	creator := uuid.New()

	dto, err := svc.Create(context.Background(), CreateCampaignInput{
		CreatorID:       creator,
		Title:           "  School roof ",
		Description:     "Fix it before winter",
		GoalAmountCents: 500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "School roof", dto.Title)
	assert.Equal(t, enums.CampaignStatusPending, dto.Status)
	assert.Equal(t, int64(0), dto.CurrentAmountCents)
	assert.Equal(t, "5000.00", dto.GoalAmount)

	events, err := outbox.NewRepository(conn).ListByAggregate(dto.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventCampaignCreated, events[0].EventType)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []CreateCampaignInput{
		{CreatorID: uuid.New(), Title: "", GoalAmountCents: 100},
		{CreatorID: uuid.New(), Title: "ok", GoalAmountCents: 0},
		{CreatorID: uuid.New(), Title: "ok", GoalAmountCents: -5},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v got %v", in, err)
	}
	_, err := svc.Create(context.Background(), CreateCampaignInput{Title: "ok", GoalAmountCents: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestUpdateOnlyByCreator(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()
	created, err := svc.Create(ctx, CreateCampaignInput{CreatorID: creator, Title: "Wells", GoalAmountCents: 1000})
	require.NoError(t, err)

	title := "Clean water wells"
	_, err = svc.Update(ctx, UpdateCampaignInput{ID: created.ID, ActorID: uuid.New(), Title: &title})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.Update(ctx, UpdateCampaignInput{ID: created.ID, ActorID: creator, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, int64(1000), updated.GoalAmountCents)

	_, err = svc.Update(ctx, UpdateCampaignInput{ID: uuid.New(), ActorID: creator, Title: &title})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestModerateTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := uuid.New()
	created, err := svc.Create(ctx, CreateCampaignInput{CreatorID: uuid.New(), Title: "Library", GoalAmountCents: 1000})
	require.NoError(t, err)

	approved, err := svc.Moderate(ctx, ModerateInput{CampaignID: created.ID, AdminID: admin, Decision: enums.ModerationApprove})
	require.NoError(t, err)
	assert.Equal(t, enums.CampaignStatusApproved, approved.Status)
	require.NotNil(t, approved.ModeratedBy)
	assert.Equal(t, admin, *approved.ModeratedBy)

	again, err := svc.Moderate(ctx, ModerateInput{CampaignID: created.ID, AdminID: admin, Decision: enums.ModerationApprove})
	require.NoError(t, err, "repeating the same decision is a no-op")
	assert.Equal(t, enums.CampaignStatusApproved, again.Status)

	_, err = svc.Moderate(ctx, ModerateInput{CampaignID: created.ID, AdminID: admin, Decision: enums.ModerationReject})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Moderate(ctx, ModerateInput{CampaignID: created.ID, AdminID: admin, Decision: "maybe"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		status := enums.CampaignStatusApproved
		if i == 4 {
			status = enums.CampaignStatusPending
		}
		require.NoError(t, conn.Create(&models.Campaign{
			CreatorID:       creator,
			Title:           "c",
			GoalAmountCents: 100,
			Status:          status,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	approved := enums.CampaignStatusApproved
	first, err := svc.List(ctx, ListFilters{Status: &approved}, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, ListFilters{Status: &approved}, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)
	assert.True(t, second.Items[0].CreatedAt.Before(first.Items[2].CreatedAt))

	_, err = svc.List(ctx, ListFilters{}, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
