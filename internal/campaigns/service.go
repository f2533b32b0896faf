package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/outbox"
	"github.com/givehub/givehub-backend/pkg/pagination"
	"github.com/givehub/givehub-backend/pkg/types"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes campaign CRUD and moderation.
type Service interface {
	Create(ctx context.Context, input CreateCampaignInput) (*CampaignDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CampaignDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*types.ListResponse[CampaignDTO], error)
	Update(ctx context.Context, input UpdateCampaignInput) (*CampaignDTO, error)
	Moderate(ctx context.Context, input ModerateInput) (*CampaignDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a campaign service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateCampaignInput) (*CampaignDTO, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(input.Description) > maxDescriptionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
	}
	if input.GoalAmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal amount must be positive")
	}

	var created *models.Campaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		campaign, err := s.repo.WithTx(tx).Create(ctx, &models.Campaign{
			CreatorID:       input.CreatorID,
			Title:           title,
			Description:     strings.TrimSpace(input.Description),
			GoalAmountCents: input.GoalAmountCents,
			Status:          enums.CampaignStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
		}
		created = campaign
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignCreated,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID,
			Actor:         &outbox.ActorRef{UserID: input.CreatorID, Role: string(enums.UserRoleUser)},
			Data: CampaignCreatedEvent{
				CampaignID:      campaign.ID,
				CreatorID:       campaign.CreatorID,
				GoalAmountCents: campaign.GoalAmountCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CampaignDTO, error) {
	campaign, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(campaign), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*types.ListResponse[CampaignDTO], error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	items := make([]CampaignDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &types.ListResponse[CampaignDTO]{Items: items, NextCursor: next}, nil
}

// Update merges title/description. Only the creator may edit and the goal
// amount is fixed once created.
func (s *service) Update(ctx context.Context, input UpdateCampaignInput) (*CampaignDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	fields := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		fields["title"] = title
	}
	if input.Description != nil {
		if len(*input.Description) > maxDescriptionLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
		}
		fields["description"] = strings.TrimSpace(*input.Description)
	}

	var updated *models.Campaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := s.load(ctx, repo, input.ID)
		if err != nil {
			return err
		}
		if campaign.CreatorID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may edit a campaign")
		}
		if err := repo.Update(ctx, campaign.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
		}
		updated, err = s.load(ctx, repo, campaign.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Moderate moves a pending campaign to approved or rejected. Repeating the
// decision that already applies is a no-op.
func (s *service) Moderate(ctx context.Context, input ModerateInput) (*CampaignDTO, error) {
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	target, err := moderationTarget(input.Decision)
	if err != nil {
		return nil, err
	}

	var result *models.Campaign
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := s.load(ctx, repo, input.CampaignID)
		if err != nil {
			return err
		}
		if campaign.Status == target {
			result = campaign
			return nil
		}
		if campaign.Status != enums.CampaignStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "campaign already %s", campaign.Status).
				WithDetails(map[string]any{"status": campaign.Status})
		}

		now := s.now()
		ok, err := repo.TransitionStatus(ctx, campaign.ID, enums.CampaignStatusPending, target, map[string]any{
			"moderated_by": input.AdminID,
			"moderated_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "moderate campaign")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "campaign already moderated")
		}

		campaign.Status = target
		campaign.ModeratedBy = &input.AdminID
		campaign.ModeratedAt = &now
		result = campaign
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignModerated,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID,
			Actor:         &outbox.ActorRef{UserID: input.AdminID, Role: string(enums.UserRoleAdmin)},
			Data: CampaignModeratedEvent{
				CampaignID: campaign.ID,
				Decision:   input.Decision,
				Status:     target,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"campaign_id": result.ID.String(),
			"status":      result.Status,
		})
		s.logg.Info(logCtx, "campaign.moderated")
	}
	return FromModel(result), nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Campaign, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	campaign, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return campaign, nil
}

func moderationTarget(decision enums.ModerationDecision) (enums.CampaignStatus, error) {
	switch decision {
	case enums.ModerationApprove:
		return enums.CampaignStatusApproved, nil
	case enums.ModerationReject:
		return enums.CampaignStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
}
