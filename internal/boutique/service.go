package boutique

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/pkg/db"
	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/metrics"
	"github.com/givehub/givehub-backend/pkg/outbox"
	"github.com/givehub/givehub-backend/pkg/pagination"
	"github.com/givehub/givehub-backend/pkg/types"
)

const (
	maxTitleLength      = 200
	maxTextLength       = 5000
	maxCategoryLength   = 100
	pendingRequestIndex = "ux_boutique_orders_pending_requester"
	publishedItemIndex  = "ux_boutique_items_material_donation"
)

var errItemUnavailable = pkgerrors.New(pkgerrors.CodeStateConflict, "item no longer available")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the allocation workflow: material donations are verified into
// boutique items, beneficiaries request items, and admins decide requests so
// that at most one order per item is ever approved.
type Service interface {
	SubmitMaterialDonation(ctx context.Context, input SubmitMaterialDonationInput) (*MaterialDonationDTO, error)
	Publish(ctx context.Context, input PublishInput) (*PublishResult, error)
	RejectMaterialDonation(ctx context.Context, input RejectMaterialDonationInput) (*MaterialDonationDTO, error)
	RequestItem(ctx context.Context, input RequestItemInput) (*OrderDTO, error)
	Decide(ctx context.Context, input DecideInput) (*DecisionResult, error)
	WithdrawItem(ctx context.Context, itemID, adminID uuid.UUID) (*ItemDTO, error)

	ListMaterialDonations(ctx context.Context, filters MaterialDonationFilters, params pagination.Params) (*types.ListResponse[MaterialDonationDTO], error)
	ListItems(ctx context.Context, filters ItemFilters, params pagination.Params) (*types.ListResponse[ItemDTO], error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (*types.ListResponse[OrderDTO], error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.ListResponse[OrderDTO], error)
}

type ServiceParams struct {
	Repo               Repository
	TxRunner           txRunner
	Outbox             outboxPublisher
	Metrics            *metrics.BoutiqueMetrics
	Logger             *logger.Logger
	AutoRejectSiblings bool
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	metrics    *metrics.BoutiqueMetrics
	logg       *logger.Logger
	autoReject bool
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("boutique repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       params.Repo,
		tx:         params.TxRunner,
		outbox:     params.Outbox,
		metrics:    params.Metrics,
		logg:       params.Logger,
		autoReject: params.AutoRejectSiblings,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SubmitMaterialDonation(ctx context.Context, input SubmitMaterialDonationInput) (*MaterialDonationDTO, error) {
	if input.DonorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	condition := strings.TrimSpace(input.Condition)
	switch {
	case title == "" || len(title) > maxTitleLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case category == "" || len(category) > maxCategoryLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case condition == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condition is required")
	case len(input.Description) > maxTextLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
	}

	var created *models.MaterialDonation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		donation, err := s.repo.WithTx(tx).CreateMaterialDonation(ctx, &models.MaterialDonation{
			DonorID:     input.DonorID,
			Title:       title,
			Description: strings.TrimSpace(input.Description),
			Category:    category,
			Condition:   condition,
			Status:      enums.MaterialDonationPendingVerification,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material donation")
		}
		created = donation
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialDonationSubmitted,
			AggregateType: enums.AggregateMaterialDonation,
			AggregateID:   donation.ID,
			Actor:         &outbox.ActorRef{UserID: input.DonorID, Role: string(enums.UserRoleUser)},
			Data: materialDonationEvent{
				MaterialDonationID: donation.ID,
				DonorID:            donation.DonorID,
				Status:             donation.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return MaterialDonationFromModel(created), nil
}

func (s *service) Publish(ctx context.Context, input PublishInput) (*PublishResult, error) {
	if input.MaterialDonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material donation id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	result := &PublishResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := s.loadMaterialDonation(ctx, repo, input.MaterialDonationID)
		if err != nil {
			return err
		}
		if donation.Status != enums.MaterialDonationPendingVerification {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "material donation already %s", donation.Status).
				WithDetails(map[string]any{"status": donation.Status})
		}

		now := s.now()
		ok, err := repo.TransitionMaterialDonation(ctx, donation.ID,
			enums.MaterialDonationPendingVerification, enums.MaterialDonationPublished,
			map[string]any{"verified_by": input.AdminID, "verified_at": now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish material donation")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material donation already processed")
		}
		donation.Status = enums.MaterialDonationPublished
		donation.VerifiedBy = &input.AdminID
		donation.VerifiedAt = &now

		item, err := repo.CreateItem(ctx, &models.BoutiqueItem{
			MaterialDonationID: &donation.ID,
			Title:              fallback(input.Title, donation.Title),
			Description:        fallback(input.Description, donation.Description),
			Category:           fallback(input.Category, donation.Category),
			Status:             enums.BoutiqueItemAvailable,
			PublishedBy:        input.AdminID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, publishedItemIndex) || db.IsUniqueViolation(err, "material_donation_id") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "material donation already published")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create boutique item")
		}

		result.MaterialDonation = MaterialDonationFromModel(donation)
		result.Item = ItemFromModel(item)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBoutiqueItemPublished,
			AggregateType: enums.AggregateBoutiqueItem,
			AggregateID:   item.ID,
			Actor:         adminActor(input.AdminID),
			Data: itemEvent{
				ItemID:             item.ID,
				MaterialDonationID: item.MaterialDonationID,
				Status:             item.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.info(ctx, "boutique.item.published", map[string]any{
		"item_id":              result.Item.ID.String(),
		"material_donation_id": input.MaterialDonationID.String(),
	})
	return result, nil
}

func (s *service) RejectMaterialDonation(ctx context.Context, input RejectMaterialDonationInput) (*MaterialDonationDTO, error) {
	if input.MaterialDonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material donation id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) > maxTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is too long")
	}

	var rejected *models.MaterialDonation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := s.loadMaterialDonation(ctx, repo, input.MaterialDonationID)
		if err != nil {
			return err
		}

		now := s.now()
		fields := map[string]any{"verified_by": input.AdminID, "verified_at": now}
		if reason != "" {
			fields["rejection_reason"] = reason
		}
		ok, err := repo.TransitionMaterialDonation(ctx, donation.ID,
			enums.MaterialDonationPendingVerification, enums.MaterialDonationRejected, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject material donation")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material donation already processed").
				WithDetails(map[string]any{"status": donation.Status})
		}

		donation.Status = enums.MaterialDonationRejected
		donation.VerifiedBy = &input.AdminID
		donation.VerifiedAt = &now
		if reason != "" {
			donation.RejectionReason = &reason
		}
		rejected = donation
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialDonationRejected,
			AggregateType: enums.AggregateMaterialDonation,
			AggregateID:   donation.ID,
			Actor:         adminActor(input.AdminID),
			Data: materialDonationEvent{
				MaterialDonationID: donation.ID,
				DonorID:            donation.DonorID,
				Status:             donation.Status,
				Reason:             donation.RejectionReason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return MaterialDonationFromModel(rejected), nil
}

func (s *service) RequestItem(ctx context.Context, input RequestItemInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	message := strings.TrimSpace(input.MotivationMessage)
	if message == "" || len(message) > maxTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "motivation message is required")
	}

	var created *models.BoutiqueOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.lockItem(ctx, repo, input.ItemID)
		if err != nil {
			return err
		}
		if item.Status != enums.BoutiqueItemAvailable {
			return errItemUnavailable
		}

		pending, err := repo.HasPendingOrder(ctx, item.ID, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending requests")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, "you already have a pending request for this item")
		}

		order, err := repo.CreateOrder(ctx, &models.BoutiqueOrder{
			ItemID:            item.ID,
			RequesterID:       input.UserID,
			MotivationMessage: message,
			Status:            enums.BoutiqueOrderPendingApproval,
		})
		if err != nil {
			if db.IsUniqueViolation(err, pendingRequestIndex) {
				return pkgerrors.New(pkgerrors.CodeConflict, "you already have a pending request for this item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		created = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBoutiqueOrderRequested,
			AggregateType: enums.AggregateBoutiqueOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserRoleUser)},
			Data:          newOrderEvent(order, nil),
		})
	})
	if err != nil {
		return nil, err
	}
	return OrderFromModel(created), nil
}

// Decide records an admin verdict on a pending order. Approval claims the
// item with a conditional update first; when another approval already took
// it nothing is written and this order stays pending.
func (s *service) Decide(ctx context.Context, input DecideInput) (*DecisionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if !input.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be approved or rejected")
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) > maxTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is too long")
	}

	result := &DecisionResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.BoutiqueOrderPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already decided").
				WithDetails(map[string]any{"status": order.Status})
		}

		if input.Outcome == enums.OrderDecisionApproved {
			return s.approve(ctx, tx, repo, order, input.AdminID, result)
		}
		return s.reject(ctx, tx, repo, order, input.AdminID, reason, result)
	})
	s.observeDecision(ctx, input, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) approve(ctx context.Context, tx *gorm.DB, repo Repository, order *models.BoutiqueOrder, adminID uuid.UUID, result *DecisionResult) error {
	allocated, err := repo.AllocateItem(ctx, order.ItemID, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate item")
	}
	if !allocated {
		return errItemUnavailable
	}

	now := s.now()
	ok, err := repo.TransitionOrder(ctx, order.ID, enums.BoutiqueOrderPendingApproval, enums.BoutiqueOrderApproved,
		map[string]any{"handled_by": adminID, "handled_at": now})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already decided")
	}
	order.Status = enums.BoutiqueOrderApproved
	order.HandledBy = &adminID
	order.HandledAt = &now

	if s.autoReject {
		closed, err := repo.RejectPendingSiblings(ctx, order.ItemID, order.ID, adminID, SiblingRejectionReason, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject sibling orders")
		}
		result.AutoRejected = closed
	}

	item, err := repo.FindItem(ctx, order.ItemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
	}
	result.Order = OrderFromModel(order)
	result.Item = ItemFromModel(item)
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBoutiqueOrderApproved,
		AggregateType: enums.AggregateBoutiqueOrder,
		AggregateID:   order.ID,
		Actor:         adminActor(adminID),
		Data:          newOrderEvent(order, result.AutoRejected),
	})
}

func (s *service) reject(ctx context.Context, tx *gorm.DB, repo Repository, order *models.BoutiqueOrder, adminID uuid.UUID, reason string, result *DecisionResult) error {
	now := s.now()
	fields := map[string]any{"handled_by": adminID, "handled_at": now}
	if reason != "" {
		fields["rejection_reason"] = reason
	}
	ok, err := repo.TransitionOrder(ctx, order.ID, enums.BoutiqueOrderPendingApproval, enums.BoutiqueOrderRejected, fields)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already decided")
	}

	order.Status = enums.BoutiqueOrderRejected
	order.HandledBy = &adminID
	order.HandledAt = &now
	if reason != "" {
		order.RejectionReason = &reason
	}
	result.Order = OrderFromModel(order)
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBoutiqueOrderRejected,
		AggregateType: enums.AggregateBoutiqueOrder,
		AggregateID:   order.ID,
		Actor:         adminActor(adminID),
		Data:          newOrderEvent(order, nil),
	})
}

func (s *service) observeDecision(ctx context.Context, input DecideInput, result *DecisionResult, err error) {
	outcome := "ok"
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		outcome = "conflict"
	case err != nil:
		outcome = "error"
	}
	s.metrics.ObserveDecision(string(input.Outcome), outcome)

	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": input.OrderID.String(),
		"admin_id": input.AdminID.String(),
		"outcome":  input.Outcome,
	})
	switch {
	case err == nil && input.Outcome == enums.OrderDecisionApproved:
		s.logg.Info(s.logg.WithField(logCtx, "auto_rejected", len(result.AutoRejected)), "boutique.order.approved")
	case err == nil:
		s.logg.Info(logCtx, "boutique.order.rejected")
	case outcome == "conflict":
		s.logg.Warn(logCtx, "boutique.order.conflict")
	case pkgerrors.IsCode(err, pkgerrors.CodeDependency):
		s.logg.Error(logCtx, "boutique.order.decision_failed", err)
	}
}

func (s *service) WithdrawItem(ctx context.Context, itemID, adminID uuid.UUID) (*ItemDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var withdrawn *models.BoutiqueItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.lockItem(ctx, repo, itemID)
		if err != nil {
			return err
		}
		ok, err := repo.TransitionItem(ctx, item.ID, enums.BoutiqueItemAvailable, enums.BoutiqueItemUnavailable)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "withdraw item")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only available items can be withdrawn").
				WithDetails(map[string]any{"status": item.Status})
		}
		item.Status = enums.BoutiqueItemUnavailable
		withdrawn = item

		// uuid.Nil keeps no order: every open request on the item is closed.
		closed, err := repo.RejectPendingSiblings(ctx, item.ID, uuid.Nil, adminID, WithdrawnRejectionReason, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject pending orders")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBoutiqueItemWithdrawn,
			AggregateType: enums.AggregateBoutiqueItem,
			AggregateID:   item.ID,
			Actor:         adminActor(adminID),
			Data: itemEvent{
				ItemID:             item.ID,
				MaterialDonationID: item.MaterialDonationID,
				Status:             item.Status,
				RejectedOrderIDs:   closed,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return ItemFromModel(withdrawn), nil
}

func (s *service) ListMaterialDonations(ctx context.Context, filters MaterialDonationFilters, params pagination.Params) (*types.ListResponse[MaterialDonationDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListMaterialDonations(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list material donations")
	}
	items := make([]MaterialDonationDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *MaterialDonationFromModel(&rows[i]))
	}
	return &types.ListResponse[MaterialDonationDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) ListItems(ctx context.Context, filters ItemFilters, params pagination.Params) (*types.ListResponse[ItemDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListItems(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	items := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ItemFromModel(&rows[i]))
	}
	return &types.ListResponse[ItemDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.loadItem(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return ItemFromModel(item), nil
}

func (s *service) ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (*types.ListResponse[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListOrders(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *OrderFromModel(&rows[i]))
	}
	return &types.ListResponse[OrderDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.ListResponse[OrderDTO], error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.ListOrders(ctx, OrderFilters{RequesterID: &userID}, params)
}

func (s *service) loadMaterialDonation(ctx context.Context, repo Repository, id uuid.UUID) (*models.MaterialDonation, error) {
	donation, err := repo.FindMaterialDonation(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material donation")
	}
	return donation, nil
}

func (s *service) loadItem(ctx context.Context, repo Repository, id uuid.UUID) (*models.BoutiqueItem, error) {
	return itemOrError(repo.FindItem(ctx, id))
}

// lockItem is loadItem for transactions that decide on the item's status.
func (s *service) lockItem(ctx context.Context, repo Repository, id uuid.UUID) (*models.BoutiqueItem, error) {
	return itemOrError(repo.LockItem(ctx, id))
}

func itemOrError(item *models.BoutiqueItem, err error) (*models.BoutiqueItem, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) info(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func newOrderEvent(o *models.BoutiqueOrder, autoRejected []uuid.UUID) orderEvent {
	return orderEvent{
		OrderID:      o.ID,
		ItemID:       o.ItemID,
		RequesterID:  o.RequesterID,
		Status:       o.Status,
		Reason:       o.RejectionReason,
		AutoRejected: autoRejected,
	}
}

func adminActor(id uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: id, Role: string(enums.UserRoleAdmin)}
}

func fallback(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}
