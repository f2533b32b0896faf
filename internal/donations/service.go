package donations

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/internal/campaigns"
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

const operatorTxConstraint = "ux_financial_donations_operator_tx"

var (
	operatorPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,49}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// NormalizeOperator lowercases and trims an operator code and reports
// whether the result is a well-formed code.
func NormalizeOperator(raw string) (string, bool) {
	operator := strings.ToLower(strings.TrimSpace(raw))
	return operator, operatorPattern.MatchString(operator)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the ledger reconciler: it records pledges, applies payment
// callbacks exactly once and keeps campaign totals equal to the sum of
// completed donations.
type Service interface {
	InitiateDonation(ctx context.Context, input InitiateDonationInput) (*DonationDTO, error)
	ApplyPaymentCallback(ctx context.Context, input PaymentCallbackInput) (*CallbackResult, error)
	GetDonation(ctx context.Context, id uuid.UUID) (*DonationDTO, error)
	ListCampaignDonations(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*types.ListResponse[DonationDTO], error)
	ListDonorDonations(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*types.ListResponse[DonationDTO], error)
	ReconcileCampaignTotals(ctx context.Context) (*ReconcileReport, error)
}

// ServiceParams bundles the reconciler's collaborators.
type ServiceParams struct {
	Repo                    Repository
	Campaigns               campaigns.Repository
	TxRunner                txRunner
	Outbox                  outboxPublisher
	Metrics                 *metrics.DonationMetrics
	Logger                  *logger.Logger
	RequireApprovedCampaign bool
}

type service struct {
	repo            Repository
	campaigns       campaigns.Repository
	tx              txRunner
	outbox          outboxPublisher
	metrics         *metrics.DonationMetrics
	logg            *logger.Logger
	requireApproved bool
	now             func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if params.Campaigns == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:            params.Repo,
		campaigns:       params.Campaigns,
		tx:              params.TxRunner,
		outbox:          params.Outbox,
		metrics:         params.Metrics,
		logg:            params.Logger,
		requireApproved: params.RequireApprovedCampaign,
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) InitiateDonation(ctx context.Context, input InitiateDonationInput) (*DonationDTO, error) {
	if input.CampaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	operator, ok := NormalizeOperator(input.Operator)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter ISO code")
	}
	operatorTxID := strings.TrimSpace(input.OperatorTransactionID)
	if operatorTxID == "" {
		operatorTxID = operator + "_" + uuid.NewString()
	}

	var created *models.FinancialDonation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		campaign, err := s.campaigns.WithTx(tx).FindByID(ctx, input.CampaignID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
		}
		if s.requireApproved && campaign.Status != enums.CampaignStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "campaign is not accepting donations").
				WithDetails(map[string]any{"status": campaign.Status})
		}

		donation, err := s.repo.WithTx(tx).Create(ctx, &models.FinancialDonation{
			CampaignID:            campaign.ID,
			DonorID:               input.Donor.UserID,
			DonorName:             trimmedOrNil(input.Donor.Name),
			DonorEmail:            trimmedOrNil(input.Donor.Email),
			AmountCents:           input.AmountCents,
			Currency:              currency,
			Operator:              operator,
			OperatorTransactionID: operatorTxID,
			Status:                enums.DonationStatusPending,
		})
		if err != nil {
			if db.IsUniqueViolation(err, operatorTxConstraint) || db.IsUniqueViolation(err, "operator_transaction_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "operator transaction id already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
		}
		created = donation

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDonationInitiated,
			AggregateType: enums.AggregateFinancialDonation,
			AggregateID:   donation.ID,
			Actor:         donorActor(input.Donor.UserID),
			Data:          newDonationEvent(donation),
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

// ApplyPaymentCallback settles a pending donation. The status write is
// conditional on status = pending, so among racing callbacks exactly one
// observes a row change and increments the campaign total; the rest are
// reported as duplicates.
func (s *service) ApplyPaymentCallback(ctx context.Context, input PaymentCallbackInput) (*CallbackResult, error) {
	operatorTxID := strings.TrimSpace(input.OperatorTransactionID)
	if operatorTxID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator transaction id required")
	}
	if !input.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be success or failure")
	}
	// The operator becomes a metric label, so only well-formed codes get past here.
	operator, ok := NormalizeOperator(input.Operator)
	if operator != "" && !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid operator")
	}

	result := &CallbackResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := repo.FindByOperatorTransactionID(ctx, operatorTxID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
		}
		if operator != "" && operator != donation.Operator {
			return pkgerrors.New(pkgerrors.CodeValidation, "operator does not match donation")
		}
		if donation.Status.IsTerminal() {
			result.Donation = FromModel(donation)
			result.Duplicate = true
			return nil
		}

		switch input.Outcome {
		case enums.PaymentOutcomeSuccess:
			return s.complete(ctx, tx, repo, donation, input.AmountCents, result)
		default:
			return s.fail(ctx, tx, repo, donation, result)
		}
	})
	s.observeCallback(ctx, operator, input, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) complete(ctx context.Context, tx *gorm.DB, repo Repository, donation *models.FinancialDonation, amountCents int64, result *CallbackResult) error {
	if amountCents != donation.AmountCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "callback amount does not match pledged amount").
			WithDetails(map[string]any{"expected": donation.AmountCents, "received": amountCents})
	}

	now := s.now()
	won, err := repo.TransitionStatus(ctx, donation.ID, enums.DonationStatusPending, enums.DonationStatusCompleted, map[string]any{
		"completed_at": now,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete donation")
	}
	if !won {
		return s.markDuplicate(ctx, repo, donation.ID, result)
	}

	if err := s.campaigns.WithTx(tx).AddToCurrentAmount(ctx, donation.CampaignID, donation.AmountCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment campaign total")
	}

	donation.Status = enums.DonationStatusCompleted
	donation.CompletedAt = &now
	result.Donation = FromModel(donation)
	result.Applied = true
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDonationCompleted,
		AggregateType: enums.AggregateFinancialDonation,
		AggregateID:   donation.ID,
		Data:          newDonationEvent(donation),
	})
}

func (s *service) fail(ctx context.Context, tx *gorm.DB, repo Repository, donation *models.FinancialDonation, result *CallbackResult) error {
	now := s.now()
	won, err := repo.TransitionStatus(ctx, donation.ID, enums.DonationStatusPending, enums.DonationStatusFailed, map[string]any{
		"failed_at": now,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail donation")
	}
	if !won {
		return s.markDuplicate(ctx, repo, donation.ID, result)
	}

	donation.Status = enums.DonationStatusFailed
	donation.FailedAt = &now
	result.Donation = FromModel(donation)
	result.Applied = true
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDonationFailed,
		AggregateType: enums.AggregateFinancialDonation,
		AggregateID:   donation.ID,
		Data:          newDonationEvent(donation),
	})
}

// markDuplicate handles losing a race: another transaction settled the
// donation between our read and our conditional write.
func (s *service) markDuplicate(ctx context.Context, repo Repository, id uuid.UUID, result *CallbackResult) error {
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload donation")
	}
	result.Donation = FromModel(current)
	result.Duplicate = true
	return nil
}

func (s *service) observeCallback(ctx context.Context, operator string, input PaymentCallbackInput, result *CallbackResult, err error) {
	outcome := metrics.CallbackApplied
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		outcome = metrics.CallbackNotFound
	case err != nil:
		outcome = metrics.CallbackRejected
	case result.Duplicate:
		outcome = metrics.CallbackDuplicate
	}
	s.metrics.ObserveCallback(operator, string(input.Outcome), outcome)
	if err == nil && result.Applied && result.Donation.Status == enums.DonationStatusCompleted {
		s.metrics.AddCompleted(result.Donation.AmountCents)
	}

	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"operator":                operator,
		"operator_transaction_id": input.OperatorTransactionID,
		"outcome":                 input.Outcome,
		"result":                  outcome,
	})
	switch {
	case err != nil && outcome == metrics.CallbackRejected && !pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		s.logg.Error(logCtx, "donation.callback.failed", err)
	case err != nil:
		s.logg.Warn(logCtx, "donation.callback.rejected")
	case result.Duplicate:
		s.logg.Info(logCtx, "donation.callback.duplicate")
	case result.Donation.Status == enums.DonationStatusCompleted:
		s.logg.Info(s.logg.WithField(logCtx, "campaign_id", result.Donation.CampaignID.String()), "donation.completed")
	default:
		s.logg.Info(logCtx, "donation.failed")
	}
}

func (s *service) GetDonation(ctx context.Context, id uuid.UUID) (*DonationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	return FromModel(donation), nil
}

func (s *service) ListCampaignDonations(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*types.ListResponse[DonationDTO], error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	return s.list(ctx, params, func(cursor *pagination.Cursor) ([]models.FinancialDonation, string, error) {
		return s.repo.ListByCampaign(ctx, campaignID, params, cursor)
	})
}

func (s *service) ListDonorDonations(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*types.ListResponse[DonationDTO], error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, params, func(cursor *pagination.Cursor) ([]models.FinancialDonation, string, error) {
		return s.repo.ListByDonor(ctx, donorID, params, cursor)
	})
}

func (s *service) list(_ context.Context, params pagination.Params, fetch func(*pagination.Cursor) ([]models.FinancialDonation, string, error)) (*types.ListResponse[DonationDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := fetch(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donations")
	}
	items := make([]DonationDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &types.ListResponse[DonationDTO]{Items: items, NextCursor: next}, nil
}

// ReconcileCampaignTotals recomputes every campaign's total from completed
// donations and rewrites drifted accumulators, one transaction per campaign.
// The rewrite is conditional on the stored value it read, so a callback that
// commits mid-pass leaves that campaign for the next run instead of being
// overwritten.
func (s *service) ReconcileCampaignTotals(ctx context.Context) (*ReconcileReport, error) {
	ids, err := s.campaigns.ListIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}

	report := &ReconcileReport{Corrections: []TotalCorrection{}}
	var errs error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		correction, drifted, err := s.reconcileOne(ctx, id)
		report.Checked++
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("campaign %s: %w", id, err))
			continue
		}
		if drifted {
			report.Drifted++
		}
		if correction != nil {
			report.Corrected++
			report.Corrections = append(report.Corrections, *correction)
		}
	}

	s.metrics.ObserveReconciliation(report.Drifted, report.Corrected)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"checked":   report.Checked,
			"drifted":   report.Drifted,
			"corrected": report.Corrected,
		})
		if report.Drifted > 0 {
			s.logg.Warn(logCtx, "donation.totals.reconciled")
		} else {
			s.logg.Info(logCtx, "donation.totals.reconciled")
		}
	}

	if errs != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "reconcile campaign totals")
	}
	return report, nil
}

func (s *service) reconcileOne(ctx context.Context, campaignID uuid.UUID) (*TotalCorrection, bool, error) {
	var (
		correction *TotalCorrection
		drifted    bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		campaignRepo := s.campaigns.WithTx(tx)
		campaign, err := campaignRepo.FindByID(ctx, campaignID)
		if err != nil {
			return err
		}
		expected, err := s.repo.WithTx(tx).SumCompleted(ctx, campaignID)
		if err != nil {
			return err
		}
		if expected == campaign.CurrentAmountCents {
			return nil
		}
		drifted = true

		ok, err := campaignRepo.SetCurrentAmount(ctx, campaignID, campaign.CurrentAmountCents, expected)
		if err != nil || !ok {
			return err
		}
		correction = &TotalCorrection{
			CampaignID:    campaignID,
			StoredCents:   campaign.CurrentAmountCents,
			ExpectedCents: expected,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignTotalCorrected,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaignID,
			Data:          correction,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return correction, drifted, nil
}

func donorActor(userID *uuid.UUID) *outbox.ActorRef {
	if userID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *userID, Role: string(enums.UserRoleUser)}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
