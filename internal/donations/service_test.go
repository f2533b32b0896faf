package donations

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/internal/campaigns"
	"github.com/givehub/givehub-backend/internal/repo/repotest"
	"github.com/givehub/givehub-backend/pkg/db"
	"github.com/givehub/givehub-backend/pkg/db/models"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/metrics"
	"github.com/givehub/givehub-backend/pkg/outbox"
	"github.com/givehub/givehub-backend/pkg/pagination"
)

type fixture struct {
	svc       Service
	conn      *gorm.DB
	campaigns campaigns.Repository
	registry  *prometheus.Registry
}

func newFixture(t *testing.T, requireApproved bool) *fixture {
	t.Helper()
	conn := repotest.Open(t)
	reg := prometheus.NewRegistry()
	campaignRepo := campaigns.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:                    NewRepository(conn),
		Campaigns:               campaignRepo,
		TxRunner:                db.FromGorm(conn),
		Outbox:                  outbox.NewService(outbox.NewRepository(conn), nil),
		Metrics:                 metrics.NewDonationMetrics(reg),
		RequireApprovedCampaign: requireApproved,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, conn: conn, campaigns: campaignRepo, registry: reg}
}

// serviceWith builds a second service over the fixture's database with repo
// swapped in.
func (f *fixture) serviceWith(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Campaigns: f.campaigns,
		TxRunner:  db.FromGorm(f.conn),
		Outbox:    outbox.NewService(outbox.NewRepository(f.conn), nil),
		Metrics:   metrics.NewDonationMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return svc
}

// staleRepo returns a donation snapshot taken before another callback
// settled it, as a reader that lost the race would see it.
type staleRepo struct {
	Repository
	snapshot models.FinancialDonation
}

func (r *staleRepo) WithTx(tx *gorm.DB) Repository {
	return &staleRepo{Repository: r.Repository.WithTx(tx), snapshot: r.snapshot}
}

func (r *staleRepo) FindByOperatorTransactionID(_ context.Context, operatorTxID string) (*models.FinancialDonation, error) {
	if operatorTxID != r.snapshot.OperatorTransactionID {
		return nil, gorm.ErrRecordNotFound
	}
	donation := r.snapshot
	return &donation, nil
}

func (f *fixture) campaign(t *testing.T, status enums.CampaignStatus) *models.Campaign {
	t.Helper()
	c, err := f.campaigns.Create(context.Background(), &models.Campaign{
		CreatorID:       uuid.New(),
		Title:           "Food bank",
		Description:     "Winter drive",
		GoalAmountCents: 100000,
		Status:          status,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) currentAmount(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	c, err := f.campaigns.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c.CurrentAmountCents
}

func (f *fixture) sumCompleted(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	sum, err := NewRepository(f.conn).SumCompleted(context.Background(), id)
	require.NoError(t, err)
	return sum
}

func (f *fixture) initiate(t *testing.T, campaignID uuid.UUID, cents int64, txID string) *DonationDTO {
	t.Helper()
	d, err := f.svc.InitiateDonation(context.Background(), InitiateDonationInput{
		CampaignID:            campaignID,
		AmountCents:           cents,
		Operator:              "stripe",
		OperatorTransactionID: txID,
	})
	require.NoError(t, err)
	return d
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestInitiateDonationStartsPending(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	donor := uuid.New()
	name := "  Ada "

	d, err := f.svc.InitiateDonation(context.Background(), InitiateDonationInput{
		CampaignID:  c.ID,
		Donor:       Donor{UserID: &donor, Name: &name},
		AmountCents: 2500,
		Operator:    "Stripe",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DonationStatusPending, d.Status)
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, "stripe", d.Operator)
	assert.Equal(t, "25.00", d.Amount)
	assert.Equal(t, "Ada", *d.DonorName)
	assert.Contains(t, d.OperatorTransactionID, "stripe_")
	assert.Equal(t, int64(0), f.currentAmount(t, c.ID))

	events, err := outbox.NewRepository(f.conn).ListByAggregate(d.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventDonationInitiated, events[0].EventType)
}

func TestInitiateDonationValidation(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	ctx := context.Background()

	cases := []InitiateDonationInput{
		{CampaignID: c.ID, AmountCents: 0, Operator: "stripe"},
		{CampaignID: c.ID, AmountCents: -10, Operator: "stripe"},
		{CampaignID: c.ID, AmountCents: 10, Operator: ""},
		{CampaignID: c.ID, AmountCents: 10, Operator: "stripe", Currency: "euro"},
		{AmountCents: 10, Operator: "stripe"},
	}
	for _, in := range cases {
		_, err := f.svc.InitiateDonation(ctx, in)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v got %v", in, err)
	}

	_, err := f.svc.InitiateDonation(ctx, InitiateDonationInput{CampaignID: uuid.New(), AmountCents: 10, Operator: "stripe"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestInitiateDonationRequiresApprovedCampaign(t *testing.T) {
	ctx := context.Background()
	strict := newFixture(t, true)
	pending := strict.campaign(t, enums.CampaignStatusPending)
	_, err := strict.svc.InitiateDonation(ctx, InitiateDonationInput{CampaignID: pending.ID, AmountCents: 10, Operator: "stripe"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	lenient := newFixture(t, false)
	pending = lenient.campaign(t, enums.CampaignStatusPending)
	_, err = lenient.svc.InitiateDonation(ctx, InitiateDonationInput{CampaignID: pending.ID, AmountCents: 10, Operator: "stripe"})
	assert.NoError(t, err)
}

func TestInitiateDonationDuplicateOperatorTransaction(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 100, "tx-dup")

	_, err := f.svc.InitiateDonation(context.Background(), InitiateDonationInput{
		CampaignID: c.ID, AmountCents: 100, Operator: "stripe", OperatorTransactionID: "tx-dup",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestSuccessfulCallbackIncrementsCampaignTotal(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	d := f.initiate(t, c.ID, 5000, "tx-a")

	res, err := f.svc.ApplyPaymentCallback(context.Background(), PaymentCallbackInput{
		Operator:              "stripe",
		OperatorTransactionID: "tx-a",
		Outcome:               enums.PaymentOutcomeSuccess,
		AmountCents:           5000,
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, res.Duplicate)
	assert.Equal(t, enums.DonationStatusCompleted, res.Donation.Status)
	assert.NotNil(t, res.Donation.CompletedAt)
	assert.Equal(t, int64(5000), f.currentAmount(t, c.ID))

	events, err := outbox.NewRepository(f.conn).ListByAggregate(d.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, enums.EventDonationCompleted, events[1].EventType)
}

func TestDuplicateCallbackIsNoOp(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 1200, "tx-d")
	in := PaymentCallbackInput{Operator: "stripe", OperatorTransactionID: "tx-d", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 1200}

	first, err := f.svc.ApplyPaymentCallback(context.Background(), in)
	require.NoError(t, err)
	require.True(t, first.Applied)

	second, err := f.svc.ApplyPaymentCallback(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.True(t, second.Duplicate)
	assert.Equal(t, enums.DonationStatusCompleted, second.Donation.Status)
	assert.Equal(t, int64(1200), f.currentAmount(t, c.ID))

	// A late failure for an already completed donation changes nothing.
	in.Outcome = enums.PaymentOutcomeFailure
	third, err := f.svc.ApplyPaymentCallback(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, third.Duplicate)
	assert.Equal(t, enums.DonationStatusCompleted, third.Donation.Status)
	assert.Equal(t, int64(1200), f.currentAmount(t, c.ID))
}

func TestCallbackLosingRaceIsDuplicate(t *testing.T) {
	for _, outcome := range []enums.PaymentOutcome{enums.PaymentOutcomeSuccess, enums.PaymentOutcomeFailure} {
		t.Run(string(outcome), func(t *testing.T) {
			f := newFixture(t, true)
			c := f.campaign(t, enums.CampaignStatusApproved)
			d := f.initiate(t, c.ID, 900, "tx-lost")
			ctx := context.Background()

			snapshot, err := NewRepository(f.conn).FindByOperatorTransactionID(ctx, "tx-lost")
			require.NoError(t, err)
			require.Equal(t, enums.DonationStatusPending, snapshot.Status)

			won, err := f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{
				Operator: "stripe", OperatorTransactionID: "tx-lost", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 900,
			})
			require.NoError(t, err)
			require.True(t, won.Applied)

			late := f.serviceWith(t, &staleRepo{Repository: NewRepository(f.conn), snapshot: *snapshot})
			res, err := late.ApplyPaymentCallback(ctx, PaymentCallbackInput{
				Operator: "stripe", OperatorTransactionID: "tx-lost", Outcome: outcome, AmountCents: 900,
			})
			require.NoError(t, err)
			assert.True(t, res.Duplicate)
			assert.False(t, res.Applied)
			assert.Equal(t, enums.DonationStatusCompleted, res.Donation.Status)
			assert.Equal(t, int64(900), f.currentAmount(t, c.ID))
			assert.Equal(t, f.sumCompleted(t, c.ID), f.currentAmount(t, c.ID))

			events, err := outbox.NewRepository(f.conn).ListByAggregate(d.ID)
			require.NoError(t, err)
			assert.Len(t, events, 2)
		})
	}
}

func TestConcurrentCallbacksApplyExactlyOnce(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 700, "tx-race")

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.ApplyPaymentCallback(context.Background(), PaymentCallbackInput{
				Operator: "stripe", OperatorTransactionID: "tx-race", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 700,
			})
			if !assert.NoError(t, err) {
				return
			}
			if res.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, int64(700), f.currentAmount(t, c.ID))
	assert.Equal(t, f.sumCompleted(t, c.ID), f.currentAmount(t, c.ID))
}

func TestCampaignTotalEqualsSumOfCompleted(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	other := f.campaign(t, enums.CampaignStatusApproved)
	ctx := context.Background()

	f.initiate(t, c.ID, 1000, "tx-1")
	f.initiate(t, c.ID, 2000, "tx-2")
	f.initiate(t, c.ID, 4000, "tx-3")
	f.initiate(t, other.ID, 9000, "tx-4")

	for _, in := range []PaymentCallbackInput{
		{OperatorTransactionID: "tx-1", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 1000},
		{OperatorTransactionID: "tx-2", Outcome: enums.PaymentOutcomeFailure},
		{OperatorTransactionID: "tx-3", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 4000},
		{OperatorTransactionID: "tx-4", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 9000},
	} {
		_, err := f.svc.ApplyPaymentCallback(ctx, in)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(5000), f.currentAmount(t, c.ID))
	assert.Equal(t, f.sumCompleted(t, c.ID), f.currentAmount(t, c.ID))
	assert.Equal(t, int64(9000), f.currentAmount(t, other.ID))
}

func TestFailureCallbackLeavesTotalUntouched(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 300, "tx-f")

	res, err := f.svc.ApplyPaymentCallback(context.Background(), PaymentCallbackInput{
		OperatorTransactionID: "tx-f", Outcome: enums.PaymentOutcomeFailure,
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, enums.DonationStatusFailed, res.Donation.Status)
	assert.NotNil(t, res.Donation.FailedAt)
	assert.Equal(t, int64(0), f.currentAmount(t, c.ID))
}

func TestCallbackRejections(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 500, "tx-r")
	ctx := context.Background()

	_, err := f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{OperatorTransactionID: "missing", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 500})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{OperatorTransactionID: "tx-r", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 499})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{Operator: "paypal", OperatorTransactionID: "tx-r", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 500})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{Operator: "strípe{x}", OperatorTransactionID: "tx-r", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 500})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{OperatorTransactionID: "tx-r", Outcome: "maybe"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.ApplyPaymentCallback(ctx, PaymentCallbackInput{Outcome: enums.PaymentOutcomeSuccess})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, int64(0), f.currentAmount(t, c.ID))
	d, err := NewRepository(f.conn).FindByOperatorTransactionID(ctx, "tx-r")
	require.NoError(t, err)
	assert.Equal(t, enums.DonationStatusPending, d.Status)
}

func TestCallbackMetrics(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 800, "tx-m")
	in := PaymentCallbackInput{Operator: "stripe", OperatorTransactionID: "tx-m", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 800}

	_, err := f.svc.ApplyPaymentCallback(context.Background(), in)
	require.NoError(t, err)
	_, err = f.svc.ApplyPaymentCallback(context.Background(), in)
	require.NoError(t, err)

	families, err := f.registry.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "givehub_payment_callbacks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" {
					counts[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), counts[metrics.CallbackApplied])
	assert.Equal(t, float64(1), counts[metrics.CallbackDuplicate])
}

func TestCallbackMetricsIgnoreMalformedOperator(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	f.initiate(t, c.ID, 800, "tx-label")

	for _, operator := range []string{"../../etc", "Stripe Payments", strings.Repeat("x", 60)} {
		_, err := f.svc.ApplyPaymentCallback(context.Background(), PaymentCallbackInput{
			Operator: operator, OperatorTransactionID: "tx-label", Outcome: enums.PaymentOutcomeFailure,
		})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "operator %q got %v", operator, err)
	}

	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "givehub_payment_callbacks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "operator" {
					t.Fatalf("unexpected operator label %q", l.GetValue())
				}
			}
		}
	}
}

func TestReconcileCorrectsDriftedTotals(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	drifted := f.campaign(t, enums.CampaignStatusApproved)
	healthy := f.campaign(t, enums.CampaignStatusApproved)

	f.initiate(t, drifted.ID, 1500, "tx-x")
	f.initiate(t, healthy.ID, 600, "tx-y")
	for _, in := range []PaymentCallbackInput{
		{OperatorTransactionID: "tx-x", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 1500},
		{OperatorTransactionID: "tx-y", Outcome: enums.PaymentOutcomeSuccess, AmountCents: 600},
	} {
		_, err := f.svc.ApplyPaymentCallback(ctx, in)
		require.NoError(t, err)
	}

	require.NoError(t, f.conn.Model(&models.Campaign{}).Where("id = ?", drifted.ID).
		Update("current_amount_cents", 99).Error)

	report, err := f.svc.ReconcileCampaignTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Drifted)
	assert.Equal(t, 1, report.Corrected)
	require.Len(t, report.Corrections, 1)
	assert.Equal(t, drifted.ID, report.Corrections[0].CampaignID)
	assert.Equal(t, int64(99), report.Corrections[0].StoredCents)
	assert.Equal(t, int64(1500), report.Corrections[0].ExpectedCents)
	assert.Equal(t, int64(1500), f.currentAmount(t, drifted.ID))
	assert.Equal(t, int64(600), f.currentAmount(t, healthy.ID))

	events, err := outbox.NewRepository(f.conn).ListByAggregate(drifted.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, enums.EventCampaignTotalCorrected, events[len(events)-1].EventType)

	again, err := f.svc.ReconcileCampaignTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Drifted)
}

func TestListDonationsPaginates(t *testing.T) {
	f := newFixture(t, true)
	c := f.campaign(t, enums.CampaignStatusApproved)
	donor := uuid.New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.InitiateDonation(ctx, InitiateDonationInput{
			CampaignID: c.ID, Donor: Donor{UserID: &donor}, AmountCents: int64(100 + i), Operator: "stripe",
		})
		require.NoError(t, err)
	}
	f.initiate(t, c.ID, 50, "anon")

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for page := 0; page < 5; page++ {
		res, err := f.svc.ListCampaignDonations(ctx, c.ID, pagination.Params{Limit: 4, Cursor: cursor})
		require.NoError(t, err)
		for _, d := range res.Items {
			seen[d.ID] = true
		}
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	assert.Len(t, seen, 6)

	mine, err := f.svc.ListDonorDonations(ctx, donor, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 5)

	_, err = f.svc.ListCampaignDonations(ctx, c.ID, pagination.Params{Limit: 4, Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	got, err := f.svc.GetDonation(ctx, mine.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, donor, *got.DonorID)

	_, err = f.svc.GetDonation(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
