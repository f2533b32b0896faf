package cron

import (
	"context"
	"fmt"

	"github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/pkg/logger"
)

type totalsReconciler interface {
	ReconcileCampaignTotals(ctx context.Context) (*donations.ReconcileReport, error)
}

type CampaignReconcileJobParams struct {
	Logger     *logger.Logger
	Reconciler totalsReconciler
}

// NewCampaignReconcileJob rewrites campaign totals that drifted from the sum
// of their completed donations.
func NewCampaignReconcileJob(params CampaignReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &campaignReconcileJob{logg: params.Logger, reconciler: params.Reconciler}, nil
}

type campaignReconcileJob struct {
	logg       *logger.Logger
	reconciler totalsReconciler
}

func (j *campaignReconcileJob) Name() string { return "campaign-totals-reconcile" }

func (j *campaignReconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.ReconcileCampaignTotals(ctx)
	if report != nil {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"checked":   report.Checked,
			"drifted":   report.Drifted,
			"corrected": report.Corrected,
		})
		for _, c := range report.Corrections {
			j.logg.Warn(j.logg.WithFields(logCtx, map[string]any{
				"campaign_id":    c.CampaignID.String(),
				"stored_cents":   c.StoredCents,
				"expected_cents": c.ExpectedCents,
			}), "campaign total corrected")
		}
	}
	if err != nil {
		return fmt.Errorf("campaign totals reconcile: %w", err)
	}
	return nil
}
