package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/pkg/logger"
)

type fakeReconciler struct {
	report *donations.ReconcileReport
	err    error
	calls  int
}

func (f *fakeReconciler) ReconcileCampaignTotals(context.Context) (*donations.ReconcileReport, error) {
	f.calls++
	return f.report, f.err
}

func TestCampaignReconcileJobRunsReconciler(t *testing.T) {
	reconciler := &fakeReconciler{report: &donations.ReconcileReport{
		Checked:   3,
		Drifted:   1,
		Corrected: 1,
		Corrections: []donations.TotalCorrection{
			{CampaignID: uuid.New(), StoredCents: 10, ExpectedCents: 20},
		},
	}}
	job, err := NewCampaignReconcileJob(CampaignReconcileJobParams{Logger: logger.Nop(), Reconciler: reconciler})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "campaign-totals-reconcile" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reconciler.calls != 1 {
		t.Fatalf("expected one reconcile call, got %d", reconciler.calls)
	}
}

func TestCampaignReconcileJobReturnsPartialFailure(t *testing.T) {
	reconciler := &fakeReconciler{
		report: &donations.ReconcileReport{Checked: 2},
		err:    errors.New("campaign x: db down"),
	}
	job, err := NewCampaignReconcileJob(CampaignReconcileJobParams{Logger: logger.Nop(), Reconciler: reconciler})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCampaignReconcileJobRequiresDependencies(t *testing.T) {
	if _, err := NewCampaignReconcileJob(CampaignReconcileJobParams{Reconciler: &fakeReconciler{}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewCampaignReconcileJob(CampaignReconcileJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected reconciler error")
	}
}
