package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/presence-backend-go/internal/service/reconciler"
)

// PresenceJobs wires the presence sweeps into the scheduler. The reconciler
// and the session sweep own their logic; these jobs only trigger them on an
// interval and log the outcome.
type PresenceJobs struct {
	reconciler *reconciler.Service
	sessionSvc session.SessionService

	reconcileInterval    time.Duration
	sessionSweepInterval time.Duration
}

func NewPresenceJobs(
	rec *reconciler.Service,
	sessionSvc session.SessionService,
	reconcileInterval time.Duration,
	sessionSweepInterval time.Duration,
) *PresenceJobs {
	return &PresenceJobs{
		reconciler:           rec,
		sessionSvc:           sessionSvc,
		reconcileInterval:    reconcileInterval,
		sessionSweepInterval: sessionSweepInterval,
	}
}

func (j *PresenceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reconcile_day_records", j.reconcileInterval, j.ReconcileDayRecords)
	scheduler.AddJob("auto_close_inactive_sessions", j.sessionSweepInterval, j.AutoCloseInactiveSessions)
}

func (j *PresenceJobs) ReconcileDayRecords(ctx context.Context) error {
	_, err := j.reconciler.ReconcileNow(ctx)
	return err
}

func (j *PresenceJobs) AutoCloseInactiveSessions(ctx context.Context) error {
	closed, err := j.sessionSvc.AutoCloseInactive(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: closed inactive sessions", "count", closed)
	}
	return nil
}
