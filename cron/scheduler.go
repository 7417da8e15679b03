package cron

import (
	"context"
	"time"

	"bikeserve/services/reconcile"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileTimeout = 2 * time.Minute

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

// NewScheduler registers the outbox reconcile job on a six-field schedule (with seconds).
func NewScheduler(reconciler *reconcile.Reconciler, schedule string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	s := &Scheduler{cron: c, reconciler: reconciler, logger: logger}

	if _, err := c.AddFunc(schedule, s.reconcilePending); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) reconcilePending() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	sum, err := s.reconciler.Run(ctx)
	if err != nil {
		s.logger.Error("outbox reconcile failed", zap.Error(err))
		return
	}
	if sum.Synced+sum.Retrying+sum.Failed > 0 {
		s.logger.Info("outbox reconcile finished",
			zap.Int("synced", sum.Synced),
			zap.Int("retrying", sum.Retrying),
			zap.Int("failed", sum.Failed),
		)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
