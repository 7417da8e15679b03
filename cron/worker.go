package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bikeserve/services/notification"
	"bikeserve/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingWorker processes booking push tasks from the queue.
type BookingWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewBookingWorker(redisOpts asynq.RedisClientOpt, notifSvc notification.NotificationService, logger *zap.Logger) *BookingWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirmed, handleBookingConfirmed(notifSvc, logger))
	mux.HandleFunc(tasks.TypeBookingReminder, handleBookingReminder(notifSvc, logger))

	return &BookingWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *BookingWorker) Start() {
	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				w.logger.Info("booking worker started")
				return
			}
			w.logger.Error("booking worker failed to start",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		w.logger.Error("booking worker gave up, push notifications are disabled")
	}()
}

func (w *BookingWorker) Shutdown() {
	w.srv.Shutdown()
}

func handleBookingConfirmed(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		c, err := tasks.DecodeConfirmation(task)
		if err != nil {
			return fmt.Errorf("invalid booking payload: %v: %w", err, asynq.SkipRetry)
		}
		return deliver(logger, c.BookingID, notifSvc.NotifyBookingConfirmed(ctx, c))
	}
}

func handleBookingReminder(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		c, err := tasks.DecodeConfirmation(task)
		if err != nil {
			return fmt.Errorf("invalid booking payload: %v: %w", err, asynq.SkipRetry)
		}
		return deliver(logger, c.BookingID, notifSvc.NotifyBookingReminder(ctx, c))
	}
}

// deliver drops tasks that can never succeed and lets asynq retry the rest.
func deliver(logger *zap.Logger, bookingID string, err error) error {
	if errors.Is(err, notification.ErrNoPushTarget) {
		logger.Info("no push target, dropping task", zap.String("bookingId", bookingID))
		return nil
	}
	if err != nil {
		logger.Warn("push delivery failed", zap.String("bookingId", bookingID), zap.Error(err))
	}
	return err
}
