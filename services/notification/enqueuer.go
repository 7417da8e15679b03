package notification

import (
	"context"
	"errors"
	"time"

	"bikeserve/models"
	"bikeserve/services/booking"
	"bikeserve/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskQueue is the part of *asynq.Client the enqueuer needs.
type TaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskEnqueuer turns booking confirmations into background push tasks.
type TaskEnqueuer struct {
	Queue        TaskQueue
	Location     *time.Location
	ReminderLead time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

var _ booking.Notifier = (*TaskEnqueuer)(nil)

func NewTaskEnqueuer(q TaskQueue, loc *time.Location, lead time.Duration, logger *zap.Logger) *TaskEnqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskEnqueuer{Queue: q, Location: loc, ReminderLead: lead, Now: time.Now, Logger: logger}
}

// BookingConfirmed queues the confirmation push and, when the slot is far enough ahead, a reminder.
func (e *TaskEnqueuer) BookingConfirmed(ctx context.Context, c models.BookingConfirmation) error {
	if c.FCMToken == "" {
		return nil
	}

	task, opts, err := tasks.NewBookingConfirmedTask(c)
	if err != nil {
		return err
	}
	if err := e.enqueue(ctx, task, opts); err != nil {
		return err
	}

	start, ok := booking.SlotStart(models.SlotSelection{Date: c.Date, Slot: c.Slot}, e.Location)
	if !ok || e.ReminderLead <= 0 {
		return nil
	}
	fireAt := start.Add(-e.ReminderLead)
	if !fireAt.After(e.Now()) {
		return nil
	}
	task, opts, err = tasks.NewBookingReminderTask(c, fireAt)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, opts)
}

func (e *TaskEnqueuer) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	info, err := e.Queue.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	e.Logger.Info("task enqueued", zap.String("type", task.Type()), zap.String("taskId", info.ID))
	return nil
}
