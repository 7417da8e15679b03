package tasks

import (
	"encoding/json"
	"time"

	"bikeserve/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingConfirmed = "booking:confirmed"
	TypeBookingReminder  = "booking:reminder"
)

// NewBookingConfirmedTask is processed right away. The task id makes a repeated enqueue a no-op.
func NewBookingConfirmedTask(c models.BookingConfirmation) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirmed, b)
	opts := []asynq.Option{
		asynq.TaskID(TypeBookingConfirmed + ":" + c.BookingID),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// NewBookingReminderTask fires at fireAt, ahead of the booked slot.
func NewBookingReminderTask(c models.BookingConfirmation, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.TaskID(TypeBookingReminder + ":" + c.BookingID),
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// DecodeConfirmation reads a booking task payload.
func DecodeConfirmation(task *asynq.Task) (models.BookingConfirmation, error) {
	var c models.BookingConfirmation
	err := json.Unmarshal(task.Payload(), &c)
	return c, err
}
