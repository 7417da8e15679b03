package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bikeserve/models"
	"bikeserve/services/tasks"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type MockTaskQueue struct {
	mock.Mock
}

func (m *MockTaskQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task.Type())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func confirmation() models.BookingConfirmation {
	return models.BookingConfirmation{
		SessionID: "s1",
		FCMToken:  "fcm-1",
		Flow:      "garage",
		BookingID: "BK-1001",
		Date:      "2024-01-15 (Mon)",
		Slot:      "2:00 PM",
		Amount:    "500.00",
	}
}

func TestNotifyBookingConfirmed(t *testing.T) {
	sender := new(MockPushSender)
	svc := NewDefaultNotificationService(sender, zap.NewNop())

	sender.On("Send", mock.Anything, mock.MatchedBy(func(m *messaging.Message) bool {
		return m.Token == "fcm-1" &&
			m.Notification.Title == "Booking confirmed" &&
			m.Data["bookingId"] == "BK-1001" &&
			m.Data["type"] == "booking_confirmed"
	})).Return("projects/x/messages/1", nil).Once()

	require.NoError(t, svc.NotifyBookingConfirmed(context.Background(), confirmation()))
	sender.AssertExpectations(t)
}

func TestSendPush_Errors(t *testing.T) {
	sender := new(MockPushSender)
	svc := NewDefaultNotificationService(sender, zap.NewNop())

	assert.ErrorIs(t, svc.SendPush(context.Background(), "", "t", "b", nil), ErrNoPushTarget)

	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("unregistered")).Once()
	assert.Error(t, svc.NotifyBookingReminder(context.Background(), confirmation()))

	disabled := NewDefaultNotificationService(nil, zap.NewNop())
	assert.NoError(t, disabled.NotifyBookingConfirmed(context.Background(), confirmation()))
}

func TestEnqueuer_QueuesConfirmationAndReminder(t *testing.T) {
	queue := new(MockTaskQueue)
	e := NewTaskEnqueuer(queue, time.UTC, time.Hour, zap.NewNop())
	e.Now = func() time.Time { return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC) }

	queue.On("EnqueueContext", mock.Anything, tasks.TypeBookingConfirmed).Return(&asynq.TaskInfo{ID: "c1"}, nil).Once()
	queue.On("EnqueueContext", mock.Anything, tasks.TypeBookingReminder).Return(&asynq.TaskInfo{ID: "r1"}, nil).Once()

	require.NoError(t, e.BookingConfirmed(context.Background(), confirmation()))
	queue.AssertExpectations(t)
}

func TestEnqueuer_SkipsReminderWhenTooLate(t *testing.T) {
	queue := new(MockTaskQueue)
	e := NewTaskEnqueuer(queue, time.UTC, time.Hour, zap.NewNop())
	e.Now = func() time.Time { return time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC) }

	queue.On("EnqueueContext", mock.Anything, tasks.TypeBookingConfirmed).Return(&asynq.TaskInfo{ID: "c1"}, nil).Once()

	require.NoError(t, e.BookingConfirmed(context.Background(), confirmation()))
	queue.AssertNotCalled(t, "EnqueueContext", mock.Anything, tasks.TypeBookingReminder)
}

func TestEnqueuer_NoTokenOrDuplicate(t *testing.T) {
	queue := new(MockTaskQueue)
	e := NewTaskEnqueuer(queue, time.UTC, 0, zap.NewNop())

	c := confirmation()
	c.FCMToken = ""
	require.NoError(t, e.BookingConfirmed(context.Background(), c))
	queue.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything)

	queue.On("EnqueueContext", mock.Anything, tasks.TypeBookingConfirmed).Return(nil, asynq.ErrTaskIDConflict).Once()
	assert.NoError(t, e.BookingConfirmed(context.Background(), confirmation()))
}
