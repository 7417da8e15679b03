package notification

import (
	"context"
	"errors"
	"fmt"

	"bikeserve/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoPushTarget means the session never registered an FCM token.
var ErrNoPushTarget = errors.New("no FCM token registered")

// PushSender delivers one FCM message. *messaging.Client satisfies it.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService defines the pushes sent about a booking.
type NotificationService interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
	NotifyBookingConfirmed(ctx context.Context, c models.BookingConfirmation) error
	NotifyBookingReminder(ctx context.Context, c models.BookingConfirmation) error
}

// DefaultNotificationService sends pushes through FCM. A nil Sender logs and drops them.
type DefaultNotificationService struct {
	Sender PushSender
	Logger *zap.Logger
}

func NewDefaultNotificationService(sender PushSender, logger *zap.Logger) *DefaultNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{Sender: sender, Logger: logger}
}

func (s *DefaultNotificationService) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return ErrNoPushTarget
	}
	if s.Sender == nil {
		s.Logger.Debug("push disabled, dropping message", zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.Sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	s.Logger.Info("push sent", zap.String("messageId", id), zap.String("type", data["type"]))
	return nil
}

func bookingData(kind string, c models.BookingConfirmation) map[string]string {
	return map[string]string{
		"type":       kind,
		"bookingId":  c.BookingID,
		"flow":       c.Flow,
		"providerId": c.ProviderID,
		"date":       c.Date,
		"slot":       c.Slot,
	}
}

func (s *DefaultNotificationService) NotifyBookingConfirmed(ctx context.Context, c models.BookingConfirmation) error {
	body := fmt.Sprintf("Your %s booking for %s at %s is confirmed. Booking ID %s, amount ₹%s.",
		flowLabel(c.Flow), c.Date, c.Slot, c.BookingID, c.Amount)
	return s.SendPush(ctx, c.FCMToken, "Booking confirmed", body, bookingData("booking_confirmed", c))
}

func (s *DefaultNotificationService) NotifyBookingReminder(ctx context.Context, c models.BookingConfirmation) error {
	body := fmt.Sprintf("Reminder: your %s booking %s starts at %s.", flowLabel(c.Flow), c.BookingID, c.Slot)
	return s.SendPush(ctx, c.FCMToken, "Upcoming booking", body, bookingData("booking_reminder", c))
}

func flowLabel(flow string) string {
	if flow == models.ProviderWashing {
		return "bike wash"
	}
	return "bike service"
}
