package models

import "time"

// BookingResult is the upstream's answer to a create-booking call.
type BookingResult struct {
	BookingID FlexString `json:"booking_id"`
	Date      string     `json:"date,omitempty"`
	Slot      string     `json:"slot,omitempty"`
	Amount    FlexString `json:"amount,omitempty"`
	Status    string     `json:"status,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// BookingConfirmation is the payload of the booking-confirmed notification task.
type BookingConfirmation struct {
	SessionID   string    `json:"sessionId"`
	FCMToken    string    `json:"fcmToken"`
	Flow        string    `json:"flow"`
	BookingID   string    `json:"bookingId"`
	ProviderID  string    `json:"providerId"`
	Date        string    `json:"date"`
	Slot        string    `json:"slot"`
	Amount      string    `json:"amount"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// OTPVerifyResult is returned by the upstream on a successful OTP check.
type OTPVerifyResult struct {
	Token        string     `json:"token"`
	SubscriberID FlexString `json:"subscriberId"`
	BusinessID   FlexString `json:"businessId"`
}
