package models

import "time"

// Session holds the per-client values the booking flows depend on.
// It is passed explicitly to every service call that needs it.
type Session struct {
	ID            string         `json:"id"`
	AuthToken     string         `json:"authToken,omitempty"` // upstream bearer token
	SubscriberID  string         `json:"subscriberId,omitempty"`
	BusinessID    string         `json:"businessId,omitempty"`
	MobileNumber  string         `json:"mobileNumber,omitempty"`
	SelectedCity  string         `json:"selectedCity,omitempty"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	LocationData  *LocationData  `json:"locationData,omitempty"`
	BookingIntent *BookingIntent `json:"bookingIntent,omitempty"`
	FCMToken      string         `json:"fcmToken,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// LoggedIn reports whether OTP verification has completed.
func (s *Session) LoggedIn() bool {
	return s != nil && s.AuthToken != ""
}

// SessionView is the client-facing projection of a Session; the upstream token never leaves the server.
type SessionView struct {
	ID            string         `json:"id"`
	LoggedIn      bool           `json:"loggedIn"`
	SubscriberID  string         `json:"subscriberId,omitempty"`
	BusinessID    string         `json:"businessId,omitempty"`
	MobileNumber  string         `json:"mobileNumber,omitempty"`
	SelectedCity  string         `json:"selectedCity,omitempty"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	LocationData  *LocationData  `json:"locationData,omitempty"`
	BookingIntent *BookingIntent `json:"bookingIntent,omitempty"`
}

// View builds the client-facing projection.
func (s *Session) View() SessionView {
	return SessionView{
		ID:            s.ID,
		LoggedIn:      s.LoggedIn(),
		SubscriberID:  s.SubscriberID,
		BusinessID:    s.BusinessID,
		MobileNumber:  s.MobileNumber,
		SelectedCity:  s.SelectedCity,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		LocationData:  s.LocationData,
		BookingIntent: s.BookingIntent,
	}
}

// BookingIntent remembers what the user was booking when they were sent to log in.
type BookingIntent struct {
	Flow       string    `json:"flow" binding:"required"`
	ProviderID string    `json:"providerId" binding:"required"`
	DraftID    string    `json:"draftId,omitempty"`
	ServiceIDs []string  `json:"serviceIds,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LocationData is the resolved place for a coordinate pair.
type LocationData struct {
	City        string  `json:"city"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	DisplayName string  `json:"displayName,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Source      string  `json:"source"` // "geocoder", "nearest" or "manual"
}

const (
	LocationSourceGeocoder = "geocoder"
	LocationSourceNearest  = "nearest"
	LocationSourceManual   = "manual"
)
