package booking

import (
	"errors"
	"fmt"
)

var (
	ErrDraftNotFound      = errors.New("booking draft not found or expired")
	ErrUnknownFlow        = errors.New("unknown booking flow")
	ErrTerminalStep       = errors.New("summary is the last step, confirm the booking instead")
	ErrNotAtSummary       = errors.New("booking can only be confirmed from the summary step")
	ErrFlowCompleted      = errors.New("booking already confirmed")
	ErrConfirmInFlight    = errors.New("booking confirmation already in progress")
	ErrSlotUnavailable    = errors.New("selected slot is not available")
	ErrUnknownItem        = errors.New("service not offered by this provider")
	ErrVehicleRequired    = errors.New("select a vehicle before choosing services")
	ErrMissingProvider    = errors.New("provider id is required")
	ErrCatalogUnavailable = errors.New("services could not be loaded, please try again")
	ErrLoginRequired      = errors.New("log in to confirm the booking")
	ErrPendingSync        = errors.New("your vehicle or address is still being saved, please try again shortly")
)

// ValidationError is a failed step gate. Field is the error-map key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FlowError is a user-facing failure of a remote flow action.
type FlowError struct {
	Code    string
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

const (
	CodeDuplicateBooking = "duplicate_booking"
	CodeBookingFailed    = "booking_failed"
)
