package booking

import (
	"fmt"
	"strings"

	"bikeserve/models"
)

const (
	duplicateBookingMessage = "You already have a booking for this slot. Please pick another time or check your bookings."
	bookingFailedMessage    = "Failed to create booking, please try again."
)

// Payload is the flat create-booking body.
type Payload map[string]any

// BuildPayload assembles the create-booking body from the draft. Only servicetype may be absent.
func BuildPayload(d *Draft, cfg FlowConfig) (Payload, error) {
	for step := StepSelectVehicle; step < StepSummary; step++ {
		if gate := cfg.Gates[step]; gate != nil {
			if verr := gate(d); verr != nil {
				return nil, verr
			}
		}
	}

	p := Payload{
		"vehicleid":     string(d.Vehicle.ID),
		"addressid":     string(d.Address.ID),
		cfg.ProviderKey: d.ProviderID,
		"date":          d.Slot.Date,
		"slot":          d.Slot.Slot,
		"suggestion":    d.Suggestion,
		"bookingamount": fmt.Sprintf("%.2f", d.Total()),
		"promocode":     cfg.PromoCode,
		"estimate":      d.Estimate,
		"serviceids":    d.SelectedIDs(),
	}
	if cfg.ServiceType != "" {
		p["servicetype"] = cfg.ServiceType
	}
	return p, nil
}

// TranslateBookingError maps a create-booking failure to the message shown to the user.
// duplicateMatch is a literal substring of the upstream's duplicate-booking error.
func TranslateBookingError(err error, duplicateMatch string) *FlowError {
	if duplicateMatch != "" && strings.Contains(err.Error(), duplicateMatch) {
		return &FlowError{Code: CodeDuplicateBooking, Message: duplicateBookingMessage, Err: err}
	}
	return &FlowError{Code: CodeBookingFailed, Message: bookingFailedMessage, Err: err}
}

// completeFromResponse fills the success view, preferring what the upstream returned.
func completeFromResponse(d *Draft, res *models.BookingResult, payload Payload) {
	out := *res
	if out.Date == "" {
		out.Date = d.Slot.Date
	}
	if out.Slot == "" {
		out.Slot = d.Slot.Slot
	}
	if out.Amount == "" {
		out.Amount = models.FlexString(payload["bookingamount"].(string))
	}
	d.Result = &out
	d.Completed = true
	d.Errors = map[string]string{}
}
