package booking

import (
	"errors"
	"testing"

	"bikeserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyDraft(flow FlowKind) *Draft {
	d := newTestDraft(flow)
	d.AttachVehicle(models.Vehicle{ID: "1", Brand: "Honda"})
	d.ToggleService(models.ServiceItem{ID: "1", Name: "General Service", Price: "500"})
	d.SelectSlot(models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "11:00 AM"})
	d.AttachAddress(models.Address{ID: "1", City: "Pune"})
	d.ActiveStep = StepSummary
	return d
}

func TestBuildPayload_Garage(t *testing.T) {
	d := readyDraft(FlowGarage)
	d.Suggestion = "chain noise"

	p, err := BuildPayload(d, GarageFlow("FIRSTRIDE"))
	require.NoError(t, err)

	assert.Equal(t, "1", p["vehicleid"])
	assert.Equal(t, "1", p["addressid"])
	assert.Equal(t, "p1", p["garageid"])
	assert.Equal(t, "2024-01-15 (Mon)", p["date"])
	assert.Equal(t, "11:00 AM", p["slot"])
	assert.Equal(t, "chain noise", p["suggestion"])
	assert.Equal(t, "500.00", p["bookingamount"])
	assert.Equal(t, "FIRSTRIDE", p["promocode"])
	assert.Equal(t, false, p["estimate"])
	assert.Equal(t, []string{"1"}, p["serviceids"])
	assert.NotContains(t, p, "servicetype")
	assert.NotContains(t, p, "washingcenterid")
}

func TestBuildPayload_Washing(t *testing.T) {
	p, err := BuildPayload(readyDraft(FlowWashing), WashingFlow(""))
	require.NoError(t, err)

	assert.Equal(t, "p1", p["washingcenterid"])
	assert.Equal(t, "washing", p["servicetype"])
	assert.NotContains(t, p, "garageid")
}

func TestBuildPayload_RechecksGates(t *testing.T) {
	d := readyDraft(FlowGarage)
	d.Address = nil

	_, err := BuildPayload(d, GarageFlow(""))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "address", verr.Field)
}

func TestTranslateBookingError(t *testing.T) {
	dup := TranslateBookingError(errors.New("400: Booking already exists for this slot"), "Booking already exists")
	assert.Equal(t, CodeDuplicateBooking, dup.Code)

	generic := TranslateBookingError(errors.New("500: internal"), "Booking already exists")
	assert.Equal(t, CodeBookingFailed, generic.Code)
	assert.Equal(t, bookingFailedMessage, generic.Message)

	cause := errors.New("booking already exists")
	caseSensitive := TranslateBookingError(cause, "Booking already exists")
	assert.Equal(t, CodeBookingFailed, caseSensitive.Code)
	assert.ErrorIs(t, caseSensitive, cause)
}

func TestCompleteFromResponse_FillsMissingFields(t *testing.T) {
	d := readyDraft(FlowGarage)
	p, err := BuildPayload(d, GarageFlow(""))
	require.NoError(t, err)

	completeFromResponse(d, &models.BookingResult{BookingID: "B-77"}, p)

	require.NotNil(t, d.Result)
	assert.True(t, d.Completed)
	assert.Equal(t, models.FlexString("B-77"), d.Result.BookingID)
	assert.Equal(t, "2024-01-15 (Mon)", d.Result.Date)
	assert.Equal(t, "11:00 AM", d.Result.Slot)
	assert.Equal(t, models.FlexString("500.00"), d.Result.Amount)
}
