package booking

import (
	"testing"
	"time"

	"bikeserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraft(flow FlowKind) *Draft {
	return NewDraft("d1", flow, "s1", "p1", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
}

func TestAdvance_RequiresVehicle(t *testing.T) {
	cfg := GarageFlow("FIRSTRIDE")
	d := newTestDraft(FlowGarage)

	err := d.Advance(cfg)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepSelectVehicle, d.ActiveStep)
	assert.Len(t, d.Errors, 1)
	assert.Contains(t, d.Errors, "bike")

	d.AttachVehicle(models.Vehicle{ID: "1", Brand: "Honda"})
	require.NoError(t, d.Advance(cfg))
	assert.Equal(t, StepSelectService, d.ActiveStep)
	assert.Empty(t, d.Errors)
}

func TestAdvance_ServiceAndSlotGates(t *testing.T) {
	cfg := WashingFlow("")
	d := newTestDraft(FlowWashing)
	d.AttachVehicle(models.Vehicle{ID: "1"})
	require.NoError(t, d.Advance(cfg))

	require.Error(t, d.Advance(cfg))
	assert.Equal(t, map[string]string{"service": "Please select a wash package"}, d.Errors)

	d.ToggleService(models.ServiceItem{ID: "w1", Price: "300"})
	require.NoError(t, d.Advance(cfg))
	assert.Equal(t, StepSlotAndAddress, d.ActiveStep)

	d.AttachAddress(models.Address{ID: "1", City: "Pune"})
	require.Error(t, d.Advance(cfg))
	assert.Equal(t, []string{"slot"}, keys(d.Errors))

	d.SelectSlot(models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "11:00 AM"})
	d.Address = nil
	require.Error(t, d.Advance(cfg))
	assert.Equal(t, []string{"address"}, keys(d.Errors))

	d.AttachAddress(models.Address{ID: "1", City: "Pune"})
	require.NoError(t, d.Advance(cfg))
	assert.Equal(t, StepSummary, d.ActiveStep)

	assert.ErrorIs(t, d.Advance(cfg), ErrTerminalStep)
	assert.Equal(t, StepSummary, d.ActiveStep)
}

func TestJumpBack_BackwardOnly(t *testing.T) {
	d := newTestDraft(FlowGarage)
	d.ActiveStep = StepSelectService
	before := *d

	assert.False(t, d.JumpBack(StepSlotAndAddress))
	assert.Equal(t, before, *d)
	assert.False(t, d.JumpBack(StepSelectService))

	d.ActiveStep = StepSlotAndAddress
	d.Errors["slot"] = "Please select a date and time slot"
	assert.True(t, d.JumpBack(StepSelectVehicle))
	assert.Equal(t, StepSelectVehicle, d.ActiveStep)
	assert.Empty(t, d.Errors)
}

func TestJumpBack_CompletedDraftIsFrozen(t *testing.T) {
	d := newTestDraft(FlowGarage)
	d.ActiveStep = StepSummary
	d.Completed = true

	assert.False(t, d.JumpBack(StepSelectVehicle))
	assert.ErrorIs(t, d.Advance(GarageFlow("")), ErrFlowCompleted)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "select_vehicle", StepSelectVehicle.String())
	assert.Equal(t, "summary", StepSummary.String())
	assert.Equal(t, "unknown", Step(9).String())
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestParseStep(t *testing.T) {
	st, ok := ParseStep("slot_and_address")
	assert.True(t, ok)
	assert.Equal(t, StepSlotAndAddress, st)

	st, ok = ParseStep("1")
	assert.True(t, ok)
	assert.Equal(t, StepSelectService, st)

	_, ok = ParseStep("4")
	assert.False(t, ok)
	_, ok = ParseStep("checkout")
	assert.False(t, ok)
}
