package booking

import (
	"time"

	"bikeserve/models"
)

// Draft is one user's in-progress booking plus the wizard position.
type Draft struct {
	ID         string                `json:"id"`
	Flow       FlowKind              `json:"flow"`
	SessionID  string                `json:"sessionId"`
	ProviderID string                `json:"providerId"`
	ActiveStep Step                  `json:"activeStep"`
	Errors     map[string]string     `json:"errors"`
	Vehicle    *models.Vehicle       `json:"vehicle,omitempty"`
	Services   []models.ServiceItem  `json:"services"`
	AddOns     []models.ServiceItem  `json:"addons"`
	Slot       *models.SlotSelection `json:"slot,omitempty"`
	Address    *models.Address       `json:"address,omitempty"`
	Suggestion string                `json:"suggestion"`
	Estimate   bool                  `json:"estimate"`
	Completed  bool                  `json:"completed"`
	Result     *models.BookingResult `json:"result,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// NewDraft starts a flow at step 0.
func NewDraft(id string, flow FlowKind, sessionID, providerID string, now time.Time) *Draft {
	return &Draft{
		ID:         id,
		Flow:       flow,
		SessionID:  sessionID,
		ProviderID: providerID,
		ActiveStep: StepSelectVehicle,
		Errors:     map[string]string{},
		Services:   []models.ServiceItem{},
		AddOns:     []models.ServiceItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Advance moves forward one step if the current step's gate passes.
// On failure the error map holds exactly one entry and the step is unchanged.
func (d *Draft) Advance(cfg FlowConfig) error {
	if d.Completed {
		return ErrFlowCompleted
	}
	if d.ActiveStep >= StepSummary {
		return ErrTerminalStep
	}

	d.Errors = map[string]string{}
	if gate := cfg.Gates[d.ActiveStep]; gate != nil {
		if verr := gate(d); verr != nil {
			d.Errors[verr.Field] = verr.Message
			return verr
		}
	}
	d.ActiveStep++
	return nil
}

// JumpBack moves to an earlier step. Targets at or beyond the current step are ignored.
func (d *Draft) JumpBack(target Step) bool {
	if d.Completed || target < StepSelectVehicle || target >= d.ActiveStep {
		return false
	}
	d.ActiveStep = target
	d.Errors = map[string]string{}
	return true
}

// AttachVehicle sets the draft's vehicle.
func (d *Draft) AttachVehicle(v models.Vehicle) {
	d.Vehicle = &v
}

// SelectSlot sets the date/time pair.
func (d *Draft) SelectSlot(sel models.SlotSelection) {
	d.Slot = &sel
}

// AttachAddress sets the service address.
func (d *Draft) AttachAddress(a models.Address) {
	d.Address = &a
}

// ClearErrors dismisses the error panel.
func (d *Draft) ClearErrors() {
	d.Errors = map[string]string{}
}
