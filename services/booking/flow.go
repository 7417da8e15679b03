package booking

import (
	"context"
	"strconv"

	"bikeserve/models"
	"bikeserve/services/api"
)

// FlowKind names a booking flow.
type FlowKind string

const (
	FlowGarage  FlowKind = "garage"
	FlowWashing FlowKind = "washing"
)

// Step is the wizard position.
type Step int

const (
	StepSelectVehicle Step = iota
	StepSelectService
	StepSlotAndAddress
	StepSummary
)

func (s Step) String() string {
	switch s {
	case StepSelectVehicle:
		return "select_vehicle"
	case StepSelectService:
		return "select_service"
	case StepSlotAndAddress:
		return "slot_and_address"
	case StepSummary:
		return "summary"
	}
	return "unknown"
}

// ParseStep accepts a step name or its index.
func ParseStep(s string) (Step, bool) {
	for st := StepSelectVehicle; st <= StepSummary; st++ {
		if s == st.String() || s == strconv.Itoa(int(st)) {
			return st, true
		}
	}
	return 0, false
}

// Gate is the precondition for leaving a step. A nil return lets the user advance.
type Gate func(d *Draft) *ValidationError

// FlowConfig describes one booking flow. Garage and washing differ only in data.
type FlowConfig struct {
	Kind        FlowKind
	ProviderKey string // payload key carrying the provider id
	ServiceType string // optional payload tag, omitted when empty
	PromoCode   string
	Gates       [StepSummary]Gate

	// CatalogNeedsVehicle is set when offered services depend on the vehicle's engine class.
	CatalogNeedsVehicle bool

	// Catalog loads the services offered for the draft's provider.
	Catalog func(ctx context.Context, m api.MarketplaceService, sess *models.Session, d *Draft) api.Result[models.ServiceCatalog]
}

func requireVehicle(msg string) Gate {
	return func(d *Draft) *ValidationError {
		if d.Vehicle == nil || d.Vehicle.ID == "" {
			return &ValidationError{Field: "bike", Message: msg}
		}
		return nil
	}
}

func requireService(msg string) Gate {
	return func(d *Draft) *ValidationError {
		if len(d.Services)+len(d.AddOns) == 0 {
			return &ValidationError{Field: "service", Message: msg}
		}
		return nil
	}
}

func requireSlotAndAddress(slotMsg, addressMsg string) Gate {
	return func(d *Draft) *ValidationError {
		if !d.Slot.Complete() {
			return &ValidationError{Field: "slot", Message: slotMsg}
		}
		if d.Address == nil || d.Address.ID == "" {
			return &ValidationError{Field: "address", Message: addressMsg}
		}
		return nil
	}
}

// GarageFlow is the garage servicing flow.
func GarageFlow(promo string) FlowConfig {
	return FlowConfig{
		Kind:        FlowGarage,
		ProviderKey: "garageid",
		PromoCode:   promo,
		Gates: [StepSummary]Gate{
			requireVehicle("Please select a bike to continue"),
			requireService("Please select at least one service"),
			requireSlotAndAddress("Please select a date and time slot", "Please select an address"),
		},
		Catalog: func(ctx context.Context, m api.MarketplaceService, sess *models.Session, d *Draft) api.Result[models.ServiceCatalog] {
			cc := ""
			if d.Vehicle != nil {
				cc = string(d.Vehicle.CC)
			}
			return m.GarageServices(ctx, sess, d.ProviderID, cc)
		},
		CatalogNeedsVehicle: true,
	}
}

// WashingFlow is the washing-center flow.
func WashingFlow(promo string) FlowConfig {
	return FlowConfig{
		Kind:        FlowWashing,
		ProviderKey: "washingcenterid",
		ServiceType: "washing",
		PromoCode:   promo,
		Gates: [StepSummary]Gate{
			requireVehicle("Please select a bike to continue"),
			requireService("Please select a wash package"),
			requireSlotAndAddress("Please select a date and time slot", "Please select a pickup address"),
		},
		Catalog: func(ctx context.Context, m api.MarketplaceService, sess *models.Session, d *Draft) api.Result[models.ServiceCatalog] {
			return m.WashingServices(ctx, sess, d.ProviderID)
		},
	}
}
