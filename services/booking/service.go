package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bikeserve/models"
	"bikeserve/services/api"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	confirmLockTTL   = 30 * time.Second
	maxSuggestionLen = 500
)

// Notifier is told about confirmed bookings. Failures never undo a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, c models.BookingConfirmation) error
}

// LocalIDResolver maps ids synthesized offline to the ids the upstream assigned later.
type LocalIDResolver interface {
	RemoteID(ctx context.Context, localID string) (string, error)
}

// BookingFlowService drives the booking wizard for every flow kind.
type BookingFlowService interface {
	Start(ctx context.Context, sess *models.Session, flow FlowKind, providerID string) (*Draft, error)
	Get(ctx context.Context, sess *models.Session, flow FlowKind, id string) (*Draft, error)
	View(d *Draft) DraftView
	Catalog(ctx context.Context, sess *models.Session, flow FlowKind, id string) (*CatalogView, error)
	SelectVehicle(ctx context.Context, sess *models.Session, flow FlowKind, id string, v models.Vehicle) (*Draft, error)
	ToggleItem(ctx context.Context, sess *models.Session, flow FlowKind, id, itemID string, addOn bool) (*Draft, error)
	SelectSlot(ctx context.Context, sess *models.Session, flow FlowKind, id string, sel models.SlotSelection) (*Draft, error)
	SelectAddress(ctx context.Context, sess *models.Session, flow FlowKind, id string, a models.Address) (*Draft, bool, error)
	UpdateNotes(ctx context.Context, sess *models.Session, flow FlowKind, id string, suggestion *string, estimate *bool) (*Draft, error)
	Advance(ctx context.Context, sess *models.Session, flow FlowKind, id string) (*Draft, error)
	JumpBack(ctx context.Context, sess *models.Session, flow FlowKind, id string, target Step) (*Draft, error)
	DismissErrors(ctx context.Context, sess *models.Session, flow FlowKind, id string) (*Draft, error)
	Confirm(ctx context.Context, sess *models.Session, flow FlowKind, id string) (*Draft, error)
	Cancel(ctx context.Context, sess *models.Session, flow FlowKind, id string) error
}

// DefaultFlowService implements BookingFlowService.
type DefaultFlowService struct {
	Marketplace    api.MarketplaceService
	Drafts         DraftStore
	Flows          map[FlowKind]FlowConfig
	Notifier       Notifier        // optional
	LocalIDs       LocalIDResolver // optional
	DuplicateMatch string
	Now            func() time.Time
	Logger         *zap.Logger
}

// NewFlowService wires the garage and washing flows.
func NewFlowService(m api.MarketplaceService, drafts DraftStore, promo, duplicateMatch string, notifier Notifier, logger *zap.Logger) *DefaultFlowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultFlowService{
		Marketplace: m,
		Drafts:      drafts,
		Flows: map[FlowKind]FlowConfig{
			FlowGarage:  GarageFlow(promo),
			FlowWashing: WashingFlow(promo),
		},
		Notifier:       notifier,
		DuplicateMatch: duplicateMatch,
		Now:            time.Now,
		Logger:         logger,
	}
}

// DraftView is the draft plus everything derived from it.
type DraftView struct {
	*Draft
	StepName   string            `json:"stepName"`
	Total      float64           `json:"total"`
	TotalLabel string            `json:"totalLabel"`
	ServiceIDs []string          `json:"serviceIds"`
	SlotWindow []models.DaySlots `json:"slotWindow"`
}

// CatalogItemView is a service line with its parsed includes.
type CatalogItemView struct {
	models.ServiceItem
	IncludesList []string `json:"includesList"`
	Selected     bool     `json:"selected"`
}

// CatalogView lists what can be toggled in a draft.
type CatalogView struct {
	Services []CatalogItemView `json:"services"`
	AddOns   []CatalogItemView `json:"addons"`
	Degraded bool              `json:"degraded"`
}

func (s *DefaultFlowService) flow(kind FlowKind) (FlowConfig, error) {
	cfg, ok := s.Flows[kind]
	if !ok {
		return FlowConfig{}, fmt.Errorf("%w: %q", ErrUnknownFlow, kind)
	}
	return cfg, nil
}

// load fetches a draft owned by sess in the given flow.
func (s *DefaultFlowService) load(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*Draft, FlowConfig, error) {
	cfg, err := s.flow(kind)
	if err != nil {
		return nil, FlowConfig{}, err
	}
	d, err := s.Drafts.Get(ctx, id)
	if err != nil {
		return nil, FlowConfig{}, err
	}
	if d.SessionID != sess.ID || d.Flow != kind {
		return nil, FlowConfig{}, ErrDraftNotFound
	}
	return d, cfg, nil
}

func (s *DefaultFlowService) save(ctx context.Context, d *Draft) error {
	d.UpdatedAt = s.Now()
	return s.Drafts.Save(ctx, d)
}

// mutate loads an open draft, applies fn and saves it.
func (s *DefaultFlowService) mutate(ctx context.Context, sess *models.Session, kind FlowKind, id string, fn func(*Draft, FlowConfig) error) (*Draft, error) {
	d, cfg, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if d.Completed {
		return d, ErrFlowCompleted
	}
	if err := fn(d, cfg); err != nil {
		return d, err
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DefaultFlowService) Start(ctx context.Context, sess *models.Session, kind FlowKind, providerID string) (*Draft, error) {
	if _, err := s.flow(kind); err != nil {
		return nil, err
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrMissingProvider
	}
	d := NewDraft(uuid.New().String(), kind, sess.ID, providerID, s.Now())
	if err := s.Drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	s.Logger.Info("booking draft started",
		zap.String("draftId", d.ID),
		zap.String("flow", string(kind)),
		zap.String("providerId", providerID),
	)
	return d, nil
}

func (s *DefaultFlowService) Get(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*Draft, error) {
	d, _, err := s.load(ctx, sess, kind, id)
	return d, err
}

func (s *DefaultFlowService) View(d *Draft) DraftView {
	total := d.Total()
	return DraftView{
		Draft:      d,
		StepName:   d.ActiveStep.String(),
		Total:      total,
		TotalLabel: fmt.Sprintf("%.2f", total),
		ServiceIDs: d.SelectedIDs(),
		SlotWindow: FilterSlots(GenerateSlotWindow(s.Now())),
	}
}

// fetchCatalog loads the provider's services for the draft.
func (s *DefaultFlowService) fetchCatalog(ctx context.Context, sess *models.Session, d *Draft, cfg FlowConfig) (api.Result[models.ServiceCatalog], error) {
	if cfg.CatalogNeedsVehicle && d.Vehicle == nil {
		return api.Result[models.ServiceCatalog]{}, ErrVehicleRequired
	}
	res := cfg.Catalog(ctx, s.Marketplace, sess, d)
	if res.Failed() {
		s.Logger.Error("failed to load services", zap.String("draftId", d.ID), zap.Error(res.Err))
		return res, fmt.Errorf("%w: %v", ErrCatalogUnavailable, res.Err)
	}
	return res, nil
}

func (s *DefaultFlowService) Catalog(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*CatalogView, error) {
	d, cfg, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	res, err := s.fetchCatalog(ctx, sess, d, cfg)
	if err != nil {
		return nil, err
	}
	view := func(items, selected []models.ServiceItem) []CatalogItemView {
		out := make([]CatalogItemView, 0, len(items))
		for _, it := range items {
			out = append(out, CatalogItemView{
				ServiceItem:  it,
				IncludesList: ParseIncludes(it.Includes),
				Selected:     containsItem(selected, string(it.ID)),
			})
		}
		return out
	}
	return &CatalogView{
		Services: view(res.Data.Services, d.Services),
		AddOns:   view(res.Data.AddOns, d.AddOns),
		Degraded: res.Degraded(),
	}, nil
}

func (s *DefaultFlowService) SelectVehicle(ctx context.Context, sess *models.Session, kind FlowKind, id string, v models.Vehicle) (*Draft, error) {
	return s.mutate(ctx, sess, kind, id, func(d *Draft, cfg FlowConfig) error {
		if v.ID == "" {
			return &ValidationError{Field: "bike", Message: "Please select a bike to continue"}
		}
		// Services are priced per engine class, so a different class invalidates them.
		if cfg.CatalogNeedsVehicle && d.Vehicle != nil && d.Vehicle.CC != v.CC {
			d.Services = []models.ServiceItem{}
			d.AddOns = []models.ServiceItem{}
		}
		d.AttachVehicle(v)
		return nil
	})
}

func (s *DefaultFlowService) ToggleItem(ctx context.Context, sess *models.Session, kind FlowKind, id, itemID string, addOn bool) (*Draft, error) {
	return s.mutate(ctx, sess, kind, id, func(d *Draft, cfg FlowConfig) error {
		selected := d.Services
		if addOn {
			selected = d.AddOns
		}
		if containsItem(selected, itemID) {
			item := models.ServiceItem{ID: models.FlexString(itemID)}
			if addOn {
				d.ToggleAddOn(item)
			} else {
				d.ToggleService(item)
			}
			return nil
		}

		res, err := s.fetchCatalog(ctx, sess, d, cfg)
		if err != nil {
			return err
		}
		list := res.Data.Services
		if addOn {
			list = res.Data.AddOns
		}
		for _, it := range list {
			if string(it.ID) == itemID {
				if addOn {
					d.ToggleAddOn(it)
				} else {
					d.ToggleService(it)
				}
				return nil
			}
		}
		return ErrUnknownItem
	})
}

func (s *DefaultFlowService) SelectSlot(ctx context.Context, sess *models.Session, kind FlowKind, id string, sel models.SlotSelection) (*Draft, error) {
	return s.mutate(ctx, sess, kind, id, func(d *Draft, _ FlowConfig) error {
		if !sel.Complete() {
			return &ValidationError{Field: "slot", Message: "Please select a date and time slot"}
		}
		if !SlotOffered(s.Now(), sel) {
			return ErrSlotUnavailable
		}
		d.SelectSlot(sel)
		return nil
	})
}

// SelectAddress attaches an existing address, or creates one when it has no id.
// The bool reports whether the address only exists locally.
func (s *DefaultFlowService) SelectAddress(ctx context.Context, sess *models.Session, kind FlowKind, id string, a models.Address) (*Draft, bool, error) {
	degraded := false
	d, err := s.mutate(ctx, sess, kind, id, func(d *Draft, _ FlowConfig) error {
		if a.ID != "" {
			d.AttachAddress(a)
			return nil
		}
		if strings.TrimSpace(a.Line) == "" || strings.TrimSpace(a.City) == "" || a.Pincode == "" {
			return &ValidationError{Field: "address", Message: "Address line, city and pincode are required"}
		}
		res := s.Marketplace.AddAddress(ctx, sess, a, true)
		if res.Failed() {
			return fmt.Errorf("failed to save address: %w", res.Err)
		}
		degraded = res.Degraded()
		d.AttachAddress(res.Data)
		return nil
	})
	return d, degraded, err
}

func (s *DefaultFlowService) UpdateNotes(ctx context.Context, sess *models.Session, kind FlowKind, id string, suggestion *string, estimate *bool) (*Draft, error) {
	return s.mutate(ctx, sess, kind, id, func(d *Draft, _ FlowConfig) error {
		if suggestion != nil {
			text := strings.TrimSpace(*suggestion)
			if len(text) > maxSuggestionLen {
				return &ValidationError{Field: "suggestion", Message: fmt.Sprintf("Please keep notes under %d characters", maxSuggestionLen)}
			}
			d.Suggestion = text
		}
		if estimate != nil {
			d.Estimate = *estimate
		}
		return nil
	})
}

// Advance persists the draft even when the gate rejects, so the error map survives.
func (s *DefaultFlowService) Advance(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*Draft, error) {
	d, cfg, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	advErr := d.Advance(cfg)
	if advErr == ErrTerminalStep || advErr == ErrFlowCompleted {
		return d, advErr
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, advErr
}

func (s *DefaultFlowService) JumpBack(ctx context.Context, sess *models.Session, kind FlowKind, id string, target Step) (*Draft, error) {
	d, _, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if !d.JumpBack(target) {
		return d, nil
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DismissErrors empties the draft's error panel without moving the wizard.
func (s *DefaultFlowService) DismissErrors(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*Draft, error) {
	d, _, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if len(d.Errors) == 0 {
		return d, nil
	}
	d.ClearErrors()
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Confirm submits the booking once. A second confirm of a completed draft returns it unchanged.
func (s *DefaultFlowService) Confirm(ctx context.Context, sess *models.Session, kind FlowKind, id string) (*Draft, error) {
	d, cfg, err := s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if d.Completed {
		return d, nil
	}
	if d.ActiveStep != StepSummary {
		return d, ErrNotAtSummary
	}
	if !sess.LoggedIn() {
		return d, ErrLoginRequired
	}

	locked, err := s.Drafts.Lock(ctx, d.ID, confirmLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return d, ErrConfirmInFlight
	}
	defer func() {
		if err := s.Drafts.Unlock(context.WithoutCancel(ctx), id); err != nil {
			s.Logger.Warn("failed to release draft lock", zap.String("draftId", id), zap.Error(err))
		}
	}()

	// Another confirm may have completed between the first read and the lock.
	d, cfg, err = s.load(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if d.Completed {
		return d, nil
	}
	if d.ActiveStep != StepSummary {
		return d, ErrNotAtSummary
	}
	if d.Slot == nil || !SlotOffered(s.Now(), *d.Slot) {
		return d, ErrSlotUnavailable
	}

	if err := s.resolveLocalIDs(ctx, d); err != nil {
		return d, err
	}
	payload, err := BuildPayload(d, cfg)
	if err != nil {
		return d, err
	}

	res, err := s.Marketplace.CreateBooking(ctx, sess, payload)
	if err != nil {
		flowErr := TranslateBookingError(err, s.DuplicateMatch)
		s.Logger.Error("create booking failed",
			zap.String("draftId", d.ID),
			zap.String("code", flowErr.Code),
			zap.Error(err),
		)
		return d, flowErr
	}

	completeFromResponse(d, res, payload)
	if err := s.save(ctx, d); err != nil {
		// The booking exists upstream; surface it even if the draft cannot be updated.
		s.Logger.Error("failed to persist confirmed draft", zap.String("draftId", d.ID), zap.Error(err))
	}
	s.Logger.Info("booking confirmed",
		zap.String("draftId", d.ID),
		zap.String("bookingId", string(d.Result.BookingID)),
		zap.String("amount", string(d.Result.Amount)),
	)

	if s.Notifier != nil {
		c := models.BookingConfirmation{
			SessionID:   sess.ID,
			FCMToken:    sess.FCMToken,
			Flow:        string(d.Flow),
			BookingID:   string(d.Result.BookingID),
			ProviderID:  d.ProviderID,
			Date:        d.Result.Date,
			Slot:        d.Result.Slot,
			Amount:      string(d.Result.Amount),
			ConfirmedAt: s.Now(),
		}
		if err := s.Notifier.BookingConfirmed(ctx, c); err != nil {
			s.Logger.Warn("failed to queue booking notification", zap.String("draftId", d.ID), zap.Error(err))
		}
	}
	return d, nil
}

// resolveLocalIDs swaps offline vehicle and address ids for their synced upstream ids.
func (s *DefaultFlowService) resolveLocalIDs(ctx context.Context, d *Draft) error {
	resolve := func(id *models.FlexString) error {
		if !strings.HasPrefix(string(*id), api.LocalIDPrefix) {
			return nil
		}
		if s.LocalIDs == nil {
			return ErrPendingSync
		}
		remote, err := s.LocalIDs.RemoteID(ctx, string(*id))
		if err != nil {
			s.Logger.Info("local id not synced yet", zap.String("localId", string(*id)), zap.Error(err))
			return ErrPendingSync
		}
		*id = models.FlexString(remote)
		return nil
	}
	if d.Vehicle != nil {
		if err := resolve(&d.Vehicle.ID); err != nil {
			return err
		}
	}
	if d.Address != nil {
		if err := resolve(&d.Address.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *DefaultFlowService) Cancel(ctx context.Context, sess *models.Session, kind FlowKind, id string) error {
	if _, _, err := s.load(ctx, sess, kind, id); err != nil {
		return err
	}
	return s.Drafts.Delete(ctx, id)
}
