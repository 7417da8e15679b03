package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bikeserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSubscriber is returned for subscriber-scoped calls on an anonymous session.
var ErrNoSubscriber = errors.New("session has no subscriber, log in first")

// LocalIDPrefix marks ids synthesized while the upstream was unreachable.
const LocalIDPrefix = "local-"

// PendingRecorder stores optimistic creates for later replay.
type PendingRecorder interface {
	Insert(ctx context.Context, rec *models.PendingSync) error
}

// MarketplaceService is the typed surface of the upstream marketplace API.
type MarketplaceService interface {
	Vehicles(ctx context.Context, sess *models.Session) Result[[]models.Vehicle]
	AddVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) Result[models.Vehicle]
	CreateVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) (models.Vehicle, error)
	Addresses(ctx context.Context, sess *models.Session) Result[[]models.Address]
	AddAddress(ctx context.Context, sess *models.Session, a models.Address, optimistic bool) Result[models.Address]
	CreateAddress(ctx context.Context, sess *models.Session, a models.Address) (models.Address, error)
	GarageServices(ctx context.Context, sess *models.Session, garageID, cc string) Result[models.ServiceCatalog]
	WashingServices(ctx context.Context, sess *models.Session, centerID string) Result[models.ServiceCatalog]
	CreateBooking(ctx context.Context, sess *models.Session, payload map[string]any) (*models.BookingResult, error)
	BikeBrands(ctx context.Context, sess *models.Session) Result[[]models.BikeBrand]
	BikeModels(ctx context.Context, sess *models.Session, brandID string) Result[[]models.BikeModel]
	Cities(ctx context.Context, sess *models.Session) Result[[]models.City]
	SearchGarages(ctx context.Context, sess *models.Session, q models.ProviderSearch) Result[[]models.Provider]
	SearchWashingCenters(ctx context.Context, sess *models.Session, q models.ProviderSearch) Result[[]models.Provider]
	LandingContent(ctx context.Context, sess *models.Session, city string) Result[models.LandingContent]
	SendOTP(ctx context.Context, sess *models.Session, mobile string) error
	VerifyOTP(ctx context.Context, sess *models.Session, mobile, otp string) (*models.OTPVerifyResult, error)
}

// DefaultMarketplaceService implements MarketplaceService over Client.
type DefaultMarketplaceService struct {
	Client  *Client
	Policy  FallbackPolicy
	Pending PendingRecorder // optional; without it optimistic creates are not replayed
	Logger  *zap.Logger
}

// NewMarketplaceService wires a DefaultMarketplaceService.
func NewMarketplaceService(client *Client, policy FallbackPolicy, pending PendingRecorder, logger *zap.Logger) *DefaultMarketplaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultMarketplaceService{Client: client, Policy: policy, Pending: pending, Logger: logger}
}

func (s *DefaultMarketplaceService) Vehicles(ctx context.Context, sess *models.Session) Result[[]models.Vehicle] {
	if sess == nil || sess.SubscriberID == "" {
		return Result[[]models.Vehicle]{Source: SourceRemote, Err: ErrNoSubscriber}
	}
	return Fetch(ctx, s.Policy, s.Logger, ResourceVehicles,
		func(ctx context.Context) ([]models.Vehicle, error) {
			var out []models.Vehicle
			err := s.Client.Do(ctx, sess, http.MethodGet, "/vehicle/getBySubscriber/"+url.PathEscape(sess.SubscriberID), nil, &out)
			return out, err
		},
		func() []models.Vehicle { return mockVehicles(sess.SubscriberID) },
	)
}

// CreateVehicle calls the upstream without any fallback.
func (s *DefaultMarketplaceService) CreateVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) (models.Vehicle, error) {
	if sess == nil || sess.SubscriberID == "" {
		return models.Vehicle{}, ErrNoSubscriber
	}
	v.SubscriberID = models.FlexString(sess.SubscriberID)
	v.ID = ""
	v.Local = false

	var created models.Vehicle
	if err := s.Client.Do(ctx, sess, http.MethodPost, "/vehicle/add", v, &created); err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to add vehicle: %w", err)
	}
	if created.ID == "" {
		return models.Vehicle{}, errors.New("failed to add vehicle: upstream returned no id")
	}
	v.ID = created.ID
	if created.ImageURL != "" {
		v.ImageURL = created.ImageURL
	}
	return v, nil
}

// AddVehicle creates a vehicle; when the upstream is down and the policy allows it,
// a local id is synthesized and the create is queued for replay.
func (s *DefaultMarketplaceService) AddVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) Result[models.Vehicle] {
	if sess == nil || sess.SubscriberID == "" {
		return Result[models.Vehicle]{Source: SourceRemote, Err: ErrNoSubscriber}
	}
	return Fetch(ctx, s.Policy, s.Logger, ResourceVehicles,
		func(ctx context.Context) (models.Vehicle, error) { return s.CreateVehicle(ctx, sess, v) },
		func() models.Vehicle {
			local := v
			local.ID = models.FlexString(LocalIDPrefix + uuid.New().String())
			local.SubscriberID = models.FlexString(sess.SubscriberID)
			local.Local = true
			s.recordPending(ctx, &models.PendingSync{
				Kind:      models.SyncKindVehicle,
				LocalID:   string(local.ID),
				SessionID: sess.ID,
				Vehicle:   &local,
			})
			return local
		},
	)
}

func (s *DefaultMarketplaceService) Addresses(ctx context.Context, sess *models.Session) Result[[]models.Address] {
	if sess == nil || sess.SubscriberID == "" {
		return Result[[]models.Address]{Source: SourceRemote, Err: ErrNoSubscriber}
	}
	return Fetch(ctx, s.Policy, s.Logger, ResourceAddresses,
		func(ctx context.Context) ([]models.Address, error) {
			var out []models.Address
			err := s.Client.Do(ctx, sess, http.MethodGet, "/address/getBySubscriber/"+url.PathEscape(sess.SubscriberID), nil, &out)
			return out, err
		},
		func() []models.Address { return mockAddresses(sess.SubscriberID, sess.SelectedCity) },
	)
}

// CreateAddress calls the upstream without any fallback.
func (s *DefaultMarketplaceService) CreateAddress(ctx context.Context, sess *models.Session, a models.Address) (models.Address, error) {
	if sess == nil || sess.SubscriberID == "" {
		return models.Address{}, ErrNoSubscriber
	}
	a.SubscriberID = models.FlexString(sess.SubscriberID)
	a.ID = ""
	a.Local = false

	var created models.Address
	if err := s.Client.Do(ctx, sess, http.MethodPost, "/address/add", a, &created); err != nil {
		return models.Address{}, fmt.Errorf("failed to add address: %w", err)
	}
	if created.ID == "" {
		return models.Address{}, errors.New("failed to add address: upstream returned no id")
	}
	a.ID = created.ID
	return a, nil
}

// AddAddress creates an address. Only optimistic callers (the booking flows) may get a local id.
func (s *DefaultMarketplaceService) AddAddress(ctx context.Context, sess *models.Session, a models.Address, optimistic bool) Result[models.Address] {
	if sess == nil || sess.SubscriberID == "" {
		return Result[models.Address]{Source: SourceRemote, Err: ErrNoSubscriber}
	}
	remote := func(ctx context.Context) (models.Address, error) { return s.CreateAddress(ctx, sess, a) }
	if !optimistic {
		return Fetch(ctx, s.Policy, s.Logger, ResourceAddresses, remote, nil)
	}
	return Fetch(ctx, s.Policy, s.Logger, ResourceAddresses, remote,
		func() models.Address {
			local := a
			local.ID = models.FlexString(LocalIDPrefix + uuid.New().String())
			local.SubscriberID = models.FlexString(sess.SubscriberID)
			local.Local = true
			s.recordPending(ctx, &models.PendingSync{
				Kind:      models.SyncKindAddress,
				LocalID:   string(local.ID),
				SessionID: sess.ID,
				Address:   &local,
			})
			return local
		},
	)
}

func (s *DefaultMarketplaceService) recordPending(ctx context.Context, rec *models.PendingSync) {
	if s.Pending == nil {
		s.Logger.Warn("optimistic create not queued, no outbox configured", zap.String("localId", rec.LocalID))
		return
	}
	now := time.Now()
	rec.ID = uuid.New().String()
	rec.Status = models.SyncStatusPending
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.Pending.Insert(ctx, rec); err != nil {
		s.Logger.Error("failed to queue optimistic create", zap.String("localId", rec.LocalID), zap.Error(err))
	}
}

func (s *DefaultMarketplaceService) GarageServices(ctx context.Context, sess *models.Session, garageID, cc string) Result[models.ServiceCatalog] {
	q := url.Values{}
	q.Set("garageId", garageID)
	q.Set("cc", cc)
	return Fetch(ctx, s.Policy, s.Logger, ResourceServices,
		func(ctx context.Context) (models.ServiceCatalog, error) {
			return s.fetchCatalog(ctx, sess, "/garage/getServices?"+q.Encode())
		},
		func() models.ServiceCatalog { return mockGarageCatalog(cc) },
	)
}

func (s *DefaultMarketplaceService) WashingServices(ctx context.Context, sess *models.Session, centerID string) Result[models.ServiceCatalog] {
	q := url.Values{}
	q.Set("centerId", centerID)
	return Fetch(ctx, s.Policy, s.Logger, ResourceServices,
		func(ctx context.Context) (models.ServiceCatalog, error) {
			return s.fetchCatalog(ctx, sess, "/washing/getServices?"+q.Encode())
		},
		mockWashingCatalog,
	)
}

// fetchCatalog accepts either {services, addons} or a bare list of services.
func (s *DefaultMarketplaceService) fetchCatalog(ctx context.Context, sess *models.Session, path string) (models.ServiceCatalog, error) {
	var raw json.RawMessage
	if err := s.Client.Do(ctx, sess, http.MethodGet, path, nil, &raw); err != nil {
		return models.ServiceCatalog{}, err
	}
	var list []models.ServiceItem
	if err := json.Unmarshal(raw, &list); err == nil {
		return models.ServiceCatalog{Services: list}, nil
	}
	var catalog models.ServiceCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return models.ServiceCatalog{}, fmt.Errorf("unexpected service catalog shape: %w", err)
	}
	return catalog, nil
}

// CreateBooking never falls back.
func (s *DefaultMarketplaceService) CreateBooking(ctx context.Context, sess *models.Session, payload map[string]any) (*models.BookingResult, error) {
	var res models.BookingResult
	if err := s.Client.Do(ctx, sess, http.MethodPost, "/booking/create", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *DefaultMarketplaceService) BikeBrands(ctx context.Context, sess *models.Session) Result[[]models.BikeBrand] {
	return Fetch(ctx, s.Policy, s.Logger, ResourceCatalog,
		func(ctx context.Context) ([]models.BikeBrand, error) {
			var out []models.BikeBrand
			err := s.Client.Do(ctx, sess, http.MethodGet, "/bike/brands", nil, &out)
			return out, err
		},
		mockBrands,
	)
}

func (s *DefaultMarketplaceService) BikeModels(ctx context.Context, sess *models.Session, brandID string) Result[[]models.BikeModel] {
	q := url.Values{}
	q.Set("brandId", brandID)
	return Fetch(ctx, s.Policy, s.Logger, ResourceCatalog,
		func(ctx context.Context) ([]models.BikeModel, error) {
			var out []models.BikeModel
			err := s.Client.Do(ctx, sess, http.MethodGet, "/bike/models?"+q.Encode(), nil, &out)
			return out, err
		},
		func() []models.BikeModel { return mockModels(brandID) },
	)
}

func (s *DefaultMarketplaceService) Cities(ctx context.Context, sess *models.Session) Result[[]models.City] {
	return Fetch(ctx, s.Policy, s.Logger, ResourceCities,
		func(ctx context.Context) ([]models.City, error) {
			var out []models.City
			err := s.Client.Do(ctx, sess, http.MethodGet, "/city/list", nil, &out)
			return out, err
		},
		mockCities,
	)
}

func searchQuery(q models.ProviderSearch) string {
	v := url.Values{}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.Latitude != 0 || q.Longitude != 0 {
		v.Set("lat", strconv.FormatFloat(q.Latitude, 'f', 6, 64))
		v.Set("lng", strconv.FormatFloat(q.Longitude, 'f', 6, 64))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	return v.Encode()
}

func (s *DefaultMarketplaceService) SearchGarages(ctx context.Context, sess *models.Session, q models.ProviderSearch) Result[[]models.Provider] {
	return Fetch(ctx, s.Policy, s.Logger, ResourceGarages,
		func(ctx context.Context) ([]models.Provider, error) {
			var out []models.Provider
			err := s.Client.Do(ctx, sess, http.MethodGet, "/garage/search?"+searchQuery(q), nil, &out)
			for i := range out {
				out[i].Kind = models.ProviderGarage
			}
			return out, err
		},
		func() []models.Provider { return mockProviders(models.ProviderGarage, q) },
	)
}

func (s *DefaultMarketplaceService) SearchWashingCenters(ctx context.Context, sess *models.Session, q models.ProviderSearch) Result[[]models.Provider] {
	return Fetch(ctx, s.Policy, s.Logger, ResourceWashing,
		func(ctx context.Context) ([]models.Provider, error) {
			var out []models.Provider
			err := s.Client.Do(ctx, sess, http.MethodGet, "/washing/search?"+searchQuery(q), nil, &out)
			for i := range out {
				out[i].Kind = models.ProviderWashing
			}
			return out, err
		},
		func() []models.Provider { return mockProviders(models.ProviderWashing, q) },
	)
}

func (s *DefaultMarketplaceService) LandingContent(ctx context.Context, sess *models.Session, city string) Result[models.LandingContent] {
	q := url.Values{}
	q.Set("city", city)
	return Fetch(ctx, s.Policy, s.Logger, ResourceLanding,
		func(ctx context.Context) (models.LandingContent, error) {
			var out models.LandingContent
			err := s.Client.Do(ctx, sess, http.MethodGet, "/landing/content?"+q.Encode(), nil, &out)
			return out, err
		},
		func() models.LandingContent { return mockLanding(city) },
	)
}

// SendOTP never falls back.
func (s *DefaultMarketplaceService) SendOTP(ctx context.Context, sess *models.Session, mobile string) error {
	body := map[string]string{"mobileNumber": mobile}
	if err := s.Client.Do(ctx, sess, http.MethodPost, "/otp/send", body, nil); err != nil {
		return fmt.Errorf("failed to send OTP: %w", err)
	}
	return nil
}

// VerifyOTP never falls back.
func (s *DefaultMarketplaceService) VerifyOTP(ctx context.Context, sess *models.Session, mobile, otp string) (*models.OTPVerifyResult, error) {
	body := map[string]string{"mobileNumber": mobile, "otp": otp}
	var res models.OTPVerifyResult
	if err := s.Client.Do(ctx, sess, http.MethodPost, "/otp/verify", body, &res); err != nil {
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if res.Token == "" {
		return nil, errors.New("failed to verify OTP: upstream returned no token")
	}
	return &res, nil
}
