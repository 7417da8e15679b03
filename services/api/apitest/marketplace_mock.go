// Package apitest holds test doubles for the marketplace API.
package apitest

import (
	"context"

	"bikeserve/models"
	"bikeserve/services/api"

	"github.com/stretchr/testify/mock"
)

// MockMarketplace is a testify mock of api.MarketplaceService.
type MockMarketplace struct {
	mock.Mock
}

var _ api.MarketplaceService = (*MockMarketplace)(nil)

func (m *MockMarketplace) Vehicles(ctx context.Context, sess *models.Session) api.Result[[]models.Vehicle] {
	args := m.Called(ctx, sess)
	return args.Get(0).(api.Result[[]models.Vehicle])
}

func (m *MockMarketplace) AddVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) api.Result[models.Vehicle] {
	args := m.Called(ctx, sess, v)
	return args.Get(0).(api.Result[models.Vehicle])
}

func (m *MockMarketplace) CreateVehicle(ctx context.Context, sess *models.Session, v models.Vehicle) (models.Vehicle, error) {
	args := m.Called(ctx, sess, v)
	return args.Get(0).(models.Vehicle), args.Error(1)
}

func (m *MockMarketplace) Addresses(ctx context.Context, sess *models.Session) api.Result[[]models.Address] {
	args := m.Called(ctx, sess)
	return args.Get(0).(api.Result[[]models.Address])
}

func (m *MockMarketplace) AddAddress(ctx context.Context, sess *models.Session, a models.Address, optimistic bool) api.Result[models.Address] {
	args := m.Called(ctx, sess, a, optimistic)
	return args.Get(0).(api.Result[models.Address])
}

func (m *MockMarketplace) CreateAddress(ctx context.Context, sess *models.Session, a models.Address) (models.Address, error) {
	args := m.Called(ctx, sess, a)
	return args.Get(0).(models.Address), args.Error(1)
}

func (m *MockMarketplace) GarageServices(ctx context.Context, sess *models.Session, garageID, cc string) api.Result[models.ServiceCatalog] {
	args := m.Called(ctx, sess, garageID, cc)
	return args.Get(0).(api.Result[models.ServiceCatalog])
}

func (m *MockMarketplace) WashingServices(ctx context.Context, sess *models.Session, centerID string) api.Result[models.ServiceCatalog] {
	args := m.Called(ctx, sess, centerID)
	return args.Get(0).(api.Result[models.ServiceCatalog])
}

func (m *MockMarketplace) CreateBooking(ctx context.Context, sess *models.Session, payload map[string]any) (*models.BookingResult, error) {
	args := m.Called(ctx, sess, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func (m *MockMarketplace) BikeBrands(ctx context.Context, sess *models.Session) api.Result[[]models.BikeBrand] {
	args := m.Called(ctx, sess)
	return args.Get(0).(api.Result[[]models.BikeBrand])
}

func (m *MockMarketplace) BikeModels(ctx context.Context, sess *models.Session, brandID string) api.Result[[]models.BikeModel] {
	args := m.Called(ctx, sess, brandID)
	return args.Get(0).(api.Result[[]models.BikeModel])
}

func (m *MockMarketplace) Cities(ctx context.Context, sess *models.Session) api.Result[[]models.City] {
	args := m.Called(ctx, sess)
	return args.Get(0).(api.Result[[]models.City])
}

func (m *MockMarketplace) SearchGarages(ctx context.Context, sess *models.Session, q models.ProviderSearch) api.Result[[]models.Provider] {
	args := m.Called(ctx, sess, q)
	return args.Get(0).(api.Result[[]models.Provider])
}

func (m *MockMarketplace) SearchWashingCenters(ctx context.Context, sess *models.Session, q models.ProviderSearch) api.Result[[]models.Provider] {
	args := m.Called(ctx, sess, q)
	return args.Get(0).(api.Result[[]models.Provider])
}

func (m *MockMarketplace) LandingContent(ctx context.Context, sess *models.Session, city string) api.Result[models.LandingContent] {
	args := m.Called(ctx, sess, city)
	return args.Get(0).(api.Result[models.LandingContent])
}

func (m *MockMarketplace) SendOTP(ctx context.Context, sess *models.Session, mobile string) error {
	args := m.Called(ctx, sess, mobile)
	return args.Error(0)
}

func (m *MockMarketplace) VerifyOTP(ctx context.Context, sess *models.Session, mobile, otp string) (*models.OTPVerifyResult, error) {
	args := m.Called(ctx, sess, mobile, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OTPVerifyResult), args.Error(1)
}

// Remote wraps data as a successful live result.
func Remote[T any](data T) api.Result[T] {
	return api.Result[T]{Data: data, Source: api.SourceRemote}
}

// Fallback wraps data as a degraded result.
func Fallback[T any](data T, err error) api.Result[T] {
	return api.Result[T]{Data: data, Source: api.SourceFallback, Err: err}
}

// Failure is a result with no usable data.
func Failure[T any](err error) api.Result[T] {
	return api.Result[T]{Source: api.SourceRemote, Err: err}
}
