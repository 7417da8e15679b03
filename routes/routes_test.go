package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bikeserve/handlers"
	"bikeserve/models"
	"bikeserve/services/api/apitest"
	"bikeserve/services/auth"
	"bikeserve/services/booking"
	"bikeserve/services/location"
	"bikeserve/services/session"
	"bikeserve/services/storage"
	"bikeserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

type testServer struct {
	router   *gin.Engine
	sessions *session.Service
	market   *apitest.MockMarketplace
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	sessions := session.NewService(session.NewMemoryStore(), time.Hour, logger)
	market := new(apitest.MockMarketplace)

	flows := booking.NewFlowService(market, booking.NewMemoryDraftStore(), "FIRSTRIDE", "already exists", nil, logger)
	flows.Now = func() time.Time { return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC) }

	hb := &handlers.HandlerBundle{
		Auth:     sessions,
		Session:  handlers.NewSessionHandler(sessions),
		Login:    handlers.NewAuthHandler(auth.NewOTPService(market, sessions, logger)),
		Location: handlers.NewLocationHandler(location.NewResolver(nil, nil, sessions, logger)),
		Catalog:  handlers.NewCatalogHandler(market),
		Profile:  handlers.NewProfileHandler(market, storage.NewPhotoService(nil, "", logger)),
		Booking:  handlers.NewBookingHandler(flows),
		Health:   handlers.NewHealthHandler(&utils.HealthMonitor{}),
	}
	r := gin.New()
	RegisterRoutes(r, hb)
	return &testServer{router: r, sessions: sessions, market: market}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login creates a session and marks it as logged in as subscriber 42.
func (s *testServer) login(t *testing.T) string {
	t.Helper()
	sess, token, err := s.sessions.Create(context.Background())
	require.NoError(t, err)
	sess.AuthToken = "upstream-token"
	sess.SubscriberID = "42"
	sess.MobileNumber = "9876543210"
	require.NoError(t, s.sessions.Save(context.Background(), sess))
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/session", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/session", "not-a-jwt", nil).Code)

	w = s.do(http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["session"].(map[string]any)["loggedIn"])

	w = s.do(http.MethodPut, "/api/session/intent", token, map[string]any{"flow": "Garage", "providerId": "g1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "garage", decode(t, w)["intent"].(map[string]any)["flow"])

	w = s.do(http.MethodPut, "/api/session/intent", token, map[string]any{"flow": "tyres", "providerId": "g1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/session/intent", token, nil)
	assert.Equal(t, "g1", decode(t, w)["intent"].(map[string]any)["providerId"])

	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/session/fcm-token", token, map[string]any{"token": "fcm-1"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/session/fcm-token", token, map[string]any{}).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/session/intent", token, nil).Code)
	w = s.do(http.MethodGet, "/api/session/intent", token, nil)
	assert.Nil(t, decode(t, w)["intent"])
}

func TestOTPLoginResumesIntent(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/session", "", nil)
	token := decode(t, w)["token"].(string)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/session/intent", token, map[string]any{"flow": "washing", "providerId": "w9"}).Code)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/auth/otp/verify", token, map[string]any{"otp": "1234"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/auth/otp/send", token, map[string]any{"mobile": "12ab"}).Code)

	s.market.On("SendOTP", mock.Anything, mock.Anything, "9876543210").Return(nil).Once()
	s.market.On("VerifyOTP", mock.Anything, mock.Anything, "9876543210", "1234").
		Return(&models.OTPVerifyResult{Token: "upstream-token", SubscriberID: "42"}, nil).Once()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/otp/send", token, map[string]any{"mobile": "98765-43210"}).Code)
	w = s.do(http.MethodPost, "/api/auth/otp/verify", token, map[string]any{"otp": "1234"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "w9", body["resumeIntent"].(map[string]any)["providerId"])
	sessView := body["session"].(map[string]any)
	assert.Equal(t, true, sessView["loggedIn"])
	assert.NotContains(t, sessView, "authToken")

	// The intent is consumed by the login.
	w = s.do(http.MethodGet, "/api/session/intent", token, nil)
	assert.Nil(t, decode(t, w)["intent"])
	s.market.AssertExpectations(t)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	anon := decode(t, s.do(http.MethodPost, "/api/session", "", nil))["token"].(string)
	w := s.do(http.MethodGet, "/api/profile/vehicles", anon, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "login_required", decode(t, w)["code"])

	token := s.login(t)
	s.market.On("Vehicles", mock.Anything, mock.Anything).
		Return(apitest.Fallback([]models.Vehicle{{ID: "7", Brand: "Honda"}}, errors.New("503"))).Once()
	w = s.do(http.MethodGet, "/api/profile/vehicles", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["degraded"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/profile/vehicles", token, map[string]any{"brand": "Honda"}).Code)

	s.market.On("AddVehicle", mock.Anything, mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
		return v.Brand == "Honda" && v.CC == "125" && v.RegistrationNumber == "MH12AB1234"
	})).Return(apitest.Remote(models.Vehicle{ID: "8", Brand: "Honda", CC: "125"})).Once()
	w = s.do(http.MethodPost, "/api/profile/vehicles", token, map[string]any{
		"brand": "Honda", "model": "Shine", "cc": 125, "registrationNumber": " mh12ab1234 ",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "8", decode(t, w)["vehicle"].(map[string]any)["id"])

	s.market.On("AddAddress", mock.Anything, mock.Anything, mock.Anything, false).
		Return(apitest.Failure[models.Address](errors.New("503"))).Once()
	w = s.do(http.MethodPost, "/api/profile/addresses", token, map[string]any{"line": "MG Road", "city": "Pune", "pincode": "411001"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	s.market.AssertExpectations(t)
}

func TestVehiclePhotoUploadDisabled(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "bike.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/vehicles/7/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodDelete, "/api/profile/vehicles/7/photo", token, nil).Code)
}

func TestLocationRoutes(t *testing.T) {
	s := newTestServer(t)
	token := decode(t, s.do(http.MethodPost, "/api/session", "", nil))["token"].(string)

	w := s.do(http.MethodPost, "/api/location/resolve", token, map[string]any{"latitude": 18.6298, "longitude": 73.7997})
	require.Equal(t, http.StatusOK, w.Code)
	loc := decode(t, w)["location"].(map[string]any)
	assert.Equal(t, "Pune", loc["city"])
	assert.Equal(t, models.LocationSourceNearest, loc["source"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/location/resolve", token, map[string]any{"latitude": 18.6}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/location/resolve", token, map[string]any{"latitude": 95, "longitude": 0}).Code)

	w = s.do(http.MethodPut, "/api/location/city", token, map[string]any{"city": "mumbai"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mumbai", decode(t, w)["session"].(map[string]any)["selectedCity"])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/location/city", token, map[string]any{"city": "Atlantis"}).Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	token := decode(t, s.do(http.MethodPost, "/api/session", "", nil))["token"].(string)

	s.market.On("BikeBrands", mock.Anything, mock.Anything).
		Return(apitest.Fallback([]models.BikeBrand{{ID: "1", Name: "Honda"}}, errors.New("timeout"))).Once()
	w := s.do(http.MethodGet, "/api/catalog/brands", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["degraded"])

	s.market.On("SearchGarages", mock.Anything, mock.Anything, mock.MatchedBy(func(q models.ProviderSearch) bool {
		return q.City == "Pune" && q.Filter == "rating"
	})).Return(apitest.Remote([]models.Provider{{ID: "g1", Name: "Speed Motors"}})).Once()
	w = s.do(http.MethodGet, "/api/providers/garage/search?city=Pune&filter=rating", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["providers"], 1)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/providers/tyres/search", token, nil).Code)
	s.market.AssertExpectations(t)
}

func TestBookingWizard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	base := "/api/booking/garage/drafts"

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/booking/tyres/drafts", token, map[string]any{"providerId": "g1"}).Code)

	w := s.do(http.MethodPost, base, token, map[string]any{"providerId": "g1"})
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode(t, w)
	id := draft["id"].(string)
	assert.Equal(t, "select_vehicle", draft["stepName"])
	assert.Len(t, draft["slotWindow"], 3)

	w = s.do(http.MethodPost, base+"/"+id+"/advance", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "bike")

	// The error panel can be dismissed without moving the wizard.
	w = s.do(http.MethodGet, base+"/"+id, token, nil)
	assert.Contains(t, decode(t, w)["draft"].(map[string]any)["errors"], "bike")
	w = s.do(http.MethodDelete, base+"/"+id+"/errors", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dismissed := decode(t, w)
	assert.Empty(t, dismissed["errors"])
	assert.Equal(t, "select_vehicle", dismissed["stepName"])
	w = s.do(http.MethodGet, base+"/"+id, token, nil)
	assert.Empty(t, decode(t, w)["draft"].(map[string]any)["errors"])

	catalog := models.ServiceCatalog{
		Services: []models.ServiceItem{{ID: "1", Name: "General Service", Price: "500", Includes: "Oil, Filter"}},
		AddOns:   []models.ServiceItem{{ID: "a1", Name: "Polish", Price: "150"}},
	}
	s.market.On("GarageServices", mock.Anything, mock.Anything, "g1", "125").Return(apitest.Remote(catalog))

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/vehicle", token, map[string]any{"id": 7, "brand": "Honda", "cc": "125"}).Code)

	w = s.do(http.MethodGet, base+"/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["catalog"])

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/"+id+"/advance", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, base+"/"+id+"/services/99", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/services/1", token, nil).Code)
	w = s.do(http.MethodPut, base+"/"+id+"/addons/a1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "650.00", decode(t, w)["totalLabel"])
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/addons/a1", token, nil).Code)

	// Jumping back keeps the selection.
	w = s.do(http.MethodPost, base+"/"+id+"/jump/select_vehicle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "select_vehicle", decode(t, w)["stepName"])
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/"+id+"/jump/checkout", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/"+id+"/advance", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/"+id+"/advance", token, nil).Code)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPut, base+"/"+id+"/slot", token, map[string]any{"date": "2024-01-20 (Sat)", "slot": "11:00 AM"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/slot", token, map[string]any{"date": "2024-01-15 (Mon)", "slot": "11:00 AM"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/address", token, map[string]any{"id": "3", "line": "MG Road", "city": "Pune", "pincode": "411001"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/suggestion", token, map[string]any{"suggestion": "Check the brakes"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+id+"/estimate", token, map[string]any{"estimate": true}).Code)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, base+"/"+id+"/confirm", token, nil).Code)
	w = s.do(http.MethodPost, base+"/"+id+"/advance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "summary", decode(t, w)["stepName"])

	s.market.On("CreateBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["garageid"] == "g1" && p["bookingamount"] == "500.00"
	})).Return(&models.BookingResult{BookingID: "BK-1"}, nil).Once()

	w = s.do(http.MethodPost, base+"/"+id+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	confirmed := decode(t, w)
	assert.Equal(t, true, confirmed["completed"])
	assert.Equal(t, "BK-1", confirmed["result"].(map[string]any)["booking_id"])

	// Confirming again returns the same booking without a second upstream call.
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/"+id+"/confirm", token, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, base+"/"+id+"/slot", token, map[string]any{"date": "2024-01-15 (Mon)", "slot": "12:00 PM"}).Code)

	// Another session cannot see the draft.
	other := s.login(t)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, base+"/"+id, other, nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base+"/"+id, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, base+"/"+id, token, nil).Code)
	s.market.AssertExpectations(t)
}

func TestBookingConfirmBeforeSummary(t *testing.T) {
	s := newTestServer(t)
	token := decode(t, s.do(http.MethodPost, "/api/session", "", nil))["token"].(string)
	id := decode(t, s.do(http.MethodPost, "/api/booking/washing/drafts", token, map[string]any{"providerId": "w1"}))["id"].(string)

	w := s.do(http.MethodPost, "/api/booking/washing/drafts/"+id+"/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_at_summary", decode(t, w)["code"])
}

func TestHealthWithoutRedis(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["status"])
}
