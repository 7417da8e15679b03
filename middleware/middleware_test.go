package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bikeserve/models"
	"bikeserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func sessionRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"session": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess.ID})
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddleware(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "good").Return(&models.Session{ID: "s1"}, nil)
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, errors.New("expired"))
	r := sessionRouter(SessionMiddleware(auth))

	w := get(r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":"s1"}`, w.Body.String())

	w = get(r, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session_invalid")

	w = get(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = get(r, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	auth.AssertNumberOfCalls(t, "Authenticate", 2)
}

func TestOptionalSession(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, errors.New("expired"))
	r := sessionRouter(OptionalSession(auth))

	w := get(r, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":""}`, w.Body.String())
}

func TestRequireLogin(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "anon").Return(&models.Session{ID: "s1"}, nil)
	auth.On("Authenticate", mock.Anything, "user").Return(&models.Session{ID: "s2", AuthToken: "up"}, nil)
	r := sessionRouter(SessionMiddleware(auth), RequireLogin())

	assert.Equal(t, http.StatusUnauthorized, get(r, map[string]string{"Authorization": "Bearer anon"}).Code)
	assert.Equal(t, http.StatusOK, get(r, map[string]string{"Authorization": "Bearer user"}).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(2), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	ip := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	assert.Equal(t, http.StatusNoContent, get(r, ip).Code)
	assert.Equal(t, http.StatusNoContent, get(r, ip).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, ip).Code)

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusNoContent, get(r, map[string]string{"X-Real-IP": "198.51.100.2"}).Code)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.2:1234", "198.51.100.2"},
		{"remote", nil, "192.0.2.1:5555", "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(c))
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) {
		_, exists := c.Get("logger")
		assert.True(t, exists)
		c.Status(http.StatusOK)
	})

	w := get(r, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
