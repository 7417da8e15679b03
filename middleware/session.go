package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bikeserve/models"
	"bikeserve/utils"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Authenticator resolves a bearer token to its session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// SessionMiddleware requires a valid session token and stores the session in the context.
func SessionMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, utils.ErrorResponse{
				Code:  "session_required",
				Error: "Authorization header missing or invalid",
			})
			return
		}
		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "session_invalid",
				Error:   "Session expired or invalid",
				Details: err.Error(),
			})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is present and never aborts.
func OptionalSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if sess, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(sessionKey, sess)
			}
		}
		c.Next()
	}
}

// RequireLogin rejects anonymous sessions. It must run after SessionMiddleware.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok || !sess.LoggedIn() {
			utils.JSONError(c, http.StatusUnauthorized, utils.ErrorResponse{
				Code:  "login_required",
				Error: "Please log in to continue",
			})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by SessionMiddleware.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok && sess != nil
}

// ErrNoSession is returned by MustSession when no session is attached.
var ErrNoSession = errors.New("no session in request context")

// MustSession is CurrentSession returning an error instead of a flag.
func MustSession(c *gin.Context) (*models.Session, error) {
	if sess, ok := CurrentSession(c); ok {
		return sess, nil
	}
	return nil, ErrNoSession
}
