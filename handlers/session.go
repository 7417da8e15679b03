package handlers

import (
	"context"
	"net/http"

	"bikeserve/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionManager is the part of session.Service the HTTP layer uses.
type SessionManager interface {
	Create(ctx context.Context) (*models.Session, string, error)
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	SaveIntent(ctx context.Context, sess *models.Session, intent models.BookingIntent) error
	ClearIntent(ctx context.Context, sess *models.Session) error
	SetFCMToken(ctx context.Context, sess *models.Session, token string) error
	Logout(ctx context.Context, sess *models.Session) error
}

type SessionHandler struct {
	Sessions SessionManager
}

func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// CreateSession issues an anonymous session and its bearer token.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess, token, err := h.Sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("session issued", zap.String("sessionId", sess.ID))
	c.JSON(http.StatusCreated, gin.H{"token": token, "session": sess.View()})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

// SaveIntent remembers the booking the user started before being sent to log in.
func (h *SessionHandler) SaveIntent(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var intent models.BookingIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Sessions.SaveIntent(c.Request.Context(), sess, intent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intent": sess.BookingIntent})
}

func (h *SessionHandler) GetIntent(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"intent": sess.BookingIntent})
}

func (h *SessionHandler) ClearIntent(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.Sessions.ClearIntent(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateFCMToken registers the device push token used for booking notifications.
func (h *SessionHandler) UpdateFCMToken(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Sessions.SetFCMToken(c.Request.Context(), sess, input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}

// Logout drops the upstream credentials. The session token itself stays valid.
func (h *SessionHandler) Logout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.Sessions.Logout(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("session logged out", zap.String("sessionId", sess.ID))
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}
