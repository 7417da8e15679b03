package handlers

import (
	"context"
	"net/http"

	"bikeserve/models"

	"github.com/gin-gonic/gin"
)

// LocationResolver is implemented by location.Resolver.
type LocationResolver interface {
	Resolve(ctx context.Context, sess *models.Session, lat, lon float64) (models.LocationData, error)
	SelectCity(ctx context.Context, sess *models.Session, name string) (models.City, error)
}

type LocationHandler struct {
	Resolver LocationResolver
}

func NewLocationHandler(r LocationResolver) *LocationHandler {
	return &LocationHandler{Resolver: r}
}

// ResolveLocation maps device coordinates to a city and stores it on the session.
func (h *LocationHandler) ResolveLocation(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	loc, err := h.Resolver.Resolve(c.Request.Context(), sess, *input.Latitude, *input.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc, "session": sess.View()})
}

func (h *LocationHandler) SelectCity(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		City string `json:"city" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	city, err := h.Resolver.SelectCity(c.Request.Context(), sess, input.City)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city, "session": sess.View()})
}
