package handlers

import (
	"net/http"
	"strings"

	"bikeserve/models"
	"bikeserve/services/api"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves read-only marketplace listings.
type CatalogHandler struct {
	Marketplace api.MarketplaceService
}

func NewCatalogHandler(m api.MarketplaceService) *CatalogHandler {
	return &CatalogHandler{Marketplace: m}
}

func (h *CatalogHandler) ListCities(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondResult(c, http.StatusOK, "cities", h.Marketplace.Cities(c.Request.Context(), sess))
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondResult(c, http.StatusOK, "brands", h.Marketplace.BikeBrands(c.Request.Context(), sess))
}

func (h *CatalogHandler) ListModels(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondResult(c, http.StatusOK, "models", h.Marketplace.BikeModels(c.Request.Context(), sess, c.Param("id")))
}

// Landing returns the landing page for ?city=, defaulting to the session's city.
func (h *CatalogHandler) Landing(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		city = sess.SelectedCity
	}
	respondResult(c, http.StatusOK, "landing", h.Marketplace.LandingContent(c.Request.Context(), sess, city))
}

// SearchProviders lists garages or washing centers near the query position,
// falling back to the session's city and coordinates.
func (h *CatalogHandler) SearchProviders(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var q models.ProviderSearch
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.City == "" {
		q.City = sess.SelectedCity
	}
	if q.Latitude == 0 && q.Longitude == 0 {
		q.Latitude, q.Longitude = sess.Latitude, sess.Longitude
	}

	switch c.Param("flow") {
	case models.ProviderGarage:
		respondResult(c, http.StatusOK, "providers", h.Marketplace.SearchGarages(c.Request.Context(), sess, q))
	case models.ProviderWashing:
		respondResult(c, http.StatusOK, "providers", h.Marketplace.SearchWashingCenters(c.Request.Context(), sess, q))
	default:
		respondError(c, errUnknownProviderKind)
	}
}
