package handlers

import (
	"net/http"

	"bikeserve/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

func NewHealthHandler(m *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{Monitor: m}
}

// Health reports the last probe snapshot. Redis is required; mongo and the
// upstream only degrade the service.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	if status.CheckedAt.IsZero() {
		status = h.Monitor.Check(c.Request.Context())
	}

	state := "ok"
	code := http.StatusOK
	switch {
	case !status.Redis:
		state, code = "unavailable", http.StatusServiceUnavailable
	case !status.Mongo || !status.Upstream:
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
