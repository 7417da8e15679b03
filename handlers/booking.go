package handlers

import (
	"errors"
	"net/http"

	"bikeserve/models"
	"bikeserve/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the garage and washing booking wizards.
// Every route carries :flow and, past creation, the draft :id.
type BookingHandler struct {
	Flows booking.BookingFlowService
}

func NewBookingHandler(flows booking.BookingFlowService) *BookingHandler {
	return &BookingHandler{Flows: flows}
}

type draftResponse struct {
	booking.DraftView
	Degraded bool `json:"degraded"`
}

func flowParam(c *gin.Context) booking.FlowKind {
	return booking.FlowKind(c.Param("flow"))
}

// respondDraft writes the draft view. A failed step gate still returns the
// saved draft, with the error map, as 422.
func (h *BookingHandler) respondDraft(c *gin.Context, status int, d *booking.Draft, degraded bool, err error) {
	if err != nil {
		var validation *booking.ValidationError
		if d != nil && errors.As(err, &validation) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error":  validation.Message,
				"code":   "validation",
				"errors": map[string]string{validation.Field: validation.Message},
				"draft":  draftResponse{DraftView: h.Flows.View(d), Degraded: degraded},
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(status, draftResponse{DraftView: h.Flows.View(d), Degraded: degraded})
}

func (h *BookingHandler) StartDraft(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		ProviderID string `json:"providerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Flows.Start(c.Request.Context(), sess, flowParam(c), input.ProviderID)
	h.respondDraft(c, http.StatusCreated, d, false, err)
}

// GetDraft returns the draft with its offered services when they can be loaded.
func (h *BookingHandler) GetDraft(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := h.Flows.Get(c.Request.Context(), sess, flowParam(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"draft": h.Flows.View(d)}
	catalog, err := h.Flows.Catalog(c.Request.Context(), sess, flowParam(c), d.ID)
	switch {
	case err == nil:
		resp["catalog"] = catalog
		resp["degraded"] = catalog.Degraded
	case errors.Is(err, booking.ErrVehicleRequired), errors.Is(err, booking.ErrCatalogUnavailable):
		resp["catalog"] = nil
		resp["catalogError"] = err.Error()
	default:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) SelectVehicle(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var v models.Vehicle
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Flows.SelectVehicle(c.Request.Context(), sess, flowParam(c), c.Param("id"), v)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

func (h *BookingHandler) ToggleService(c *gin.Context) {
	h.toggle(c, false)
}

func (h *BookingHandler) ToggleAddOn(c *gin.Context) {
	h.toggle(c, true)
}

func (h *BookingHandler) toggle(c *gin.Context, addOn bool) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := h.Flows.ToggleItem(c.Request.Context(), sess, flowParam(c), c.Param("id"), c.Param("itemId"), addOn)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

func (h *BookingHandler) SelectSlot(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var sel models.SlotSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Flows.SelectSlot(c.Request.Context(), sess, flowParam(c), c.Param("id"), sel)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

// SelectAddress picks a saved address, or creates one when the body has no id.
func (h *BookingHandler) SelectAddress(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	d, degraded, err := h.Flows.SelectAddress(c.Request.Context(), sess, flowParam(c), c.Param("id"), a)
	h.respondDraft(c, http.StatusOK, d, degraded, err)
}

func (h *BookingHandler) UpdateSuggestion(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		Suggestion *string `json:"suggestion" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Flows.UpdateNotes(c.Request.Context(), sess, flowParam(c), c.Param("id"), input.Suggestion, nil)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

func (h *BookingHandler) UpdateEstimate(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		Estimate *bool `json:"estimate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Flows.UpdateNotes(c.Request.Context(), sess, flowParam(c), c.Param("id"), nil, input.Estimate)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

func (h *BookingHandler) Advance(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := h.Flows.Advance(c.Request.Context(), sess, flowParam(c), c.Param("id"))
	h.respondDraft(c, http.StatusOK, d, false, err)
}

// JumpBack accepts the step as a name ("select_service") or an index.
func (h *BookingHandler) JumpBack(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	target, valid := booking.ParseStep(c.Param("step"))
	if !valid {
		badRequest(c, errors.New("unknown step "+c.Param("step")))
		return
	}
	d, err := h.Flows.JumpBack(c.Request.Context(), sess, flowParam(c), c.Param("id"), target)
	h.respondDraft(c, http.StatusOK, d, false, err)
}

// DismissErrors clears the validation panel.
func (h *BookingHandler) DismissErrors(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := h.Flows.DismissErrors(c.Request.Context(), sess, flowParam(c), c.Param("id"))
	h.respondDraft(c, http.StatusOK, d, false, err)
}

// Confirm creates the booking upstream. Repeating it after success returns the same result.
func (h *BookingHandler) Confirm(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := h.Flows.Confirm(c.Request.Context(), sess, flowParam(c), c.Param("id"))
	if err != nil {
		getLogger(c).Warn("booking confirmation rejected", zap.String("draftId", c.Param("id")), zap.Error(err))
	}
	h.respondDraft(c, http.StatusOK, d, false, err)
}

func (h *BookingHandler) CancelDraft(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.Flows.Cancel(c.Request.Context(), sess, flowParam(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
