package handlers

import (
	"errors"
	"net/http"

	"bikeserve/middleware"
	"bikeserve/models"
	"bikeserve/services/api"
	"bikeserve/services/auth"
	"bikeserve/services/booking"
	"bikeserve/services/location"
	"bikeserve/services/session"
	"bikeserve/services/storage"
	"bikeserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errUnknownProviderKind = errors.New("provider kind must be garage or washing")

type errorMapping struct {
	err    error
	status int
	code   string
	field  string // set for errors shown next to a form field
}

var errorMappings = []errorMapping{
	{booking.ErrDraftNotFound, http.StatusNotFound, "draft_not_found", ""},
	{booking.ErrUnknownFlow, http.StatusNotFound, "unknown_flow", ""},
	{errUnknownProviderKind, http.StatusNotFound, "unknown_flow", ""},
	{booking.ErrUnknownItem, http.StatusNotFound, "unknown_item", ""},
	{booking.ErrMissingProvider, http.StatusBadRequest, "provider_required", ""},
	{booking.ErrTerminalStep, http.StatusConflict, "terminal_step", ""},
	{booking.ErrNotAtSummary, http.StatusConflict, "not_at_summary", ""},
	{booking.ErrFlowCompleted, http.StatusConflict, "already_confirmed", ""},
	{booking.ErrConfirmInFlight, http.StatusConflict, "confirm_in_progress", ""},
	{booking.ErrPendingSync, http.StatusConflict, "pending_sync", ""},
	{booking.ErrSlotUnavailable, http.StatusUnprocessableEntity, "validation", "slot"},
	{booking.ErrVehicleRequired, http.StatusUnprocessableEntity, "validation", "bike"},
	{booking.ErrCatalogUnavailable, http.StatusBadGateway, "services_unavailable", ""},
	{booking.ErrLoginRequired, http.StatusUnauthorized, "login_required", ""},
	{api.ErrNoSubscriber, http.StatusUnauthorized, "login_required", ""},
	{session.ErrInvalidIntent, http.StatusBadRequest, "invalid_intent", ""},
	{session.ErrSessionNotFound, http.StatusUnauthorized, "session_invalid", ""},
	{middleware.ErrNoSession, http.StatusUnauthorized, "session_required", ""},
	{auth.ErrInvalidMobile, http.StatusUnprocessableEntity, "validation", "mobile"},
	{auth.ErrInvalidOTP, http.StatusUnprocessableEntity, "validation", "otp"},
	{auth.ErrOTPNotSent, http.StatusConflict, "otp_not_sent", ""},
	{auth.ErrSendFailed, http.StatusBadGateway, "otp_send_failed", ""},
	{auth.ErrVerifyFailed, http.StatusBadGateway, "otp_verify_failed", ""},
	{location.ErrInvalidCoordinates, http.StatusUnprocessableEntity, "validation", "location"},
	{location.ErrUnknownCity, http.StatusNotFound, "unknown_city", ""},
	{storage.ErrUnsupportedType, http.StatusUnsupportedMediaType, "unsupported_type", ""},
	{storage.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large", ""},
	{storage.ErrDisabled, http.StatusServiceUnavailable, "uploads_disabled", ""},
}

// respondError maps a service error to its HTTP status and aborts the request.
func respondError(c *gin.Context, err error) {
	var validation *booking.ValidationError
	if errors.As(err, &validation) {
		utils.JSONError(c, http.StatusUnprocessableEntity, utils.ErrorResponse{
			Error:  validation.Message,
			Code:   "validation",
			Fields: map[string]string{validation.Field: validation.Message},
		})
		return
	}

	var flowErr *booking.FlowError
	if errors.As(err, &flowErr) {
		status := http.StatusBadGateway
		if flowErr.Code == booking.CodeDuplicateBooking {
			status = http.StatusConflict
		}
		utils.JSONError(c, status, utils.ErrorResponse{Error: flowErr.Message, Code: flowErr.Code})
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		resp := utils.ErrorResponse{Error: m.err.Error(), Code: m.code}
		if m.field != "" {
			resp.Fields = map[string]string{m.field: m.err.Error()}
		}
		utils.JSONError(c, m.status, resp)
		return
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		utils.JSONError(c, http.StatusBadGateway, utils.ErrorResponse{
			Error:   "The service is temporarily unavailable, please try again",
			Code:    "upstream_error",
			Details: statusErr.Error(),
		})
		return
	}

	getLogger(c).Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, utils.ErrorResponse{
		Error:   "Internal Server Error",
		Details: "An unexpected error occurred. Please try again later.",
	})
}

// upstreamError is respondError for failed marketplace reads, which are never internal errors.
func upstreamError(c *gin.Context, err error) {
	if errors.Is(err, api.ErrNoSubscriber) {
		respondError(c, err)
		return
	}
	getLogger(c).Warn("upstream read failed", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusBadGateway, utils.ErrorResponse{
		Error:   "The service is temporarily unavailable, please try again",
		Code:    "upstream_error",
		Details: err.Error(),
	})
}

// badRequest reports a body or query that could not be bound.
func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, utils.ErrorResponse{
		Error:   "invalid input",
		Code:    "bad_request",
		Details: err.Error(),
	})
}

// respondResult writes the data of a marketplace result under key, flagging canned data.
func respondResult[T any](c *gin.Context, status int, key string, res api.Result[T]) {
	if res.Failed() {
		upstreamError(c, res.Err)
		return
	}
	c.JSON(status, gin.H{key: res.Data, "degraded": res.Degraded()})
}

// currentSession fetches the request session, answering 401 when there is none.
func currentSession(c *gin.Context) (*models.Session, bool) {
	sess, err := middleware.MustSession(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}
