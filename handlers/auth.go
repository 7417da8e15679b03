package handlers

import (
	"net/http"

	"bikeserve/services/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	OTP auth.OTPService
}

func NewAuthHandler(otp auth.OTPService) *AuthHandler {
	return &AuthHandler{OTP: otp}
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		Mobile string `json:"mobile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.OTP.SendOTP(c.Request.Context(), sess, input.Mobile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent", "mobile": sess.MobileNumber})
}

// VerifyOTP logs the session in and hands back any booking intent saved before login.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.OTP.VerifyOTP(c.Request.Context(), sess, input.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
