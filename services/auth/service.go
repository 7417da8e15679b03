package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"bikeserve/models"
	"bikeserve/services/api"
	"bikeserve/services/session"

	"go.uber.org/zap"
)

var (
	ErrInvalidMobile = errors.New("enter a valid mobile number")
	ErrInvalidOTP    = errors.New("enter the OTP sent to your phone")
	ErrOTPNotSent    = errors.New("request an OTP for this number first")
	ErrSendFailed    = errors.New("could not send OTP, please try again")
	ErrVerifyFailed  = errors.New("OTP verification failed, please try again")
)

var (
	mobileRe = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
	otpRe    = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// LoginResult is what a successful verification hands back to the client.
type LoginResult struct {
	Session models.SessionView    `json:"session"`
	Intent  *models.BookingIntent `json:"resumeIntent,omitempty"`
}

// OTPService logs a session in through the upstream OTP endpoints.
type OTPService interface {
	SendOTP(ctx context.Context, sess *models.Session, mobile string) error
	VerifyOTP(ctx context.Context, sess *models.Session, otp string) (*LoginResult, error)
}

type DefaultOTPService struct {
	Marketplace api.MarketplaceService
	Sessions    *session.Service
	Logger      *zap.Logger
}

func NewOTPService(m api.MarketplaceService, sessions *session.Service, logger *zap.Logger) *DefaultOTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultOTPService{Marketplace: m, Sessions: sessions, Logger: logger}
}

// NormalizeMobile strips spaces and dashes and checks the result.
func NormalizeMobile(mobile string) (string, error) {
	m := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(mobile))
	if !mobileRe.MatchString(m) {
		return "", ErrInvalidMobile
	}
	return m, nil
}

// SendOTP asks the upstream to text a code and remembers the number on the session.
func (s *DefaultOTPService) SendOTP(ctx context.Context, sess *models.Session, mobile string) error {
	m, err := NormalizeMobile(mobile)
	if err != nil {
		return err
	}
	if err := s.Marketplace.SendOTP(ctx, sess, m); err != nil {
		s.Logger.Error("OTP send failed", zap.String("sessionId", sess.ID), zap.Error(err))
		return ErrSendFailed
	}
	sess.MobileNumber = m
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	s.Logger.Info("OTP sent", zap.String("sessionId", sess.ID))
	return nil
}

// VerifyOTP checks the code for the session's pending number and logs the session in.
// The session is left untouched on failure.
func (s *DefaultOTPService) VerifyOTP(ctx context.Context, sess *models.Session, otp string) (*LoginResult, error) {
	if sess.MobileNumber == "" {
		return nil, ErrOTPNotSent
	}
	otp = strings.TrimSpace(otp)
	if !otpRe.MatchString(otp) {
		return nil, ErrInvalidOTP
	}

	res, err := s.Marketplace.VerifyOTP(ctx, sess, sess.MobileNumber, otp)
	if err != nil {
		s.Logger.Warn("OTP verification failed", zap.String("sessionId", sess.ID), zap.Error(err))
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Status < 500 {
			return nil, ErrInvalidOTP
		}
		return nil, ErrVerifyFailed
	}

	intent, err := s.Sessions.ApplyLogin(ctx, sess, sess.MobileNumber, res)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess.View(), Intent: intent}, nil
}
