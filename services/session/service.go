// Package session manages the per-client values the booking flows depend on:
// upstream credentials, selected city, coordinates and the pending booking intent.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bikeserve/models"
	"bikeserve/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired session token")
	ErrInvalidIntent = errors.New("booking intent needs a known flow and a provider id")
)

var intentFlows = map[string]bool{
	models.ProviderGarage:  true,
	models.ProviderWashing: true,
}

// Service issues session tokens and mutates sessions.
type Service struct {
	Store  Store
	TTL    time.Duration
	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(store Store, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: store, TTL: ttl, Now: time.Now, Logger: logger}
}

// Create starts an anonymous session and returns it with its signed token.
func (s *Service) Create(ctx context.Context) (*models.Session, string, error) {
	now := s.Now()
	sess := &models.Session{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, "", err
	}
	token, err := utils.GenerateToken(sess.ID, s.TTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	s.Logger.Debug("session created", zap.String("sessionId", sess.ID))
	return sess, token, nil
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	id, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s.Store.Get(ctx, id)
}

// Load fetches a session by id.
func (s *Service) Load(ctx context.Context, id string) (*models.Session, error) {
	return s.Store.Get(ctx, id)
}

// Save stamps and persists sess.
func (s *Service) Save(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = s.Now()
	return s.Store.Save(ctx, sess)
}

// SaveIntent records what the user was booking before being sent to log in.
func (s *Service) SaveIntent(ctx context.Context, sess *models.Session, intent models.BookingIntent) error {
	intent.Flow = strings.ToLower(strings.TrimSpace(intent.Flow))
	if !intentFlows[intent.Flow] || strings.TrimSpace(intent.ProviderID) == "" {
		return ErrInvalidIntent
	}
	intent.CreatedAt = s.Now()
	sess.BookingIntent = &intent
	return s.Save(ctx, sess)
}

func (s *Service) ClearIntent(ctx context.Context, sess *models.Session) error {
	if sess.BookingIntent == nil {
		return nil
	}
	sess.BookingIntent = nil
	return s.Save(ctx, sess)
}

// ApplyLogin stores the upstream credentials and hands back any pending intent, clearing it.
func (s *Service) ApplyLogin(ctx context.Context, sess *models.Session, mobile string, res *models.OTPVerifyResult) (*models.BookingIntent, error) {
	sess.AuthToken = res.Token
	sess.SubscriberID = string(res.SubscriberID)
	sess.BusinessID = string(res.BusinessID)
	sess.MobileNumber = mobile

	intent := sess.BookingIntent
	sess.BookingIntent = nil
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.Logger.Info("session logged in",
		zap.String("sessionId", sess.ID),
		zap.String("subscriberId", sess.SubscriberID),
		zap.Bool("resumeIntent", intent != nil),
	)
	return intent, nil
}

// Logout drops the upstream credentials but keeps city and location.
func (s *Service) Logout(ctx context.Context, sess *models.Session) error {
	sess.AuthToken = ""
	sess.SubscriberID = ""
	sess.BusinessID = ""
	sess.MobileNumber = ""
	sess.BookingIntent = nil
	return s.Save(ctx, sess)
}

// ApplyLocation stores a resolved location and its city.
func (s *Service) ApplyLocation(ctx context.Context, sess *models.Session, loc models.LocationData) error {
	sess.LocationData = &loc
	sess.Latitude = loc.Latitude
	sess.Longitude = loc.Longitude
	if loc.City != "" {
		sess.SelectedCity = loc.City
	}
	return s.Save(ctx, sess)
}

// SelectCity sets the city by hand, with its reference coordinates.
func (s *Service) SelectCity(ctx context.Context, sess *models.Session, city models.City) error {
	return s.ApplyLocation(ctx, sess, models.LocationData{
		City:      city.Name,
		State:     city.State,
		Latitude:  city.Latitude,
		Longitude: city.Longitude,
		Source:    models.LocationSourceManual,
	})
}

func (s *Service) SetFCMToken(ctx context.Context, sess *models.Session, token string) error {
	sess.FCMToken = strings.TrimSpace(token)
	return s.Save(ctx, sess)
}
