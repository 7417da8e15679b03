// Package location resolves a client's coordinates to a serviceable city.
package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"bikeserve/config"
	"bikeserve/models"
	"bikeserve/services/api"

	"go.uber.org/zap"
)

const (
	geocodeTimeout = 30 * time.Second
	cacheTTL       = 60 * time.Second
	earthRadiusKm  = 6371.0
)

var (
	ErrInvalidCoordinates = errors.New("latitude must be within ±90 and longitude within ±180")
	ErrUnknownCity        = errors.New("city is not serviced")
)

// SessionUpdater persists location choices onto the session.
type SessionUpdater interface {
	ApplyLocation(ctx context.Context, sess *models.Session, loc models.LocationData) error
	SelectCity(ctx context.Context, sess *models.Session, city models.City) error
}

type cacheEntry struct {
	loc     models.LocationData
	expires time.Time
}

// Resolver maps coordinates to a city: cache, then the geocoder, then the nearest known city.
type Resolver struct {
	Geocoder    Geocoder // nil disables remote lookups
	Marketplace api.MarketplaceService
	Sessions    SessionUpdater
	Now         func() time.Time
	Logger      *zap.Logger

	mu        sync.RWMutex
	cache     map[string]cacheEntry
	lastSweep time.Time
}

func NewResolver(g Geocoder, m api.MarketplaceService, sessions SessionUpdater, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		Geocoder:    g,
		Marketplace: m,
		Sessions:    sessions,
		Now:         time.Now,
		Logger:      logger,
		cache:       map[string]cacheEntry{},
	}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}

// ValidCoordinates reports whether lat/lon are finite and on the globe.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Resolve finds the place at lat/lon and stores it on the session.
func (r *Resolver) Resolve(ctx context.Context, sess *models.Session, lat, lon float64) (models.LocationData, error) {
	if !ValidCoordinates(lat, lon) {
		return models.LocationData{}, ErrInvalidCoordinates
	}
	loc := r.lookup(ctx, sess, lat, lon)
	loc.Latitude, loc.Longitude = lat, lon
	if err := r.Sessions.ApplyLocation(ctx, sess, loc); err != nil {
		return models.LocationData{}, err
	}
	return loc, nil
}

func (r *Resolver) lookup(ctx context.Context, sess *models.Session, lat, lon float64) models.LocationData {
	key := cacheKey(lat, lon)
	now := r.Now()

	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.loc
	}

	var loc models.LocationData
	if found, err := r.reverse(ctx, lat, lon); err == nil {
		loc = *found
	} else {
		r.Logger.Warn("reverse geocoding failed, using nearest city",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		city, _ := Nearest(lat, lon, r.cities(ctx, sess))
		loc = models.LocationData{
			City:      city.Name,
			State:     city.State,
			Latitude:  lat,
			Longitude: lon,
			Source:    models.LocationSourceNearest,
		}
	}

	r.mu.Lock()
	r.sweepLocked(now)
	r.cache[key] = cacheEntry{loc: loc, expires: now.Add(cacheTTL)}
	r.mu.Unlock()
	return loc
}

// sweepLocked drops expired entries at most once per cacheTTL. r.mu must be held.
func (r *Resolver) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < cacheTTL {
		return
	}
	for key, entry := range r.cache {
		if !now.Before(entry.expires) {
			delete(r.cache, key)
		}
	}
	r.lastSweep = now
}

func (r *Resolver) reverse(ctx context.Context, lat, lon float64) (*models.LocationData, error) {
	if r.Geocoder == nil {
		return nil, errors.New("no geocoder configured")
	}
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	return r.Geocoder.Reverse(ctx, lat, lon)
}

// cities is the upstream list, or the built-in one when that is unusable.
func (r *Resolver) cities(ctx context.Context, sess *models.Session) []models.City {
	if r.Marketplace != nil {
		res := r.Marketplace.Cities(ctx, sess)
		if !res.Failed() && len(res.Data) > 0 {
			return res.Data
		}
	}
	return config.Cities
}

// SelectCity sets the session's city by name. The name must match a known city.
func (r *Resolver) SelectCity(ctx context.Context, sess *models.Session, name string) (models.City, error) {
	name = strings.TrimSpace(name)
	for _, list := range [][]models.City{r.cities(ctx, sess), config.Cities} {
		for _, c := range list {
			if strings.EqualFold(c.Name, name) {
				if err := r.Sessions.SelectCity(ctx, sess, c); err != nil {
					return models.City{}, err
				}
				return c, nil
			}
		}
	}
	return models.City{}, ErrUnknownCity
}

// Nearest returns the city closest to lat/lon and its great-circle distance in km.
func Nearest(lat, lon float64, cities []models.City) (models.City, float64) {
	best := models.City{}
	bestDist := math.Inf(1)
	for _, c := range cities {
		if d := Haversine(lat, lon, c.Latitude, c.Longitude); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Haversine is the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
