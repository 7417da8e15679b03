package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bikeserve/models"
)

// Geocoder turns coordinates into a place.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*models.LocationData, error)
}

// NominatimGeocoder calls a Nominatim-compatible /reverse endpoint.
type NominatimGeocoder struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		County   string `json:"county"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Postcode string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// cityName picks the most specific settlement name present.
func (r nominatimResponse) cityName() string {
	for _, name := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.County} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return ""
}

func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (*models.LocationData, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoder returned status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("reverse geocoder: %s", body.Error)
	}

	city := body.cityName()
	if city == "" {
		return nil, fmt.Errorf("reverse geocoder found no city at %.4f,%.4f", lat, lon)
	}
	return &models.LocationData{
		City:        city,
		State:       body.Address.State,
		Country:     body.Address.Country,
		Postcode:    body.Address.Postcode,
		DisplayName: body.DisplayName,
		Latitude:    lat,
		Longitude:   lon,
		Source:      models.LocationSourceGeocoder,
	}, nil
}
