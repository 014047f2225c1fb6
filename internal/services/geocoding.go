package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"waste-wizard-backend/internal/config"
)

// GeocodingService reverse geocodes the trashcan's position using the Google Maps API
type GeocodingService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   GeocodeCache
}

// GeocodeCache stores resolved addresses keyed by rounded coordinates
type GeocodeCache interface {
	Get(key string) (string, bool)
	Set(key, address string) error
}

// Address is a resolved street address
type Address struct {
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Cached           bool    `json:"-"`
}

// GoogleGeocodeResponse represents the Google Maps Geocoding API response
type GoogleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"`
}

// StatusError means the API answered but returned no usable address
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding API returned status: %s", e.Status)
}

// ErrAPIKeyMissing is returned when GOOGLE_MAPS_API_KEY is not configured
var ErrAPIKeyMissing = errors.New("GOOGLE_MAPS_API_KEY environment variable is required")

// NewGeocodingService creates a new geocoding service; cache may be nil
func NewGeocodingService(cfg config.GeocodeConfig, cache GeocodeCache) (*GeocodingService, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return &GeocodingService{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}, nil
}

// ReverseGeocode converts coordinates to an address
func (s *GeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	key := fmt.Sprintf("revgeo:%.5f,%.5f", lat, lng)
	if s.cache != nil {
		if address, ok := s.cache.Get(key); ok {
			return &Address{FormattedAddress: address, Lat: lat, Lng: lng, Cached: true}, nil
		}
	}

	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Add("key", s.apiKey)

	fullURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google API returned status %d", resp.StatusCode)
	}

	var result GoogleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		// OK with an empty result list is reported as "OK", like any other status
		status := result.Status
		if status == "" {
			status = "No results found"
		}
		return nil, &StatusError{Status: status}
	}

	address := result.Results[0].FormattedAddress
	if s.cache != nil {
		if err := s.cache.Set(key, address); err != nil {
			log.Printf("⚠️  Failed to cache address for %s: %v", key, err)
		}
	}

	return &Address{FormattedAddress: address, Lat: lat, Lng: lng}, nil
}
