package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"waste-wizard-backend/internal/services"
	"waste-wizard-backend/pkg/utils"
)

// ReverseGeocoder resolves coordinates to a street address
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*services.Address, error)
}

// ReverseGeocode handles GET /api/reverse-geocode?lat=&lng=.
// geo is nil when no API key is configured.
func ReverseGeocode(geo ReverseGeocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latRaw := r.URL.Query().Get("lat")
		lngRaw := r.URL.Query().Get("lng")
		if latRaw == "" || lngRaw == "" {
			utils.Error(w, http.StatusBadRequest, "Latitude and longitude are required")
			return
		}

		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			utils.Error(w, http.StatusBadRequest, "Latitude and longitude must be numbers")
			return
		}

		if geo == nil {
			utils.Error(w, http.StatusInternalServerError, "API key not configured")
			return
		}

		fallback := fmt.Sprintf("Location at %s, %s", latRaw, lngRaw)

		address, err := geo.ReverseGeocode(r.Context(), lat, lng)
		if err != nil {
			var statusErr *services.StatusError
			if errors.As(err, &statusErr) {
				utils.JSON(w, http.StatusOK, map[string]string{
					"address": fallback,
					"error":   statusErr.Status,
				})
				return
			}

			log.Printf("❌ Reverse geocoding failed for %s,%s: %v", latRaw, lngRaw, err)
			utils.JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to get address",
				"address": fallback,
			})
			return
		}

		utils.JSON(w, http.StatusOK, map[string]string{"address": address.FormattedAddress})
	}
}
