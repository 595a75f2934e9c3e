package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Josh363/small-business-app/internal/domain/providers"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// GeolocationHandler exposes the configured geocoder.
type GeolocationHandler struct {
	provider providers.GeolocationProvider
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(provider providers.GeolocationProvider) *GeolocationHandler {
	return &GeolocationHandler{provider: provider}
}

// Geocode handles GET /api/v1/geocode?address=...
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address parameter is required")
		return
	}

	geocoded, err := h.provider.Geocode(r.Context(), address)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewExternalError("Failed to geocode address", err))
		return
	}
	respondWithData(w, http.StatusOK, geocoded)
}

// ReverseGeocode handles GET /api/v1/geocode/reverse?lat=...&lon=...
func (h *GeolocationHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lat")), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lat parameter")
		return
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lon")), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lon parameter")
		return
	}

	geocoded, err := h.provider.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewExternalError("Failed to reverse geocode", err))
		return
	}
	respondWithData(w, http.StatusOK, geocoded)
}
