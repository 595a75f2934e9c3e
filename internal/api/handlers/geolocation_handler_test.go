package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Josh363/small-business-app/internal/api/handlers"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/mocks"
)

func TestGeolocationHandler_Geocode(t *testing.T) {
	geo := new(mocks.GeolocationProvider)
	geo.On("Geocode", mock.Anything, "02118").Return(&providers.GeocodedAddress{
		ZipCode:     "02118",
		Coordinates: providers.Coordinates{Latitude: 42.34, Longitude: -71.07},
	}, nil)
	geo.On("Geocode", mock.Anything, "nowhere").Return(nil, assert.AnError)
	handler := handlers.NewGeolocationHandler(geo)

	w := httptest.NewRecorder()
	handler.Geocode(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode?address=02118", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"latitude":42.34`)

	w = httptest.NewRecorder()
	handler.Geocode(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode?address=nowhere", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = httptest.NewRecorder()
	handler.Geocode(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.ReverseGeocode(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode/reverse?lat=abc&lon=1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	geo.AssertExpectations(t)
}
