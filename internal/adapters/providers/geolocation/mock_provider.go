package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/Josh363/small-business-app/internal/domain/providers"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// knownPlaces backs the mock geocoder; keys are zipcodes.
var knownPlaces = map[string]providers.GeocodedAddress{
	"02215": {Street: "233 Bay State Rd", City: "Boston", State: "MA", ZipCode: "02215", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 42.350846, Longitude: -71.10286}},
	"02118": {Street: "45 Upton St", City: "Boston", State: "MA", ZipCode: "02118", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 42.34153, Longitude: -71.0742}},
	"02903": {Street: "220 Pawtucket St", City: "Providence", State: "RI", ZipCode: "02903", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 41.8204, Longitude: -71.41309}},
	"01854": {Street: "220 Pawtucket St", City: "Lowell", State: "MA", ZipCode: "01854", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 42.6501, Longitude: -71.33617}},
	"02364": {Street: "85 South Prospect Street", City: "Kingston", State: "MA", ZipCode: "02364", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 41.99461, Longitude: -70.7254}},
	"10001": {Street: "350 5th Ave", City: "New York", State: "NY", ZipCode: "10001", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 40.7506, Longitude: -73.9972}},
	"94102": {Street: "1 Dr Carlton B Goodlett Pl", City: "San Francisco", State: "CA", ZipCode: "94102", Country: "US",
		Coordinates: providers.Coordinates{Latitude: 37.7793, Longitude: -122.4193}},
}

// MockGeolocationProvider resolves a fixed set of zipcodes without network access.
// An address resolves when it is, or ends with, a known zipcode.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

// Geocode resolves address by its trailing zipcode
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("Please add an address")
	}

	fields := strings.Fields(strings.ReplaceAll(trimmed, ",", " "))
	zip := fields[len(fields)-1]
	place, ok := knownPlaces[zip]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No location found for %s", trimmed))
	}

	place.FormattedAddress = fmt.Sprintf("%s, %s, %s %s, %s", place.Street, place.City, place.State, place.ZipCode, place.Country)
	return &place, nil
}

// ReverseGeocode echoes the coordinates back as the address
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	return &providers.GeocodedAddress{
		FormattedAddress: fmt.Sprintf("%f, %f", lat, lon),
		Coordinates: providers.Coordinates{
			Latitude:  lat,
			Longitude: lon,
		},
	}, nil
}
