package providers

import (
	"context"
)

// GeolocationProvider resolves addresses and postal codes to coordinates
type GeolocationProvider interface {
	// Geocode converts an address or postal code to the best matching location
	Geocode(ctx context.Context, address string) (*GeocodedAddress, error)

	// ReverseGeocode converts coordinates to an address
	ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodedAddress, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodedAddress represents a geocoded address
type GeocodedAddress struct {
	FormattedAddress string      `json:"formattedAddress"`
	Street           string      `json:"street"`
	City             string      `json:"city"`
	State            string      `json:"state"`
	ZipCode          string      `json:"zipcode"`
	Country          string      `json:"country"`
	Coordinates      Coordinates `json:"coordinates"`
}
