package entities

import (
	"time"
)

// DefaultPhoto is the photo name assigned to a business before an upload.
const DefaultPhoto = "no-photo.jpg"

// Business represents a directory listing owned by a single user
type Business struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Location      Location  `json:"location"`
	Photo         string    `json:"photo"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	UserID        string    `json:"user"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Location is the geocoded point and normalized address of a business
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Street           string  `json:"street,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	Country          string  `json:"country,omitempty"`
}

// BusinessSummary is the projection embedded into services and reviews.
type BusinessSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Summary returns the embedded projection of b.
func (b *Business) Summary() *BusinessSummary {
	return &BusinessSummary{ID: b.ID, Name: b.Name, Description: b.Description}
}

// StatKind identifies a derived statistic stored on a business.
type StatKind string

const (
	// StatRating is the mean review rating.
	StatRating StatKind = "averageRating"
	// StatCost is the mean service price.
	StatCost StatKind = "averageCost"
)
