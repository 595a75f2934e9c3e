package entities

import "time"

const (
	// MinRating is the lowest rating a review may carry
	MinRating = 1
	// MaxRating is the highest rating a review may carry
	MaxRating = 10
)

// Review is a user's rating of a business. A user reviews a business at most once.
type Review struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      int       `json:"rating"`
	BusinessID  string    `json:"business"`
	UserID      string    `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
}
