package entities

import "time"

// Service is an offering listed by a business
type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	ServiceType     string    `json:"serviceType"`
	CreditAvailable bool      `json:"creditAvailable"`
	BusinessID      string    `json:"business"`
	UserID          string    `json:"user"`
	CreatedAt       time.Time `json:"createdAt"`
}
