package entities

import (
	"time"

	"github.com/google/uuid"
)

// BusinessEventType represents the type of business event
type BusinessEventType string

const (
	BusinessEventCreated          BusinessEventType = "business.created"
	BusinessEventUpdated          BusinessEventType = "business.updated"
	BusinessEventDeleted          BusinessEventType = "business.deleted"
	BusinessEventAggregateUpdated BusinessEventType = "business.aggregate_updated"
	// A service or review changed without moving either statistic.
	BusinessEventChildUpdated BusinessEventType = "business.child_updated"
)

// BusinessEvent announces a change to a business or to one of its derived statistics
type BusinessEvent struct {
	ID            string                 `json:"id"`
	BusinessID    string                 `json:"business_id"`
	EventType     BusinessEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewBusinessEvent creates a new business event
func NewBusinessEvent(businessID string, eventType BusinessEventType, changedFields map[string]interface{}) *BusinessEvent {
	return &BusinessEvent{
		ID:            uuid.New().String(),
		BusinessID:    businessID,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}
