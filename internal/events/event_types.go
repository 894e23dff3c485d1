package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sweetshop/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSweetCreated   EventType = "sweet_created"
	EventSweetUpdated   EventType = "sweet_updated"
	EventSweetDeleted   EventType = "sweet_deleted"
	EventSweetPurchased EventType = "sweet_purchased"
	EventSweetRestocked EventType = "sweet_restocked"
)

// SweetEventTypes lists every inventory event in publication order of the lifecycle.
var SweetEventTypes = []EventType{
	EventSweetCreated,
	EventSweetUpdated,
	EventSweetDeleted,
	EventSweetPurchased,
	EventSweetRestocked,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SweetID   int64       `json:"sweet_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SweetPayload is the listener-facing view of a sweet.
type SweetPayload struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// SweetDeletedPayload identifies a removed sweet.
type SweetDeletedPayload struct {
	ID int64 `json:"id"`
}

// NewSweetEvent builds an event carrying the sweet's current state.
func NewSweetEvent(eventType EventType, actorID int64, sweet *domain.Sweet, at time.Time) Event {
	var payload interface{}
	if eventType == EventSweetDeleted {
		payload = SweetDeletedPayload{ID: sweet.ID}
	} else {
		payload = SweetPayload{
			ID:       sweet.ID,
			Name:     sweet.Name,
			Category: sweet.Category,
			Price:    sweet.Price,
			Quantity: sweet.Quantity,
		}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SweetID:   sweet.ID,
		ActorID:   actorID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}
