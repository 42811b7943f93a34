package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductEventType names a product lifecycle event. It doubles as the routing key.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product mutation has been persisted.
type ProductEvent struct {
	ID         string           `json:"id"`
	Type       ProductEventType `json:"type"`
	ProductID  uint             `json:"product_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Product    *Product         `json:"product,omitempty"`
}

// NewProductEvent creates an event for product. Deletion events carry no snapshot.
func NewProductEvent(eventType ProductEventType, product Product) ProductEvent {
	event := ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  product.ID,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != ProductDeleted {
		event.Product = &product
	}
	return event
}
