package events

import (
	"context"
	"time"

	"orders/internal/domain"
)

// Routing keys on the order topic exchange.
const (
	OrderCreated     = "order.created"
	OrderUpdated     = "order.updated"
	OrderStatus      = "order.status"
	OrderDeleted     = "order.deleted"
	OrderItemAdded   = "order.item.added"
	OrderItemUpdated = "order.item.updated"
	OrderItemDeleted = "order.item.deleted"
)

type OrderEvent struct {
	OrderID        uint      `json:"order_id"`
	ItemID         *uint     `json:"item_id,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CustomerID     string    `json:"customer_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewOrderEvent(order domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:    order.ID,
		Status:     order.Status.String(),
		CustomerID: order.CustomerID,
		OccurredAt: at.UTC(),
	}
}

func NewStatusEvent(order domain.Order, previous domain.OrderStatus, at time.Time) OrderEvent {
	event := NewOrderEvent(order, at)
	if previous != order.Status {
		event.PreviousStatus = previous.String()
	}
	return event
}

func NewItemEvent(order domain.Order, itemID uint, at time.Time) OrderEvent {
	event := NewOrderEvent(order, at)
	event.ItemID = &itemID
	return event
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, OrderEvent) error {
	return nil
}
