package domain

import (
	"fmt"
	"strings"
	"time"
)

type Order struct {
	ID              uint
	CustomerID      string
	ShippingAddress string
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	Items           []OrderItem
}

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "CREATED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusProcessing,
	OrderStatusCompleted,
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusProcessing, OrderStatusCompleted:
		return true
	}
	return false
}

// IsMutable reports whether an order in this status accepts edits to its
// address, its items, or its own deletion.
func (s OrderStatus) IsMutable() bool {
	return s == OrderStatusCreated
}

type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Value)
}

type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order status cannot change from %s to %s", e.From, e.To)
}

// ParseOrderStatus maps a status name to its OrderStatus, ignoring case and
// surrounding whitespace.
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", &InvalidStatusError{Value: value}
	}
	return status, nil
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:    {OrderStatusCreated, OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusCompleted},
	OrderStatusCompleted:  {},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition parses requested and checks it against the transition
// table. It returns *InvalidStatusError for unknown names and
// *TransitionError for known statuses the table does not allow.
func ValidateTransition(from OrderStatus, requested string) (OrderStatus, error) {
	to, err := ParseOrderStatus(requested)
	if err != nil {
		return "", err
	}
	if !CanTransition(from, to) {
		return "", &TransitionError{From: from, To: to}
	}
	return to, nil
}
