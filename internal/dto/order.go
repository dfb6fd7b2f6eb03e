package dto

import (
	"time"

	"orders/internal/domain"
	apperrors "orders/internal/errors"
)

type CreateOrderRequest struct {
	CustomerID      FlexString    `json:"customer_id" validate:"required,max=16"`
	ShippingAddress string        `json:"shipping_address" validate:"required,max=128"`
	Status          string        `json:"status,omitempty"`
	CreatedAt       *Timestamp    `json:"created_at,omitempty"`
	Items           []ItemRequest `json:"items,omitempty" validate:"dive"`
}

// ToDomain builds the order to insert. The status is left for the caller to
// resolve, and created_at falls back to now when the client sent none.
func (r CreateOrderRequest) ToDomain(now time.Time) domain.Order {
	order := domain.Order{
		CustomerID:      string(r.CustomerID),
		ShippingAddress: r.ShippingAddress,
		Status:          domain.OrderStatusCreated,
		CreatedAt:       now.UTC(),
		Items:           make([]domain.OrderItem, 0, len(r.Items)),
	}
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		order.CreatedAt = r.CreatedAt.UTC()
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, item.ToDomain(0))
	}
	return order
}

// UpdateOrderRequest changes the address, the status, or both. At least one
// must be sent. Fields not listed here (items, customer_id) are ignored.
type UpdateOrderRequest struct {
	ShippingAddress *string `json:"shipping_address,omitempty" validate:"omitnil,min=1,max=128"`
	Status          string  `json:"status,omitempty" validate:"required_without=ShippingAddress"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	ID              uint           `json:"id"`
	CustomerID      string         `json:"customer_id"`
	ShippingAddress string         `json:"shipping_address"`
	Status          string         `json:"status"`
	CreatedAt       Timestamp      `json:"created_at"`
	UpdatedAt       *Timestamp     `json:"updated_at,omitempty"`
	Items           []ItemResponse `json:"items"`
}

func NewOrderResponse(order domain.Order) OrderResponse {
	response := OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status.String(),
		CreatedAt:       NewTimestamp(order.CreatedAt),
		Items:           NewItemResponses(order.Items),
	}
	if order.UpdatedAt != nil {
		updatedAt := NewTimestamp(*order.UpdatedAt)
		response.UpdatedAt = &updatedAt
	}
	return response
}

func NewOrderResponses(orders []domain.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, NewOrderResponse(order))
	}
	return responses
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Status  int                          `json:"status"`
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
