package dto

import "orders/internal/domain"

// ItemRequest is the body of POST /orders/{id}/items and of each entry in
// an order's "items" array.
type ItemRequest struct {
	ProductID          FlexString `json:"product_id" validate:"required,max=16"`
	ProductDescription string     `json:"product_description" validate:"required,max=64"`
	Quantity           *FlexInt   `json:"quantity" validate:"required,gt=0,max=2147483647"`
	Price              *FlexFloat `json:"price" validate:"required,gte=0"`
}

func (r ItemRequest) ToDomain(orderID uint) domain.OrderItem {
	item := domain.OrderItem{
		OrderID:            orderID,
		ProductID:          string(r.ProductID),
		ProductDescription: r.ProductDescription,
	}
	if r.Quantity != nil {
		item.Quantity = int(*r.Quantity)
	}
	if r.Price != nil {
		item.Price = float64(*r.Price)
	}
	return item
}

// UpdateItemRequest carries the mutable fields of an item. Other fields in
// the body are ignored.
type UpdateItemRequest struct {
	Quantity *FlexInt   `json:"quantity" validate:"required,gt=0,max=2147483647"`
	Price    *FlexFloat `json:"price" validate:"required,gte=0"`
}

type ItemResponse struct {
	ID                 uint    `json:"id"`
	OrderID            uint    `json:"order_id"`
	ProductID          string  `json:"product_id"`
	ProductDescription string  `json:"product_description"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
}

func NewItemResponse(item domain.OrderItem) ItemResponse {
	return ItemResponse{
		ID:                 item.ID,
		OrderID:            item.OrderID,
		ProductID:          item.ProductID,
		ProductDescription: item.ProductDescription,
		Quantity:           item.Quantity,
		Price:              item.Price,
	}
}

func NewItemResponses(items []domain.OrderItem) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewItemResponse(item))
	}
	return responses
}
