package domain

type OrderItem struct {
	ID                 uint
	OrderID            uint
	ProductID          string
	ProductDescription string
	Quantity           int
	Price              float64
}

// ItemFilter narrows an order's item listing. Nil fields do not filter.
type ItemFilter struct {
	ProductID *string
	Quantity  *int
	Price     *float64
}

// OrderFilter narrows an order listing. Nil fields do not filter.
type OrderFilter struct {
	CustomerID *string
	Status     *OrderStatus
}
