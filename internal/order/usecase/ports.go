package usecase

import (
	"context"

	"orders/internal/domain"
	"orders/internal/events"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type OrderItemRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.OrderItem, error)
	FindByOrderID(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error)
	FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.OrderItem, error)
}

// OrderService performs the transactional writes. Every method re-checks
// the expected status inside its transaction.
type OrderService interface {
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order, expected domain.OrderStatus) (*domain.Order, error)
	UpdateStatus(ctx context.Context, order domain.Order, to domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uint, expected domain.OrderStatus) error
	AddItem(ctx context.Context, item domain.OrderItem, expected domain.OrderStatus) (*domain.OrderItem, error)
	UpdateItem(ctx context.Context, item domain.OrderItem, expected domain.OrderStatus) (*domain.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uint, expected domain.OrderStatus) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event events.OrderEvent) error
}

type TransitionObserver interface {
	ObserveTransition(from, to, result string)
}
