package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"orders/internal/domain"
	apperrors "orders/internal/errors"
	"orders/internal/events"
	"orders/internal/infrastructure/metrics"
)

type OrderUseCase struct {
	orderRepo   OrderRepository
	itemRepo    OrderItemRepository
	orderSvc    OrderService
	publisher   EventPublisher
	transitions TransitionObserver
	logger      *zap.Logger
	now         func() time.Time
}

func NewOrderUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	orderSvc OrderService,
	publisher EventPublisher,
	transitions TransitionObserver,
	logger *zap.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		orderSvc:    orderSvc,
		publisher:   publisher,
		transitions: transitions,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder stores a new order with its items. An empty requestedStatus
// means CREATED.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error) {
	uc.logger.Info("create order started", zap.String("customerId", order.CustomerID), zap.Int("itemCount", len(order.Items)))

	order.Status = domain.OrderStatusCreated
	if requestedStatus != "" {
		status, err := domain.ParseOrderStatus(requestedStatus)
		if err != nil {
			return nil, err
		}
		order.Status = status
	}

	created, err := uc.orderSvc.CreateOrder(ctx, order)
	if err != nil {
		return nil, internalError("creating order", err)
	}

	uc.publish(ctx, events.OrderCreated, events.NewOrderEvent(*created, uc.now()))
	return created, nil
}

// ListOrders returns orders matching every given filter, each with its items.
func (uc *OrderUseCase) ListOrders(ctx context.Context, customerID, statusName string) ([]domain.Order, error) {
	var filter domain.OrderFilter
	if customerID != "" {
		filter.CustomerID = &customerID
	}
	if statusName != "" {
		status, err := domain.ParseOrderStatus(statusName)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	orders, err := uc.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, internalError("listing orders", err)
	}

	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	items, err := uc.itemRepo.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, internalError("listing order items", err)
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, internalError("reading order", err)
	}

	if err := uc.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder changes a CREATED order. A nil shippingAddress keeps the stored
// one, and a non-empty requestedStatus moves the order along the lifecycle.
func (uc *OrderUseCase) UpdateOrder(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error) {
	uc.logger.Info("update order started", zap.Uint("orderId", id))

	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, internalError("reading order", err)
	}

	if !order.Status.IsMutable() {
		uc.logger.Warn("order not mutable", zap.Uint("orderId", id), zap.String("status", order.Status.String()))
		return nil, notMutableError(order)
	}

	previous := order.Status
	next := order.Status
	if requestedStatus != "" {
		next, err = uc.checkTransition(previous, requestedStatus)
		if err != nil {
			return nil, err
		}
	}

	changed := *order
	if shippingAddress != nil {
		changed.ShippingAddress = *shippingAddress
	}
	changed.Status = next

	updated, err := uc.orderSvc.UpdateOrder(ctx, changed, previous)
	if err != nil {
		return nil, uc.staleOrder(order, internalError("updating order", err))
	}
	uc.observeApplied(previous, next)

	if err := uc.loadItems(ctx, updated); err != nil {
		return nil, err
	}

	uc.publish(ctx, events.OrderUpdated, events.NewStatusEvent(*updated, previous, uc.now()))
	return updated, nil
}

// UpdateStatus moves an order to requestedStatus if the lifecycle allows it.
// Unlike UpdateOrder it applies to orders in any status.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id uint, requestedStatus string) (*domain.Order, error) {
	uc.logger.Info("update order status started", zap.Uint("orderId", id), zap.String("requested", requestedStatus))

	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, internalError("reading order", err)
	}

	next, err := uc.checkTransition(order.Status, requestedStatus)
	if err != nil {
		return nil, err
	}

	updated, err := uc.orderSvc.UpdateStatus(ctx, *order, next)
	if err != nil {
		return nil, uc.staleOrder(order, internalError("updating order status", err))
	}
	uc.observeApplied(order.Status, next)

	if err := uc.loadItems(ctx, updated); err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed", zap.Uint("orderId", id), zap.String("from", order.Status.String()), zap.String("to", next.String()))
	uc.publish(ctx, events.OrderStatus, events.NewStatusEvent(*updated, order.Status, uc.now()))
	return updated, nil
}

// DeleteOrder removes a CREATED order and its items. Deleting an order that
// does not exist succeeds without doing anything.
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, id uint) error {
	uc.logger.Info("delete order started", zap.Uint("orderId", id))

	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil
		}
		return internalError("reading order", err)
	}

	if !order.Status.IsMutable() {
		return notMutableError(order)
	}

	if err := uc.orderSvc.DeleteOrder(ctx, id, order.Status); err != nil {
		return uc.staleOrder(order, internalError("deleting order", err))
	}

	uc.publish(ctx, events.OrderDeleted, events.NewOrderEvent(*order, uc.now()))
	return nil
}

func (uc *OrderUseCase) checkTransition(from domain.OrderStatus, requested string) (domain.OrderStatus, error) {
	to, err := domain.ValidateTransition(from, requested)
	if err != nil {
		if te, ok := err.(*domain.TransitionError); ok {
			uc.transitions.ObserveTransition(te.From.String(), te.To.String(), metrics.ResultRejected)
			uc.logger.Warn("status transition rejected", zap.String("from", te.From.String()), zap.String("to", te.To.String()))
		}
		return "", err
	}
	return to, nil
}

func (uc *OrderUseCase) observeApplied(from, to domain.OrderStatus) {
	if from != to {
		uc.transitions.ObserveTransition(from.String(), to.String(), metrics.ResultApplied)
	}
}

// staleOrder rewrites the conflict raised when the order changed status
// between the read and the guarded write.
func (uc *OrderUseCase) staleOrder(order *domain.Order, err error) error {
	if _, ok := apperrors.IsConflictError(err); ok {
		uc.logger.Warn("order changed concurrently", zap.Uint("orderId", order.ID), zap.Error(err))
		return notMutableError(order)
	}
	return err
}

func (uc *OrderUseCase) loadItems(ctx context.Context, order *domain.Order) error {
	items, err := uc.itemRepo.FindByOrderID(ctx, order.ID, domain.ItemFilter{})
	if err != nil {
		return internalError("reading order items", err)
	}
	order.Items = items
	return nil
}

// publish never fails the request; the write has already committed.
func (uc *OrderUseCase) publish(ctx context.Context, routingKey string, event events.OrderEvent) {
	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		uc.logger.Error("failed to publish event", zap.String("routingKey", routingKey), zap.Uint("orderId", event.OrderID), zap.Error(err))
	}
}
