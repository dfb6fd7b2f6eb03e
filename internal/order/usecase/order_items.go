package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"orders/internal/domain"
	apperrors "orders/internal/errors"
	"orders/internal/events"
)

func (uc *OrderUseCase) ListItems(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error) {
	if _, err := uc.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, internalError("reading order", err)
	}

	items, err := uc.itemRepo.FindByOrderID(ctx, orderID, filter)
	if err != nil {
		return nil, internalError("listing order items", err)
	}
	return items, nil
}

// AddItem attaches a new item to a CREATED order.
func (uc *OrderUseCase) AddItem(ctx context.Context, orderID uint, item domain.OrderItem) (*domain.OrderItem, error) {
	uc.logger.Info("add item started", zap.Uint("orderId", orderID), zap.String("productId", item.ProductID))

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, internalError("reading order", err)
	}

	if !order.Status.IsMutable() {
		return nil, notMutableError(order)
	}

	item.OrderID = orderID
	added, err := uc.orderSvc.AddItem(ctx, item, order.Status)
	if err != nil {
		return nil, uc.staleOrder(order, internalError("adding item", err))
	}

	uc.publish(ctx, events.OrderItemAdded, events.NewItemEvent(*order, added.ID, uc.now()))
	return added, nil
}

func (uc *OrderUseCase) GetItem(ctx context.Context, orderID, itemID uint) (*domain.OrderItem, error) {
	_, item, err := uc.findOwnedItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem sets quantity and price of an item on a CREATED order.
func (uc *OrderUseCase) UpdateItem(ctx context.Context, orderID, itemID uint, quantity int, price float64) (*domain.OrderItem, error) {
	uc.logger.Info("update item started", zap.Uint("orderId", orderID), zap.Uint("itemId", itemID))

	order, item, err := uc.findOwnedItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}

	if !order.Status.IsMutable() {
		return nil, notMutableError(order)
	}

	item.Quantity = quantity
	item.Price = price

	updated, err := uc.orderSvc.UpdateItem(ctx, *item, order.Status)
	if err != nil {
		return nil, uc.staleOrder(order, internalError("updating item", err))
	}

	uc.publish(ctx, events.OrderItemUpdated, events.NewItemEvent(*order, itemID, uc.now()))
	return updated, nil
}

// DeleteItem removes an item from a CREATED order. The order itself is kept.
func (uc *OrderUseCase) DeleteItem(ctx context.Context, orderID, itemID uint) error {
	uc.logger.Info("delete item started", zap.Uint("orderId", orderID), zap.Uint("itemId", itemID))

	order, _, err := uc.findOwnedItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}

	if !order.Status.IsMutable() {
		uc.logger.Warn("order not mutable", zap.Uint("orderId", orderID), zap.String("status", order.Status.String()))
		return notMutableError(order)
	}

	if err := uc.orderSvc.DeleteItem(ctx, orderID, itemID, order.Status); err != nil {
		return uc.staleOrder(order, internalError("deleting item", err))
	}

	uc.publish(ctx, events.OrderItemDeleted, events.NewItemEvent(*order, itemID, uc.now()))
	return nil
}

// findOwnedItem loads the order and the item, reporting the item as missing
// when it belongs to a different order.
func (uc *OrderUseCase) findOwnedItem(ctx context.Context, orderID, itemID uint) (*domain.Order, *domain.OrderItem, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, internalError("reading order", err)
	}

	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, nil, internalError("reading item", err)
	}

	if item.OrderID != orderID {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("Item with id '%d' was not found in order '%d'.", itemID, orderID))
	}
	return order, item, nil
}
