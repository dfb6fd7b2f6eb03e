package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"orders/internal/domain"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
	Update(ctx context.Context, tx *sql.Tx, order domain.Order, expected domain.OrderStatus, at time.Time) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, from, to domain.OrderStatus, at time.Time) error
	Touch(ctx context.Context, tx *sql.Tx, id uint, expected domain.OrderStatus, at time.Time) error
	Delete(ctx context.Context, tx *sql.Tx, id uint, expected domain.OrderStatus) error
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
	Update(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error
	Delete(ctx context.Context, tx *sql.Tx, orderID, id uint) error
	DeleteByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) (int64, error)
}

// OrderService runs every write as one transaction: either all rows of an
// operation commit or none do.
type OrderService struct {
	db        TransactionManager
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		logger:    logger,
		txTimeout: txTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// inTx opens a transaction bounded by the configured timeout, hands it to fn
// and commits when fn succeeds.
func (s *OrderService) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.String("op", op), zap.Error(err))
		return err
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

// CreateOrder inserts the order and its items in one transaction and returns
// the order with every id assigned.
func (s *OrderService) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	created := order
	created.Items = make([]domain.OrderItem, 0, len(order.Items))

	err := s.inTx(ctx, "create_order", func(ctx context.Context, tx *sql.Tx) error {
		id, err := s.orderRepo.Insert(ctx, tx, order)
		if err != nil {
			s.logger.Error("failed to insert order", zap.String("customerId", order.CustomerID), zap.Error(err))
			return err
		}
		created.ID = id

		for _, item := range order.Items {
			item.OrderID = id
			itemID, err := s.itemRepo.Insert(ctx, tx, item)
			if err != nil {
				s.logger.Error("failed to insert order item", zap.Uint("orderId", id), zap.String("productId", item.ProductID), zap.Error(err))
				return err
			}
			item.ID = itemID
			created.Items = append(created.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created", zap.Uint("orderId", created.ID), zap.Int("itemCount", len(created.Items)))
	return &created, nil
}

// UpdateOrder writes address and status, provided the stored order is still
// in expected status.
func (s *OrderService) UpdateOrder(ctx context.Context, order domain.Order, expected domain.OrderStatus) (*domain.Order, error) {
	at := s.now()

	err := s.inTx(ctx, "update_order", func(ctx context.Context, tx *sql.Tx) error {
		return s.orderRepo.Update(ctx, tx, order, expected, at)
	})
	if err != nil {
		return nil, err
	}

	order.UpdatedAt = &at
	return &order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, order domain.Order, to domain.OrderStatus) (*domain.Order, error) {
	at := s.now()

	err := s.inTx(ctx, "update_status", func(ctx context.Context, tx *sql.Tx) error {
		return s.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, to, at)
	})
	if err != nil {
		return nil, err
	}

	order.Status = to
	order.UpdatedAt = &at
	return &order, nil
}

// DeleteOrder removes the items and then the order itself, so the result is
// the same whether or not the store enforces the cascade.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint, expected domain.OrderStatus) error {
	var removed int64

	err := s.inTx(ctx, "delete_order", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		removed, err = s.itemRepo.DeleteByOrderID(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.orderRepo.Delete(ctx, tx, id, expected)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.Uint("orderId", id), zap.Int64("itemsRemoved", removed))
	return nil
}

// AddItem touches the owning order under the status guard before inserting,
// so a concurrent status change makes it fail instead of landing on an order
// that no longer accepts changes. UpdateItem and DeleteItem do the same.
func (s *OrderService) AddItem(ctx context.Context, item domain.OrderItem, expected domain.OrderStatus) (*domain.OrderItem, error) {
	err := s.inTx(ctx, "add_item", func(ctx context.Context, tx *sql.Tx) error {
		if err := s.orderRepo.Touch(ctx, tx, item.OrderID, expected, s.now()); err != nil {
			return err
		}

		id, err := s.itemRepo.Insert(ctx, tx, item)
		if err != nil {
			return err
		}
		item.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *OrderService) UpdateItem(ctx context.Context, item domain.OrderItem, expected domain.OrderStatus) (*domain.OrderItem, error) {
	err := s.inTx(ctx, "update_item", func(ctx context.Context, tx *sql.Tx) error {
		if err := s.orderRepo.Touch(ctx, tx, item.OrderID, expected, s.now()); err != nil {
			return err
		}
		return s.itemRepo.Update(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, orderID, itemID uint, expected domain.OrderStatus) error {
	return s.inTx(ctx, "delete_item", func(ctx context.Context, tx *sql.Tx) error {
		if err := s.orderRepo.Touch(ctx, tx, orderID, expected, s.now()); err != nil {
			return err
		}
		return s.itemRepo.Delete(ctx, tx, orderID, itemID)
	})
}
