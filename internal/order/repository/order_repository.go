package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"orders/internal/domain"
	"orders/internal/errors"
)

// SQLOrderRepository reads and writes the orders table. Queries use only
// `?` placeholders and portable SQL so the same code runs on MySQL and SQLite.
type SQLOrderRepository struct {
	db *sql.DB
}

func NewSQLOrderRepository(db *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{db: db}
}

const orderColumns = `id, customer_id, shipping_address, status, created_at, updated_at`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order     domain.Order
		status    string
		createdAt int64
		updatedAt sql.NullInt64
	)
	if err := row.Scan(&order.ID, &order.CustomerID, &order.ShippingAddress, &status, &createdAt, &updatedAt); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	order.CreatedAt = fromMillis(createdAt)
	if updatedAt.Valid {
		ts := fromMillis(updatedAt.Int64)
		order.UpdatedAt = &ts
	}
	return order, nil
}

func (r *SQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
	query := `INSERT INTO orders (customer_id, shipping_address, status, created_at) VALUES (?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, order.CustomerID, order.ShippingAddress, string(order.Status), toMillis(order.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Order with id '%d' was not found.", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &order, nil
}

// FindAll returns orders matching every non-nil filter field, ordered by id.
func (r *SQLOrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.CustomerID != nil {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, *filter.CustomerID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (r *SQLOrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.FindAll(ctx, domain.OrderFilter{CustomerID: &customerID})
}

func (r *SQLOrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.FindAll(ctx, domain.OrderFilter{Status: &status})
}

// Update writes the address and status of order, provided the stored row is
// still in expected status.
func (r *SQLOrderRepository) Update(ctx context.Context, tx *sql.Tx, order domain.Order, expected domain.OrderStatus, at time.Time) error {
	query := `UPDATE orders SET shipping_address = ?, status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, order.ShippingAddress, string(order.Status), toMillis(at), order.ID, string(expected))
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	return expectOneRow(result, order.ID, expected)
}

func (r *SQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, from, to domain.OrderStatus, at time.Time) error {
	query := `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, string(to), toMillis(at), id, string(from))
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return expectOneRow(result, id, from)
}

// Touch bumps updated_at while verifying the order is still in expected
// status. Item writes call it first so they commit only against an order
// that still accepts changes.
func (r *SQLOrderRepository) Touch(ctx context.Context, tx *sql.Tx, id uint, expected domain.OrderStatus, at time.Time) error {
	query := `UPDATE orders SET updated_at = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, toMillis(at), id, string(expected))
	if err != nil {
		return fmt.Errorf("touching order: %w", err)
	}

	return expectOneRow(result, id, expected)
}

func (r *SQLOrderRepository) Delete(ctx context.Context, tx *sql.Tx, id uint, expected domain.OrderStatus) error {
	query := `DELETE FROM orders WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, id, string(expected))
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	return expectOneRow(result, id, expected)
}

func expectOneRow(result sql.Result, id uint, expected domain.OrderStatus) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("Order ID %d is no longer in %s status", id, expected))
	}

	return nil
}
