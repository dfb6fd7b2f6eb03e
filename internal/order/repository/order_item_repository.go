package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"orders/internal/domain"
	"orders/internal/errors"
)

type SQLOrderItemRepository struct {
	db *sql.DB
}

func NewSQLOrderItemRepository(db *sql.DB) *SQLOrderItemRepository {
	return &SQLOrderItemRepository{db: db}
}

const itemColumns = `id, order_id, product_id, product_description, quantity, price`

func scanItem(row rowScanner) (domain.OrderItem, error) {
	var item domain.OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductDescription, &item.Quantity, &item.Price)
	return item, err
}

func (r *SQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	query := `INSERT INTO items (order_id, product_id, product_description, quantity, price) VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, item.OrderID, item.ProductID, item.ProductDescription, item.Quantity, item.Price)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *SQLOrderItemRepository) FindByID(ctx context.Context, id uint) (*domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Item with id '%d' was not found.", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order item by id: %w", err)
	}

	return &item, nil
}

func (r *SQLOrderItemRepository) FindAll(ctx context.Context) ([]domain.OrderItem, error) {
	return r.query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

// FindByOrderID lists one order's items, narrowed by every non-nil filter field.
func (r *SQLOrderItemRepository) FindByOrderID(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error) {
	conditions := []string{"order_id = ?"}
	args := []interface{}{orderID}

	if filter.ProductID != nil {
		conditions = append(conditions, "product_id = ?")
		args = append(args, *filter.ProductID)
	}
	if filter.Quantity != nil {
		conditions = append(conditions, "quantity = ?")
		args = append(args, *filter.Quantity)
	}
	if filter.Price != nil {
		conditions = append(conditions, "price = ?")
		args = append(args, *filter.Price)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY id`
	return r.query(ctx, query, args...)
}

// FindByOrderIDs loads the items of several orders in one query, grouped by order id.
func (r *SQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.OrderItem, error) {
	grouped := make(map[uint][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM items WHERE order_id IN (%s) ORDER BY id`,
		itemColumns, strings.Join(placeholders, ", "),
	)

	items, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (r *SQLOrderItemRepository) Update(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	query := `UPDATE items SET quantity = ?, price = ? WHERE id = ? AND order_id = ?`

	result, err := tx.ExecContext(ctx, query, item.Quantity, item.Price, item.ID, item.OrderID)
	if err != nil {
		return fmt.Errorf("updating order item: %w", err)
	}

	return expectItemRow(result, item.ID)
}

func (r *SQLOrderItemRepository) Delete(ctx context.Context, tx *sql.Tx, orderID, id uint) error {
	query := `DELETE FROM items WHERE id = ? AND order_id = ?`

	result, err := tx.ExecContext(ctx, query, id, orderID)
	if err != nil {
		return fmt.Errorf("deleting order item: %w", err)
	}

	return expectItemRow(result, id)
}

func (r *SQLOrderItemRepository) DeleteByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("deleting order items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected, nil
}

func (r *SQLOrderItemRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

func expectItemRow(result sql.Result, id uint) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Item with id '%d' was not found.", id))
	}

	return nil
}
