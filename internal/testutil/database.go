package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"orders/internal/config"
	"orders/internal/infrastructure/database"
)

// SetupTestDB opens a SQLite database in a temporary directory with the
// schema applied. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "orders_test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, db) })
	return db
}

// CleanupTestDB empties the tables and closes the handle.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	for _, table := range []string{"items", "orders"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// InsertOrder seeds an order row directly and returns its id.
func InsertOrder(t *testing.T, db *sql.DB, customerID, address, status string) uint {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO orders (customer_id, shipping_address, status, created_at) VALUES (?, ?, ?, ?)`,
		customerID, address, status, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		t.Fatalf("failed to insert order: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read order id: %v", err)
	}
	return uint(id)
}

// InsertItem seeds an item row directly and returns its id.
func InsertItem(t *testing.T, db *sql.DB, orderID uint, productID, description string, quantity int, price float64) uint {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO items (order_id, product_id, product_description, quantity, price) VALUES (?, ?, ?, ?, ?)`,
		orderID, productID, description, quantity, price,
	)
	if err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read item id: %v", err)
	}
	return uint(id)
}

// CountRows returns the number of rows in table matching where.
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
