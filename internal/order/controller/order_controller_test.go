package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orders/internal/domain"
	"orders/internal/dto"
	apperrors "orders/internal/errors"
	"orders/internal/validation"
)

type mockOrderUseCase struct {
	CreateOrderFunc  func(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error)
	ListOrdersFunc   func(ctx context.Context, customerID, statusName string) ([]domain.Order, error)
	GetOrderFunc     func(ctx context.Context, id uint) (*domain.Order, error)
	UpdateOrderFunc  func(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error)
	UpdateStatusFunc func(ctx context.Context, id uint, requestedStatus string) (*domain.Order, error)
	DeleteOrderFunc  func(ctx context.Context, id uint) error
	ListItemsFunc    func(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error)
	AddItemFunc      func(ctx context.Context, orderID uint, item domain.OrderItem) (*domain.OrderItem, error)
	GetItemFunc      func(ctx context.Context, orderID, itemID uint) (*domain.OrderItem, error)
	UpdateItemFunc   func(ctx context.Context, orderID, itemID uint, quantity int, price float64) (*domain.OrderItem, error)
	DeleteItemFunc   func(ctx context.Context, orderID, itemID uint) error
}

func (m *mockOrderUseCase) CreateOrder(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error) {
	return m.CreateOrderFunc(ctx, order, requestedStatus)
}

func (m *mockOrderUseCase) ListOrders(ctx context.Context, customerID, statusName string) ([]domain.Order, error) {
	return m.ListOrdersFunc(ctx, customerID, statusName)
}

func (m *mockOrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *mockOrderUseCase) UpdateOrder(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error) {
	return m.UpdateOrderFunc(ctx, id, shippingAddress, requestedStatus)
}

func (m *mockOrderUseCase) UpdateStatus(ctx context.Context, id uint, requestedStatus string) (*domain.Order, error) {
	return m.UpdateStatusFunc(ctx, id, requestedStatus)
}

func (m *mockOrderUseCase) DeleteOrder(ctx context.Context, id uint) error {
	return m.DeleteOrderFunc(ctx, id)
}

func (m *mockOrderUseCase) ListItems(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error) {
	return m.ListItemsFunc(ctx, orderID, filter)
}

func (m *mockOrderUseCase) AddItem(ctx context.Context, orderID uint, item domain.OrderItem) (*domain.OrderItem, error) {
	return m.AddItemFunc(ctx, orderID, item)
}

func (m *mockOrderUseCase) GetItem(ctx context.Context, orderID, itemID uint) (*domain.OrderItem, error) {
	return m.GetItemFunc(ctx, orderID, itemID)
}

func (m *mockOrderUseCase) UpdateItem(ctx context.Context, orderID, itemID uint, quantity int, price float64) (*domain.OrderItem, error) {
	return m.UpdateItemFunc(ctx, orderID, itemID, quantity, price)
}

func (m *mockOrderUseCase) DeleteItem(ctx context.Context, orderID, itemID uint) error {
	return m.DeleteItemFunc(ctx, orderID, itemID)
}

func newTestRouter(uc OrderUseCase) http.Handler {
	r := chi.NewRouter()
	NewController(uc, validation.New(), zap.NewNop()).Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Code, resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, resp.TraceID, rec.Header().Get("X-Trace-Id"))
	return resp
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:              1,
		CustomerID:      "42",
		ShippingAddress: "1 Main St",
		Status:          domain.OrderStatusCreated,
		CreatedAt:       time.Date(2024, 1, 22, 17, 0, 52, 0, time.UTC),
		Items:           []domain.OrderItem{{ID: 3, OrderID: 1, ProductID: "1", ProductDescription: "Glucose", Quantity: 2, Price: 23.4}},
	}
}

// Tests

func TestCreateOrder_Created(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error) {
			assert.Equal(t, "42", order.CustomerID)
			assert.Equal(t, "CREATED", requestedStatus)
			require.Len(t, order.Items, 1)
			assert.Equal(t, "1", order.Items[0].ProductID)
			return sampleOrder(), nil
		},
	}

	body := `{"customer_id": "42", "shipping_address": "1 Main St", "status": "CREATED",
		"items": [{"product_id": 1, "quantity": 2, "price": 23.4, "product_description": "Glucose"}]}`
	rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/orders/1", rec.Header().Get("Location"))

	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CREATED", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 23.4, resp.Items[0].Price)
}

func TestCreateOrder_MissingFields(t *testing.T) {
	rec := doRequest(t, newTestRouter(&mockOrderUseCase{}), http.MethodPost, "/orders", `{"status": "CREATED"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Len(t, resp.Details, 2)
}

func TestCreateOrder_UnsupportedMediaType(t *testing.T) {
	h := newTestRouter(&mockOrderUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", decodeError(t, rec).Code)

	rec = doRequest(t, h, http.MethodPost, "/orders", "")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCreateOrder_ContentTypeWithCharset(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, order domain.Order, requestedStatus string) (*domain.Order, error) {
			return sampleOrder(), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customer_id": "42", "shipping_address": "x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	newTestRouter(uc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NewNotFoundError("Order with id '9' was not found."), http.StatusNotFound, "NOT_FOUND"},
		{"invalid status", &domain.InvalidStatusError{Value: "LOST"}, http.StatusBadRequest, "INVALID_STATUS"},
		{"transition", &domain.TransitionError{From: domain.OrderStatusCreated, To: domain.OrderStatusCompleted}, http.StatusBadRequest, "INVALID_TRANSITION"},
		{"conflict", apperrors.NewConflictError("Order ID 9 cannot be updated in its current status"), http.StatusBadRequest, "INVALID_STATE"},
		{"internal", apperrors.NewInternalError("reading order", errors.New("driver: bad connection")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockOrderUseCase{
				GetOrderFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
					return nil, tt.err
				},
			}

			rec := doRequest(t, newTestRouter(uc), http.MethodGet, "/orders/9", "")

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	uc := &mockOrderUseCase{
		GetOrderFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return nil, apperrors.NewInternalError("reading order", errors.New("secret dsn"))
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodGet, "/orders/9", "")
	assert.NotContains(t, rec.Body.String(), "secret dsn")
}

func TestGetOrder_InvalidID(t *testing.T) {
	rec := doRequest(t, newTestRouter(&mockOrderUseCase{}), http.MethodGet, "/orders/abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "orderId", resp.Details[0].Field)
}

func TestListOrders_PassesQuery(t *testing.T) {
	uc := &mockOrderUseCase{
		ListOrdersFunc: func(ctx context.Context, customerID, statusName string) ([]domain.Order, error) {
			assert.Equal(t, "42", customerID)
			assert.Equal(t, "PROCESSING", statusName)
			return []domain.Order{}, nil
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodGet, "/orders?customer_id=42&status_name=PROCESSING", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateOrder(t *testing.T) {
	uc := &mockOrderUseCase{
		UpdateOrderFunc: func(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error) {
			assert.Equal(t, uint(1), id)
			require.NotNil(t, shippingAddress)
			assert.Equal(t, "1428 Elm St", *shippingAddress)
			assert.Equal(t, "", requestedStatus)
			order := sampleOrder()
			order.ShippingAddress = *shippingAddress
			return order, nil
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodPut, "/orders/1", `{"shipping_address": "1428 Elm St"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1428 Elm St")
}

func TestUpdateOrder_StatusOnly(t *testing.T) {
	uc := &mockOrderUseCase{
		UpdateOrderFunc: func(ctx context.Context, id uint, shippingAddress *string, requestedStatus string) (*domain.Order, error) {
			assert.Nil(t, shippingAddress)
			assert.Equal(t, "PROCESSING", requestedStatus)
			order := sampleOrder()
			order.Status = domain.OrderStatusProcessing
			return order, nil
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodPut, "/orders/1", `{"status": "PROCESSING"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"PROCESSING"`)
}

func TestUpdateOrder_RequiresAChange(t *testing.T) {
	h := newTestRouter(&mockOrderUseCase{})

	for _, body := range []string{`{}`, `{"shipping_address": ""}`, `{"customer_id": "9"}`} {
		rec := doRequest(t, h, http.MethodPut, "/orders/1", body)

		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	}
}

func TestUpdateStatus_RequiresStatus(t *testing.T) {
	rec := doRequest(t, newTestRouter(&mockOrderUseCase{}), http.MethodPut, "/orders/1/status", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestDeleteOrder_NoContent(t *testing.T) {
	uc := &mockOrderUseCase{
		DeleteOrderFunc: func(ctx context.Context, id uint) error { return nil },
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodDelete, "/orders/1", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAddItem_Location(t *testing.T) {
	uc := &mockOrderUseCase{
		AddItemFunc: func(ctx context.Context, orderID uint, item domain.OrderItem) (*domain.OrderItem, error) {
			assert.Equal(t, 5, item.Quantity)
			assert.Equal(t, 1.25, item.Price)
			item.ID = 7
			return &item, nil
		},
	}

	body := `{"product_id": "9", "product_description": "Tea", "quantity": "5", "price": "1.25"}`
	rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/orders/1/items", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/orders/1/item/7", rec.Header().Get("Location"))
}

func TestListItems_Filters(t *testing.T) {
	uc := &mockOrderUseCase{
		ListItemsFunc: func(ctx context.Context, orderID uint, filter domain.ItemFilter) ([]domain.OrderItem, error) {
			require.NotNil(t, filter.ProductID)
			require.NotNil(t, filter.Quantity)
			require.NotNil(t, filter.Price)
			assert.Equal(t, "9", *filter.ProductID)
			assert.Equal(t, 2, *filter.Quantity)
			assert.Equal(t, 3.5, *filter.Price)
			return []domain.OrderItem{}, nil
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodGet, "/orders/1/items?product_id=9&quantity=2&price=3.5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, newTestRouter(uc), http.MethodGet, "/orders/1/items?quantity=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateItem(t *testing.T) {
	uc := &mockOrderUseCase{
		UpdateItemFunc: func(ctx context.Context, orderID, itemID uint, quantity int, price float64) (*domain.OrderItem, error) {
			return &domain.OrderItem{ID: itemID, OrderID: orderID, Quantity: quantity, Price: price}, nil
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodPut, "/orders/1/item/3", `{"quantity": 4, "price": 0}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Quantity)
	assert.Equal(t, 0.0, resp.Price)
}

func TestDeleteItem_OrderNotCreated(t *testing.T) {
	uc := &mockOrderUseCase{
		DeleteItemFunc: func(ctx context.Context, orderID, itemID uint) error {
			return apperrors.NewConflictError("Order ID 1 cannot be updated in its current status")
		},
	}

	rec := doRequest(t, newTestRouter(uc), http.MethodDelete, "/orders/1/item/3", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order ID 1 cannot be updated in its current status", decodeError(t, rec).Message)
}

func TestGetItem_InvalidIDs(t *testing.T) {
	rec := doRequest(t, newTestRouter(&mockOrderUseCase{}), http.MethodGet, "/orders/x/item/0", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeError(t, rec).Details, 2)
}
