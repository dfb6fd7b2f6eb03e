package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/domain"
)

func TestFlexString_AcceptsStringAndNumber(t *testing.T) {
	var req ItemRequest

	require.NoError(t, json.Unmarshal([]byte(`{"product_id": 12}`), &req))
	assert.Equal(t, FlexString("12"), req.ProductID)

	require.NoError(t, json.Unmarshal([]byte(`{"product_id": "abc"}`), &req))
	assert.Equal(t, FlexString("abc"), req.ProductID)
}

func TestFlexString_RejectsObject(t *testing.T) {
	var req ItemRequest
	err := json.Unmarshal([]byte(`{"product_id": {"a": 1}}`), &req)

	var typeErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestFlexNumbers_CoerceNumericStrings(t *testing.T) {
	var req ItemRequest
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": "3", "price": " 23.4 "}`), &req))

	require.NotNil(t, req.Quantity)
	require.NotNil(t, req.Price)
	assert.Equal(t, FlexInt(3), *req.Quantity)
	assert.Equal(t, FlexFloat(23.4), *req.Price)
}

func TestFlexNumbers_RejectNonNumeric(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"quantity word", `{"quantity": "three"}`},
		{"quantity fraction", `{"quantity": 1.5}`},
		{"quantity bool", `{"quantity": true}`},
		{"price word", `{"price": "free"}`},
		{"price array", `{"price": [1]}`},
		{"price infinity", `{"price": "Infinity"}`},
		{"price inf", `{"price": "+Inf"}`},
		{"price negative inf", `{"price": "-inf"}`},
		{"price nan", `{"price": "NaN"}`},
		{"price overflow", `{"price": 1e400}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ItemRequest
			err := json.Unmarshal([]byte(tt.body), &req)

			var typeErr *json.UnmarshalTypeError
			assert.ErrorAs(t, err, &typeErr)
		})
	}
}

func TestTimestamp_ParsesBothLayouts(t *testing.T) {
	want := time.Date(2024, 1, 22, 17, 0, 52, 0, time.UTC)

	for _, text := range []string{"Mon, 22 Jan 2024 17:00:52 GMT", "2024-01-22T17:00:52Z", "2024-01-22T18:00:52+01:00"} {
		parsed, err := ParseTimestamp(text)
		require.NoError(t, err, text)
		assert.True(t, want.Equal(parsed), text)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_MarshalsHTTPDate(t *testing.T) {
	data, err := json.Marshal(NewTimestamp(time.Date(2024, 1, 22, 17, 0, 52, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"Mon, 22 Jan 2024 17:00:52 GMT"`, string(data))
}

func TestCreateOrderRequest_ToDomain_DefaultsCreatedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	quantity := FlexInt(2)
	price := FlexFloat(9.5)

	order := CreateOrderRequest{
		CustomerID:      "7",
		ShippingAddress: "1 Main St",
		Items: []ItemRequest{
			{ProductID: "p1", ProductDescription: "Pen", Quantity: &quantity, Price: &price},
		},
	}.ToDomain(now)

	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 9.5, order.Items[0].Price)
}

// An order written as a response body must read back as an equivalent
// create request.
func TestOrderResponse_RoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 1, 22, 17, 0, 52, 0, time.UTC)
	order := domain.Order{
		ID:              5,
		CustomerID:      "42",
		ShippingAddress: "1428 Elm St",
		Status:          domain.OrderStatusProcessing,
		CreatedAt:       createdAt,
		Items: []domain.OrderItem{
			{ID: 9, OrderID: 5, ProductID: "17", ProductDescription: "Glucose", Quantity: 2, Price: 23.4},
		},
	}

	data, err := json.Marshal(NewOrderResponse(order))
	require.NoError(t, err)

	var decoded CreateOrderRequest
	require.NoError(t, json.Unmarshal(data, &decoded))

	back := decoded.ToDomain(time.Now())
	assert.Equal(t, order.CustomerID, back.CustomerID)
	assert.Equal(t, order.ShippingAddress, back.ShippingAddress)
	assert.Equal(t, order.Status.String(), decoded.Status)
	assert.Equal(t, createdAt, back.CreatedAt)
	require.Len(t, back.Items, 1)
	assert.Equal(t, "17", back.Items[0].ProductID)
	assert.Equal(t, "Glucose", back.Items[0].ProductDescription)
	assert.Equal(t, 2, back.Items[0].Quantity)
	assert.Equal(t, 23.4, back.Items[0].Price)

	var item ItemResponse
	itemData, err := json.Marshal(NewItemResponse(order.Items[0]))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(itemData, &item))
	assert.Equal(t, NewItemResponse(order.Items[0]), item)
}

func TestNewOrderResponse_EmptyItemsEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(NewOrderResponse(domain.Order{ID: 1, Status: domain.OrderStatusCreated}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
	assert.NotContains(t, string(data), "updated_at")
}
