package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/domain"
)

func TestNewStatusEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	order := domain.Order{ID: 3, CustomerID: "42", Status: domain.OrderStatusProcessing}

	event := NewStatusEvent(order, domain.OrderStatusCreated, at)

	assert.Equal(t, uint(3), event.OrderID)
	assert.Equal(t, "PROCESSING", event.Status)
	assert.Equal(t, "CREATED", event.PreviousStatus)
	assert.Equal(t, "42", event.CustomerID)
	assert.Nil(t, event.ItemID)
}

func TestNewStatusEvent_UnchangedOmitsPrevious(t *testing.T) {
	order := domain.Order{ID: 3, Status: domain.OrderStatusCreated}

	data, err := json.Marshal(NewStatusEvent(order, domain.OrderStatusCreated, time.Now()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous_status")
	assert.NotContains(t, string(data), "item_id")
}

func TestNewItemEvent(t *testing.T) {
	event := NewItemEvent(domain.Order{ID: 3, Status: domain.OrderStatusCreated}, 8, time.Now())

	require.NotNil(t, event.ItemID)
	assert.Equal(t, uint(8), *event.ItemID)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), OrderCreated, OrderEvent{}))
}
