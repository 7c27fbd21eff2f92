package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
)

func submission() domain.OrderRequest {
	return domain.OrderRequest{
		Name:    "Acme Tools",
		NIF:     123456789,
		OrderID: 42,
		Items: []domain.ItemRequest{
			{Type: 5, Quantity: 10, DueDays: 7, Penalty: 2.5},
			{Type: 9, Quantity: 3, DueDays: 14, Penalty: 0},
		},
	}
}

func TestProcessOrderPersistsOrderWithItems(t *testing.T) {
	store := newFakeStore()
	svc := NewOrdersService(store)
	svc.now = func() time.Time { return time.Date(2024, 4, 10, 15, 30, 0, 0, time.UTC) }

	require.NoError(t, svc.ProcessOrder(context.Background(), submission()))

	require.Len(t, store.orders, 1)
	require.Len(t, store.items, 2)
	assert.Len(t, store.clients, 1)
	assert.Equal(t, "Acme Tools", store.clients[123456789].Name)

	for _, o := range store.orders {
		assert.Equal(t, domain.OrderPending, o.Status)
		assert.Equal(t, int64(42), o.ClientOrderID)
	}
	var dueDates []time.Time
	for _, it := range store.items {
		assert.Equal(t, domain.ItemPending, it.Status)
		assert.Nil(t, it.CompletedAt)
		dueDates = append(dueDates, it.DueDate)
	}
	assert.Contains(t, dueDates, time.Date(2024, 4, 17, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, dueDates, time.Date(2024, 4, 24, 0, 0, 0, 0, time.UTC))
}

func TestProcessOrderDuplicateIsDropped(t *testing.T) {
	store := newFakeStore()
	svc := NewOrdersService(store)

	require.NoError(t, svc.ProcessOrder(context.Background(), submission()))
	require.NoError(t, svc.ProcessOrder(context.Background(), submission()))

	assert.Len(t, store.orders, 1)
	assert.Len(t, store.items, 2)
}

func TestProcessOrderSameOrderIDDifferentClient(t *testing.T) {
	store := newFakeStore()
	svc := NewOrdersService(store)

	first := submission()
	second := submission()
	second.NIF = 987654321
	second.Name = "Borges Metalworks"

	require.NoError(t, svc.ProcessOrder(context.Background(), first))
	require.NoError(t, svc.ProcessOrder(context.Background(), second))

	assert.Len(t, store.orders, 2)
	assert.Len(t, store.clients, 2)
}

func TestProcessOrderInvalidItemIsAllOrNothing(t *testing.T) {
	store := newFakeStore()
	svc := NewOrdersService(store)

	req := submission()
	req.Items = append(req.Items, domain.ItemRequest{Type: 8, Quantity: 1, DueDays: 3, Penalty: 0})

	require.NoError(t, svc.ProcessOrder(context.Background(), req))

	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
	assert.Empty(t, store.clients)
}

func TestProcessOrderStoreFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	svc := NewOrdersService(store)

	err := svc.ProcessOrder(context.Background(), submission())
	require.Error(t, err)
	assert.Empty(t, store.orders)
}
