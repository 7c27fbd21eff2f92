package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() OrderRequest {
	return OrderRequest{
		Name:    "Acme Tools",
		NIF:     123456789,
		OrderID: 42,
		Items: []ItemRequest{
			{Type: 5, Quantity: 10, DueDays: 7, Penalty: 2.5},
			{Type: 9, Quantity: 3, DueDays: 14, Penalty: 0},
		},
	}
}

func TestOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*OrderRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *OrderRequest) {}, wantErr: false},
		{name: "blank_name", mutate: func(r *OrderRequest) { r.Name = "" }, wantErr: true},
		{name: "zero_nif", mutate: func(r *OrderRequest) { r.NIF = 0 }, wantErr: true},
		{name: "negative_order_id", mutate: func(r *OrderRequest) { r.OrderID = -1 }, wantErr: true},
		{name: "no_items", mutate: func(r *OrderRequest) { r.Items = nil }, wantErr: true},
		{name: "unsupported_type", mutate: func(r *OrderRequest) { r.Items[1].Type = 8 }, wantErr: true},
		{name: "zero_quantity", mutate: func(r *OrderRequest) { r.Items[0].Quantity = 0 }, wantErr: true},
		{name: "zero_due_days", mutate: func(r *OrderRequest) { r.Items[0].DueDays = 0 }, wantErr: true},
		{name: "negative_penalty", mutate: func(r *OrderRequest) { r.Items[0].Penalty = -1 }, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := validRequest()
			test.mutate(&req)
			err := req.Validate()
			if test.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSupportedProductType(t *testing.T) {
	for _, typ := range []int{5, 6, 7, 9} {
		assert.True(t, SupportedProductType(typ), "type %d", typ)
	}
	for _, typ := range []int{0, 1, 4, 8, 10, -5} {
		assert.False(t, SupportedProductType(typ), "type %d", typ)
	}
}

func items(statuses ...ItemStatus) []OrderItem {
	out := make([]OrderItem, len(statuses))
	for i, s := range statuses {
		out[i] = OrderItem{ID: int64(i + 1), Status: s}
	}
	return out
}

func TestRecomputeAfterDispatch(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		items   []OrderItem
		want    OrderStatus
	}{
		{"all_sent", OrderPending, items(ItemSentToMes, ItemSentToMes), OrderSentToMes},
		{"sent_and_completed", OrderPending, items(ItemSentToMes, ItemCompleted), OrderSentToMes},
		{"one_failed", OrderPending, items(ItemSentToMes, ItemFailedToSend), OrderPending},
		{"one_still_pending", OrderPending, items(ItemSentToMes, ItemPending), OrderPending},
		{"all_pending", OrderPending, items(ItemPending, ItemPending, ItemPending), OrderPending},
		{"not_pending_untouched", OrderProcessing, items(ItemSentToMes, ItemSentToMes), OrderProcessing},
		{"no_items_untouched", OrderPending, nil, OrderPending},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, RecomputeAfterDispatch(test.current, test.items))
		})
	}
}

func TestRecomputeAfterCompletion(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		items   []OrderItem
		want    OrderStatus
	}{
		{"all_completed", OrderSentToMes, items(ItemCompleted, ItemCompleted), OrderCompleted},
		{"all_completed_from_processing", OrderProcessing, items(ItemCompleted, ItemCompleted, ItemCompleted), OrderCompleted},
		{"partial_from_sent", OrderSentToMes, items(ItemCompleted, ItemSentToMes), OrderProcessing},
		{"partial_from_processing", OrderProcessing, items(ItemCompleted, ItemSentToMes), OrderProcessing},
		{"partial_from_pending", OrderPending, items(ItemCompleted, ItemPending), OrderPending},
		{"no_items_untouched", OrderSentToMes, nil, OrderSentToMes},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, RecomputeAfterCompletion(test.current, test.items))
		})
	}
}
