package application

import (
	"context"
	"time"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
)

// Read-only lookups backing the query API. No lifecycle logic here.

func (s *OrdersService) GetOrderByID(ctx context.Context, id int64) (*domain.ClientOrder, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *OrdersService) GetAllOrders(ctx context.Context) ([]domain.ClientOrder, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrdersService) GetOrdersByClientNIF(ctx context.Context, nif int64) ([]domain.ClientOrder, error) {
	return s.store.ListOrdersByNIF(ctx, nif)
}

func (s *OrdersService) GetItemsDueOn(ctx context.Context, date time.Time) ([]domain.OrderItem, error) {
	return s.store.ListItemsDueOn(ctx, date)
}

func (s *OrdersService) GetItemsByType(ctx context.Context, productType int) ([]domain.OrderItem, error) {
	return s.store.ListItemsByType(ctx, productType)
}

func (s *OrdersService) GetClientByNIF(ctx context.Context, nif int64) (*domain.Client, error) {
	return s.store.GetClientByNIF(ctx, nif)
}
