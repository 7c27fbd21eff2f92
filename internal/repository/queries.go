package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
)

// Read side of the store, consumed by the query API only.

func (r *ErpRepository) GetClientByNIF(ctx context.Context, nif int64) (*domain.Client, error) {
	c := &domain.Client{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, nif FROM clients WHERE nif = $1`, nif).
		Scan(&c.ID, &c.Name, &c.NIF)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	return c, nil
}

func (r *ErpRepository) ListOrders(ctx context.Context) ([]domain.ClientOrder, error) {
	return r.listOrders(ctx,
		`SELECT id, client_id, client_order_id, received_at, status
		 FROM client_orders ORDER BY id`)
}

func (r *ErpRepository) ListOrdersByNIF(ctx context.Context, nif int64) ([]domain.ClientOrder, error) {
	return r.listOrders(ctx,
		`SELECT o.id, o.client_id, o.client_order_id, o.received_at, o.status
		 FROM client_orders o
		 JOIN clients c ON c.id = o.client_id
		 WHERE c.nif = $1 ORDER BY o.id`, nif)
}

func (r *ErpRepository) ListItemsDueOn(ctx context.Context, date time.Time) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		itemColumns+` FROM order_items oi WHERE oi.due_date = $1 ORDER BY oi.id`, date)
	if err != nil {
		return nil, fmt.Errorf("list items by due date: %w", err)
	}
	return scanItems(rows)
}

func (r *ErpRepository) ListItemsByType(ctx context.Context, productType int) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		itemColumns+` FROM order_items oi WHERE oi.product_type = $1 ORDER BY oi.id`, productType)
	if err != nil {
		return nil, fmt.Errorf("list items by type: %w", err)
	}
	return scanItems(rows)
}

func (r *ErpRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.ClientOrder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.ClientOrder
	index := make(map[int64]int)
	var ids []int64
	for rows.Next() {
		o := domain.ClientOrder{}
		if err = rows.Scan(&o.ID, &o.ClientID, &o.ClientOrderID, &o.ReceivedAt, &o.Status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.pool.Query(ctx,
		itemColumns+` FROM order_items oi WHERE oi.order_id = ANY($1) ORDER BY oi.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	items, err := scanItems(itemRows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, nil
}
