package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrOrderExists = errors.New("order already exists")
)

const pgUniqueViolation = "23505"

// ErpRepository is the single shared mutable resource of the service. Every
// exported method is atomic on its own: multi-row writes run in one
// transaction, everything else is a single statement.
type ErpRepository struct {
	pool *pgxpool.Pool
}

func NewErpRepository(pool *pgxpool.Pool) *ErpRepository {
	return &ErpRepository{pool: pool}
}

// CreateOrder persists a new order with its items in one transaction,
// creating the client on first contact. The (client_id, client_order_id)
// unique constraint is the dedup backstop: a concurrent duplicate surfaces
// as ErrOrderExists, never as a half-written order.
func (r *ErpRepository) CreateOrder(ctx context.Context, clientName string, nif int64, o *domain.ClientOrder) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx,
		`INSERT INTO clients (name, nif) VALUES ($1, $2) ON CONFLICT (nif) DO NOTHING`,
		clientName, nif,
	); err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}

	var clientID int64
	if err = tx.QueryRow(ctx, `SELECT id FROM clients WHERE nif = $1`, nif).Scan(&clientID); err != nil {
		return fmt.Errorf("load client id: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO client_orders (client_id, client_order_id, received_at, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		clientID, o.ClientOrderID, o.ReceivedAt, o.Status,
	).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_type, quantity, due_date, penalty_per_day, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			o.ID, it.ProductType, it.Quantity, it.DueDate, it.PenaltyPerDay, it.Status,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range o.Items {
		if err = br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert item: %w", err)
		}
		o.Items[i].OrderID = o.ID
	}
	if err = br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil

	o.ClientID = clientID
	return nil
}

// FindOrderID resolves the dedup key (client NIF, client order id) to an
// internal order id.
func (r *ErpRepository) FindOrderID(ctx context.Context, nif, clientOrderID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT o.id
		 FROM client_orders o
		 JOIN clients c ON c.id = o.client_id
		 WHERE c.nif = $1 AND o.client_order_id = $2`,
		nif, clientOrderID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("find order id: %w", err)
	}
	return id, nil
}

// GetOrder loads an order together with all of its items, fresh from the
// store. Reconciliation depends on this read never being served from a cache.
func (r *ErpRepository) GetOrder(ctx context.Context, id int64) (*domain.ClientOrder, error) {
	o := &domain.ClientOrder{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, client_id, client_order_id, received_at, status
		 FROM client_orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.ClientID, &o.ClientOrderID, &o.ReceivedAt, &o.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	rows, err := r.pool.Query(ctx, itemColumns+` FROM order_items oi WHERE oi.order_id = $1 ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	o.Items, err = scanItems(rows)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *ErpRepository) GetItem(ctx context.Context, id int64) (*domain.OrderItem, error) {
	row := r.pool.QueryRow(ctx, itemColumns+` FROM order_items oi WHERE oi.id = $1`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	return it, nil
}

// ListDispatchable returns the items a dispatch pass may consider:
// PENDING or FAILED_TO_SEND items whose parent order is still PENDING,
// earliest due date first, parent order id as tie-break.
func (r *ErpRepository) ListDispatchable(ctx context.Context) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		itemColumns+`
		 FROM order_items oi
		 JOIN client_orders o ON o.id = oi.order_id
		 WHERE oi.status = ANY($1) AND o.status = $2
		 ORDER BY oi.due_date ASC, oi.order_id ASC, oi.id ASC`,
		[]string{string(domain.ItemPending), string(domain.ItemFailedToSend)},
		domain.OrderPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list dispatchable items: %w", err)
	}
	return scanItems(rows)
}

func (r *ErpRepository) UpdateItemStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE order_items SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteItem marks an item COMPLETED and stamps its completion time. The
// status guard makes a duplicate notification a no-op at the row level, so
// the first timestamp is never overwritten.
func (r *ErpRepository) CompleteItem(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE order_items SET status = $2, completed_at = $3 WHERE id = $1 AND status <> $2`,
		id, domain.ItemCompleted, at,
	)
	if err != nil {
		return fmt.Errorf("complete item: %w", err)
	}
	return nil
}

func (r *ErpRepository) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE client_orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const itemColumns = `SELECT oi.id, oi.order_id, oi.product_type, oi.quantity, oi.due_date, oi.penalty_per_day, oi.status, oi.completed_at`

func scanItem(row pgx.Row) (*domain.OrderItem, error) {
	it := &domain.OrderItem{}
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductType, &it.Quantity, &it.DueDate,
		&it.PenaltyPerDay, &it.Status, &it.CompletedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func scanItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	defer rows.Close()
	var items []domain.OrderItem
	for rows.Next() {
		it := domain.OrderItem{}
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductType, &it.Quantity, &it.DueDate,
			&it.PenaltyPerDay, &it.Status, &it.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
