package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
)

// Store is the slice of the record store the dispatcher needs.
// *repository.ErpRepository satisfies it.
type Store interface {
	ListDispatchable(ctx context.Context) ([]domain.OrderItem, error)
	UpdateItemStatus(ctx context.Context, id int64, status domain.ItemStatus) error
	GetOrder(ctx context.Context, id int64) (*domain.ClientOrder, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// Transport sends one production unit to the MES and collapses every failure
// mode (timeout, network, 4xx, 5xx) to false.
type Transport interface {
	SendProductionOrder(ctx context.Context, po domain.ProductionOrder) bool
}

// Dispatcher runs the daily capacity-constrained dispatch pass: pick the
// eligible items earliest-due-first and offer each to the MES until the daily
// unit capacity is spoken for.
type Dispatcher struct {
	store    Store
	mes      Transport
	capacity int

	mu sync.Mutex
}

func NewDispatcher(store Store, mes Transport, capacity int) *Dispatcher {
	return &Dispatcher{store: store, mes: mes, capacity: capacity}
}

// RunPass executes one bounded dispatch pass. Admission is greedy in priority
// order with a hard stop: the first item whose quantity would push the
// attempted total over capacity ends the pass, even if a smaller item behind
// it would still fit. A failed send keeps its capacity slot for this pass
// (it was offered capacity) but the item stays retryable via FAILED_TO_SEND.
// At most one pass runs at a time.
func (d *Dispatcher) RunPass(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	items, err := d.store.ListDispatchable(ctx)
	if err != nil {
		return fmt.Errorf("list dispatchable items: %w", err)
	}
	if len(items) == 0 {
		logger.Info("dispatch pass: nothing to send")
		return nil
	}
	logger.Info("dispatch pass: starting", "candidates", len(items), "capacity", d.capacity)

	attempted := 0 // drives admission, counts every attempt
	sent := 0      // successful units only, for reporting
	touched := make(map[int64]struct{})

	for _, item := range items {
		if attempted+item.Quantity > d.capacity {
			logger.Info("dispatch pass: capacity reached, stopping",
				"attempted", attempted, "nextItemID", item.ID, "nextQty", item.Quantity)
			break
		}
		attempted += item.Quantity
		touched[item.OrderID] = struct{}{}

		ok := d.mes.SendProductionOrder(ctx, domain.ProductionOrder{
			OrderID:     item.OrderID,
			ItemID:      item.ID,
			ProductType: item.ProductType,
			Quantity:    item.Quantity,
			DueDate:     item.DueDate,
		})
		if ok {
			if err := d.store.UpdateItemStatus(ctx, item.ID, domain.ItemSentToMes); err != nil {
				return fmt.Errorf("mark item sent: %w", err)
			}
			sent += item.Quantity
			logger.Info("item sent to MES", "itemID", item.ID, "qty", item.Quantity, "sentUnits", sent)
		} else {
			if err := d.store.UpdateItemStatus(ctx, item.ID, domain.ItemFailedToSend); err != nil {
				return fmt.Errorf("mark item failed: %w", err)
			}
			logger.Warn("item failed to send", "itemID", item.ID, "orderID", item.OrderID)
		}
	}

	d.refreshTouchedOrders(ctx, touched)
	logger.Info("dispatch pass: finished", "attemptedUnits", attempted, "sentUnits", sent, "orders", len(touched))
	return nil
}

// refreshTouchedOrders recomputes the cached order status for every order
// that had an item attempted this pass.
func (d *Dispatcher) refreshTouchedOrders(ctx context.Context, ids map[int64]struct{}) {
	for id := range ids {
		order, err := d.store.GetOrder(ctx, id)
		if err != nil {
			logger.Warn("touched order vanished", "orderID", id, "err", err)
			continue
		}
		if len(order.Items) == 0 {
			logger.Warn("order has no items", "orderID", id)
			continue
		}
		next := domain.RecomputeAfterDispatch(order.Status, order.Items)
		if next == order.Status {
			continue
		}
		if err := d.store.UpdateOrderStatus(ctx, id, next); err != nil {
			logger.Warn("order status update failed", "orderID", id, "err", err)
			continue
		}
		logger.Info("order status updated", "orderID", id, "status", next)
	}
}
