package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
	"github.com/feupindustrial/erp-orders-service/internal/repository"
)

// MarkItemCompleted records an MES completion notification for one item and
// rolls the result up into the parent order's status. Returns false when the
// item id is unknown. Duplicate notifications are idempotent: the item keeps
// its first completion timestamp and the parent is not touched again.
func (s *OrdersService) MarkItemCompleted(ctx context.Context, itemID int64, completedAt time.Time) (bool, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("completion for unknown item", "itemID", itemID)
			return false, nil
		}
		return false, fmt.Errorf("load item: %w", err)
	}

	if item.Status == domain.ItemCompleted {
		logger.Warn("duplicate completion ignored", "itemID", itemID)
		return true, nil
	}

	if err := s.store.CompleteItem(ctx, itemID, completedAt); err != nil {
		return false, fmt.Errorf("complete item: %w", err)
	}
	logger.Info("item completed", "itemID", itemID, "orderID", item.OrderID)

	// Reload the parent with all siblings fresh: a concurrently finishing
	// sibling or a running dispatch pass must not be overwritten from a stale
	// in-memory copy.
	order, err := s.store.GetOrder(ctx, item.OrderID)
	if err != nil {
		logger.Error("parent order missing for completed item", "itemID", itemID, "orderID", item.OrderID, "err", err)
		return true, nil
	}

	next := domain.RecomputeAfterCompletion(order.Status, order.Items)
	if next == order.Status {
		return true, nil
	}
	if err := s.store.UpdateOrderStatus(ctx, order.ID, next); err != nil {
		return true, fmt.Errorf("update order status: %w", err)
	}
	logger.Info("order status updated", "orderID", order.ID, "status", next)
	return true, nil
}
