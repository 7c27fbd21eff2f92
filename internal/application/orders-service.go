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

// Store is the slice of the record store the order lifecycle needs.
// *repository.ErpRepository satisfies it.
type Store interface {
	FindOrderID(ctx context.Context, nif, clientOrderID int64) (int64, error)
	CreateOrder(ctx context.Context, clientName string, nif int64, o *domain.ClientOrder) error
	GetItem(ctx context.Context, id int64) (*domain.OrderItem, error)
	CompleteItem(ctx context.Context, id int64, at time.Time) error
	GetOrder(ctx context.Context, id int64) (*domain.ClientOrder, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	GetClientByNIF(ctx context.Context, nif int64) (*domain.Client, error)
	ListOrders(ctx context.Context) ([]domain.ClientOrder, error)
	ListOrdersByNIF(ctx context.Context, nif int64) ([]domain.ClientOrder, error)
	ListItemsDueOn(ctx context.Context, date time.Time) ([]domain.OrderItem, error)
	ListItemsByType(ctx context.Context, productType int) ([]domain.OrderItem, error)
}

type OrdersService struct {
	store Store
	now   func() time.Time
}

func NewOrdersService(store Store) *OrdersService {
	return &OrdersService{
		store: store,
		now:   time.Now,
	}
}

// ProcessOrder validates an incoming submission, drops duplicates and
// persists a new order with its items as one unit. Rejections are logged and
// swallowed: ingestion is fire-and-forget, there is no error channel back to
// the factory client. Only store failures return an error, so the ingestion
// adapter can retry the message.
func (s *OrdersService) ProcessOrder(ctx context.Context, req domain.OrderRequest) error {
	if err := req.Validate(); err != nil {
		logger.Warn("order request rejected", "nif", req.NIF, "orderID", req.OrderID, "err", err)
		return nil
	}

	if _, err := s.store.FindOrderID(ctx, req.NIF, req.OrderID); err == nil {
		logger.Warn("duplicate order ignored", "nif", req.NIF, "orderID", req.OrderID)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("dedup lookup: %w", err)
	}

	received := s.now().UTC()
	dueBase := time.Date(received.Year(), received.Month(), received.Day(), 0, 0, 0, 0, time.UTC)

	order := &domain.ClientOrder{
		ClientOrderID: req.OrderID,
		ReceivedAt:    received,
		Status:        domain.OrderPending,
		Items:         make([]domain.OrderItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductType:   it.Type,
			Quantity:      it.Quantity,
			DueDate:       dueBase.AddDate(0, 0, it.DueDays),
			PenaltyPerDay: it.Penalty,
			Status:        domain.ItemPending,
		})
	}

	if err := s.store.CreateOrder(ctx, req.Name, req.NIF, order); err != nil {
		if errors.Is(err, repository.ErrOrderExists) {
			logger.Warn("duplicate order ignored", "nif", req.NIF, "orderID", req.OrderID)
			return nil
		}
		return fmt.Errorf("save order: %w", err)
	}

	logger.Info("order saved", "id", order.ID, "nif", req.NIF, "orderID", req.OrderID, "items", len(order.Items))
	return nil
}
