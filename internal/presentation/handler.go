package presentation

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
	"github.com/feupindustrial/erp-orders-service/internal/presentation/helpers"
	"github.com/feupindustrial/erp-orders-service/internal/repository"
)

// OrderService is what the HTTP surface needs from the application layer.
// *application.OrdersService satisfies it.
type OrderService interface {
	MarkItemCompleted(ctx context.Context, itemID int64, completedAt time.Time) (bool, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.ClientOrder, error)
	GetAllOrders(ctx context.Context) ([]domain.ClientOrder, error)
	GetOrdersByClientNIF(ctx context.Context, nif int64) ([]domain.ClientOrder, error)
	GetItemsDueOn(ctx context.Context, date time.Time) ([]domain.OrderItem, error)
	GetItemsByType(ctx context.Context, productType int) ([]domain.OrderItem, error)
	GetClientByNIF(ctx context.Context, nif int64) (*domain.Client, error)
}

// Publisher puts order submissions on the ingestion topic.
// *kafka.Producer satisfies it.
type Publisher interface {
	PublishSubmission(ctx context.Context, req domain.OrderRequest) error
}

type OrdersHandler struct {
	svc      OrderService
	producer Publisher
}

func NewOrdersHandler(svc OrderService, producer Publisher) *OrdersHandler {
	return &OrdersHandler{svc: svc, producer: producer}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders", h.SubmitOrder)
	r.Put("/api/erp/order-items/{id}/complete", h.CompleteOrderItem)
	r.Route("/api/query", func(r chi.Router) {
		r.Get("/orders/all", h.GetAllOrders)
		r.Get("/orders/{id}", h.GetOrderByID)
		r.Get("/orders/by-client-nif/{nif}", h.GetOrdersByNIF)
		r.Get("/items/by-type/{type}", h.GetItemsByType)
		r.Get("/items/due", h.GetItemsDue)
		r.Get("/clients/by-nif/{nif}", h.GetClientByNIF)
	})
}

// SubmitOrder takes an order submission over HTTP and publishes it to the
// ingestion topic. Intake itself stays asynchronous and uniform across the
// UDP, Kafka and HTTP channels, hence 202.
func (h *OrdersHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.producer.PublishSubmission(r.Context(), req); err != nil {
		logger.Error("submission publish failed", "nif", req.NIF, "orderID", req.OrderID, "err", err)
		helpers.HttpError(w, http.StatusBadGateway, "failed to enqueue order")
		return
	}

	helpers.WriteJSON(w, http.StatusAccepted, map[string]any{
		"status":  "accepted",
		"nif":     req.NIF,
		"orderID": req.OrderID,
	})
}

func (h *OrdersHandler) CompleteOrderItem(w http.ResponseWriter, r *http.Request) {
	pathID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body domain.ItemCompletion
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if body.CompletionTime.IsZero() {
		helpers.HttpError(w, http.StatusBadRequest, "completionTime is required")
		return
	}

	itemID := body.ItemID
	if itemID == 0 {
		itemID = pathID
	} else if itemID != pathID {
		logger.Warn("completion path/body id mismatch, using body", "path", pathID, "body", itemID)
	}

	found, err := h.svc.MarkItemCompleted(r.Context(), itemID, body.CompletionTime)
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to process completion")
		return
	}
	if !found {
		helpers.HttpError(w, http.StatusNotFound, "order item not found")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrdersHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetAllOrders(r.Context())
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "order not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) GetOrdersByNIF(w http.ResponseWriter, r *http.Request) {
	nif, err := strconv.ParseInt(chi.URLParam(r, "nif"), 10, 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid nif")
		return
	}
	orders, err := h.svc.GetOrdersByClientNIF(r.Context(), nif)
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetItemsByType(w http.ResponseWriter, r *http.Request) {
	typ, err := strconv.Atoi(chi.URLParam(r, "type"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid product type")
		return
	}
	items, err := h.svc.GetItemsByType(r.Context(), typ)
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, items)
}

func (h *OrdersHandler) GetItemsDue(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	items, err := h.svc.GetItemsDueOn(r.Context(), date)
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, items)
}

func (h *OrdersHandler) GetClientByNIF(w http.ResponseWriter, r *http.Request) {
	nif, err := strconv.ParseInt(chi.URLParam(r, "nif"), 10, 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid nif")
		return
	}
	client, err := h.svc.GetClientByNIF(r.Context(), nif)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "client not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get client")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, client)
}
