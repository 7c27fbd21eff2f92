package presentation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
	"github.com/feupindustrial/erp-orders-service/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeService struct {
	completedID  int64
	completedAt  time.Time
	completeOK   bool
	completeErr  error
	orders       []domain.ClientOrder
	items        []domain.OrderItem
	client       *domain.Client
	orderByID    *domain.ClientOrder
	orderByIDErr error
}

func (f *fakeService) MarkItemCompleted(_ context.Context, itemID int64, at time.Time) (bool, error) {
	f.completedID = itemID
	f.completedAt = at
	return f.completeOK, f.completeErr
}

func (f *fakeService) GetOrderByID(context.Context, int64) (*domain.ClientOrder, error) {
	return f.orderByID, f.orderByIDErr
}
func (f *fakeService) GetAllOrders(context.Context) ([]domain.ClientOrder, error) {
	return f.orders, nil
}
func (f *fakeService) GetOrdersByClientNIF(context.Context, int64) ([]domain.ClientOrder, error) {
	return f.orders, nil
}
func (f *fakeService) GetItemsDueOn(context.Context, time.Time) ([]domain.OrderItem, error) {
	return f.items, nil
}
func (f *fakeService) GetItemsByType(context.Context, int) ([]domain.OrderItem, error) {
	return f.items, nil
}
func (f *fakeService) GetClientByNIF(context.Context, int64) (*domain.Client, error) {
	if f.client == nil {
		return nil, repository.ErrNotFound
	}
	return f.client, nil
}

type fakePublisher struct {
	published []domain.OrderRequest
	err       error
}

func (f *fakePublisher) PublishSubmission(_ context.Context, req domain.OrderRequest) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	return nil
}

func newRouter(svc OrderService, pub Publisher) chi.Router {
	r := chi.NewRouter()
	NewOrdersHandler(svc, pub).Register(r)
	return r
}

func TestSubmitOrderAccepted(t *testing.T) {
	pub := &fakePublisher{}
	r := newRouter(&fakeService{}, pub)

	body := `{"name":"Acme Tools","nif":123456789,"orderID":42,` +
		`"orders":[{"type":5,"quantity":10,"dDate":7,"penalty":2.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, int64(42), pub.published[0].OrderID)
}

func TestSubmitOrderInvalidBody(t *testing.T) {
	pub := &fakePublisher{}
	r := newRouter(&fakeService{}, pub)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"name":"x"`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.published)
}

func TestSubmitOrderUnsupportedProductType(t *testing.T) {
	pub := &fakePublisher{}
	r := newRouter(&fakeService{}, pub)

	body := `{"name":"Acme Tools","nif":123456789,"orderID":42,` +
		`"orders":[{"type":8,"quantity":10,"dDate":7,"penalty":2.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.published)
}

func TestSubmitOrderPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := newRouter(&fakeService{}, pub)

	body := `{"name":"Acme Tools","nif":123456789,"orderID":42,` +
		`"orders":[{"type":5,"quantity":10,"dDate":7,"penalty":2.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCompleteOrderItemFound(t *testing.T) {
	svc := &fakeService{completeOK: true}
	r := newRouter(svc, &fakePublisher{})

	body := `{"erpOrderItemId":42,"completionTime":"2024-05-20T10:30:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/api/erp/order-items/42/complete", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), svc.completedID)
	assert.Equal(t, time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC), svc.completedAt)
}

func TestCompleteOrderItemUnknown(t *testing.T) {
	svc := &fakeService{completeOK: false}
	r := newRouter(svc, &fakePublisher{})

	body := `{"erpOrderItemId":999,"completionTime":"2024-05-20T10:30:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/api/erp/order-items/999/complete", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteOrderItemBodyIDWins(t *testing.T) {
	svc := &fakeService{completeOK: true}
	r := newRouter(svc, &fakePublisher{})

	body := `{"erpOrderItemId":7,"completionTime":"2024-05-20T10:30:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/api/erp/order-items/42/complete", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), svc.completedID)
}

func TestCompleteOrderItemMissingTime(t *testing.T) {
	r := newRouter(&fakeService{completeOK: true}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodPut, "/api/erp/order-items/42/complete",
		strings.NewReader(`{"erpOrderItemId":42}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	svc := &fakeService{orderByIDErr: repository.ErrNotFound}
	r := newRouter(svc, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/query/orders/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetItemsDueBadDate(t *testing.T) {
	r := newRouter(&fakeService{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/query/items/due?date=20-05-2024", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
