package mes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
)

const productionOrderEndpoint = "/api/production-orders"

// Client talks to the Manufacturing Execution System. Error classification
// stays in here: the dispatcher only sees a boolean per production order.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

type productionOrderPayload struct {
	ErpOrderID     int64  `json:"erpOrderId"`
	ErpOrderItemID int64  `json:"erpOrderItemId"`
	ProductType    int    `json:"productType"`
	Quantity       int    `json:"quantity"`
	DueDate        string `json:"dueDate"`
}

// SendProductionOrder posts one production unit to the MES. Timeouts, network
// errors and non-2xx responses all collapse to false; the item stays
// retryable on the next dispatch pass.
func (c *Client) SendProductionOrder(ctx context.Context, po domain.ProductionOrder) bool {
	body, err := json.Marshal(productionOrderPayload{
		ErpOrderID:     po.OrderID,
		ErpOrderItemID: po.ItemID,
		ProductType:    po.ProductType,
		Quantity:       po.Quantity,
		DueDate:        po.DueDate.Format(time.DateOnly),
	})
	if err != nil {
		logger.Error("mes payload marshal failed", "itemID", po.ItemID, "err", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+productionOrderEndpoint, bytes.NewReader(body))
	if err != nil {
		logger.Error("mes request build failed", "itemID", po.ItemID, "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("mes request failed", "itemID", po.ItemID, "err", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("mes rejected production order", "itemID", po.ItemID, "status", resp.StatusCode)
		return false
	}
	return true
}
