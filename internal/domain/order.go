package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderSentToMes  OrderStatus = "SENT_TO_MES"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
)

type ItemStatus string

const (
	ItemPending      ItemStatus = "PENDING"
	ItemSentToMes    ItemStatus = "SENT_TO_MES"
	ItemCompleted    ItemStatus = "COMPLETED"
	ItemFailedToSend ItemStatus = "FAILED_TO_SEND"
)

type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	NIF  int64  `json:"nif"`
}

type ClientOrder struct {
	ID            int64       `json:"id"`
	ClientID      int64       `json:"clientId"`
	ClientOrderID int64       `json:"clientOrderId"`
	ReceivedAt    time.Time   `json:"receivedTimestamp"`
	Status        OrderStatus `json:"status"`
	Items         []OrderItem `json:"items"`
}

type OrderItem struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"orderId"`
	ProductType   int        `json:"productType"`
	Quantity      int        `json:"quantity"`
	DueDate       time.Time  `json:"dueDate"`
	PenaltyPerDay float64    `json:"penaltyPerDay"`
	Status        ItemStatus `json:"status"`
	CompletedAt   *time.Time `json:"completionTimestamp,omitempty"`
}

// RecomputeAfterDispatch returns the order status implied by its items once a
// dispatch pass has finished. An order advances to SENT_TO_MES only when every
// item got through; items left PENDING or FAILED_TO_SEND keep it PENDING so the
// next pass picks them up again.
func RecomputeAfterDispatch(current OrderStatus, items []OrderItem) OrderStatus {
	if current != OrderPending || len(items) == 0 {
		return current
	}
	for _, it := range items {
		if it.Status == ItemPending || it.Status == ItemFailedToSend {
			return OrderPending
		}
	}
	return OrderSentToMes
}

// RecomputeAfterCompletion returns the order status implied by its items after
// one of them was marked COMPLETED. All items completed closes the order; a
// first completion on a fully sent order moves it to PROCESSING.
func RecomputeAfterCompletion(current OrderStatus, items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return current
	}
	all := true
	for _, it := range items {
		if it.Status != ItemCompleted {
			all = false
			break
		}
	}
	if all {
		return OrderCompleted
	}
	if current == OrderSentToMes {
		return OrderProcessing
	}
	return current
}
