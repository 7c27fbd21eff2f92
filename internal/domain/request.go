package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRequest = errors.New("invalid order request")

// OrderRequest is the wire shape of a client order submission, shared by the
// UDP listener, the Kafka topic and POST /api/orders.
type OrderRequest struct {
	Name    string        `json:"name"`
	NIF     int64         `json:"nif"`
	OrderID int64         `json:"orderID"`
	Items   []ItemRequest `json:"orders"`
}

type ItemRequest struct {
	Type     int     `json:"type"`
	Quantity int     `json:"quantity"`
	DueDays  int     `json:"dDate"`
	Penalty  float64 `json:"penalty"`
}

// Product types the factory can actually produce.
var supportedProductTypes = map[int]struct{}{
	5: {},
	6: {},
	7: {},
	9: {},
}

func SupportedProductType(t int) bool {
	_, ok := supportedProductTypes[t]
	return ok
}

func (r OrderRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: client name is blank", ErrInvalidRequest)
	}
	if r.NIF <= 0 {
		return fmt.Errorf("%w: nif must be positive", ErrInvalidRequest)
	}
	if r.OrderID <= 0 {
		return fmt.Errorf("%w: orderID must be positive", ErrInvalidRequest)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidRequest)
	}
	for i, it := range r.Items {
		if !SupportedProductType(it.Type) {
			return fmt.Errorf("%w: item %d has unsupported product type %d", ErrInvalidRequest, i, it.Type)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidRequest, i)
		}
		if it.DueDays <= 0 {
			return fmt.Errorf("%w: item %d dDate must be positive", ErrInvalidRequest, i)
		}
		if it.Penalty < 0 {
			return fmt.Errorf("%w: item %d penalty must not be negative", ErrInvalidRequest, i)
		}
	}
	return nil
}

// ProductionOrder is the unit of work handed to the MES for one order item.
type ProductionOrder struct {
	OrderID     int64
	ItemID      int64
	ProductType int
	Quantity    int
	DueDate     time.Time
}

// ItemCompletion is the MES notification that one item finished production.
type ItemCompletion struct {
	ItemID         int64     `json:"erpOrderItemId"`
	CompletionTime time.Time `json:"completionTime"`
}
