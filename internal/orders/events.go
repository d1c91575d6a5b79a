package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventOrderDeleted  = "OrderDeleted"
	EventStockReserved = "StockReserved"
	EventStockReleased = "StockReleased"
	EventStockAdjusted = "StockAdjusted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id or sku
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type OrderCreatedPayload struct {
	OrderID int64       `json:"order_id"`
	UserID  int64       `json:"user_id"`
	Lines   []LineInput `json:"lines"`
}

type OrderDeletedPayload struct {
	OrderID int64 `json:"order_id"`
}

type StockReservedPayload struct {
	OrderID int64  `json:"order_id"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

type StockReleasedPayload struct {
	OrderID int64  `json:"order_id"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

type StockAdjustedPayload struct {
	SKU      string `json:"sku"`
	Delta    int    `json:"delta"`
	QtyAfter int    `json:"qty_after"`
}
