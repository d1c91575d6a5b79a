package redisx

import "time"

const (
	// Cache of one order with its lines: order_view:{order_id} -> JSON
	KeyOrderView = "order_view:%d"

	// Cache of one storage level: stock_level:{sku} -> JSON
	KeyStockLevel = "stock_level:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderView  = 5 * time.Minute
	TTLStockLevel = time.Minute
	TTLDedup      = 48 * time.Hour
)
