package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Product struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Storage is the quantity-on-hand ledger row for one sku. qty >= 0 holds
// after every committed transaction; the schema carries a matching check
// constraint.
type Storage struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

type Order struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

// OrderDetail is one line item, keyed by (order, sku).
type OrderDetail struct {
	OrderID int64     `json:"order_id"`
	SKU     string    `json:"sku"`
	Qty     int       `json:"qty"`
	Created time.Time `json:"created"`
}

// OrderView is an order together with its line items.
type OrderView struct {
	ID     int64         `json:"id"`
	UserID int64         `json:"user_id"`
	Lines  []OrderDetail `json:"lines"`
}

type LineInput struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}
