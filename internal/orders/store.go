package orders

import (
	"context"

	"github.com/shopspring/decimal"
)

// Tx is one open transaction against the relational store. Every mutating
// flow runs entirely on a single Tx; LockStock must be the first storage
// access so concurrent adjustments to the same sku serialize on the row lock.
type Tx interface {
	// LockStock acquires an exclusive lock on the storage row for sku and
	// returns it. The lock is held until the transaction ends.
	LockStock(ctx context.Context, sku string) (Storage, error)
	// AdjustStock applies a relative delta to an already-locked row.
	AdjustStock(ctx context.Context, sku string, delta int) error
	InsertStock(ctx context.Context, sku string, qty int) error
	DeleteStock(ctx context.Context, sku string) error
	StockBySKU(ctx context.Context, sku string) (Storage, error)

	ProductBySKU(ctx context.Context, sku string) (Product, error)
	InsertProduct(ctx context.Context, p Product) error

	// InsertOrder persists a new order and returns its assigned id, usable
	// within the same transaction.
	InsertOrder(ctx context.Context, userID int64) (int64, error)
	OrderByID(ctx context.Context, id int64) (OrderView, error)
	InsertDetail(ctx context.Context, orderID int64, sku string, qty int) error
	DeleteDetail(ctx context.Context, orderID int64, sku string) error
	// DeleteOrder removes the order and cascades its line items; returns the
	// number of order rows removed.
	DeleteOrder(ctx context.Context, id int64) (int64, error)
}

// Store is the durable store the services run against. WithinTx commits when
// fn returns nil and rolls back otherwise; partial effects never survive.
// The remaining methods are plain read-committed reads without locks.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	UserByName(ctx context.Context, name string) (User, error)
	Users(ctx context.Context) ([]User, error)

	Orders(ctx context.Context) ([]OrderView, error)
	OrderByID(ctx context.Context, id int64) (OrderView, error)
	OrdersByUser(ctx context.Context, userID int64) ([]OrderView, error)

	Products(ctx context.Context) ([]Product, error)
	ProductBySKU(ctx context.Context, sku string) (Product, error)
	ProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]Product, error)
	ProductsByName(ctx context.Context, part string) ([]Product, error)

	StockLevels(ctx context.Context) ([]Storage, error)
	StockBySKU(ctx context.Context, sku string) (Storage, error)
	StockByQtyBetween(ctx context.Context, min, max int) ([]Storage, error)
}
