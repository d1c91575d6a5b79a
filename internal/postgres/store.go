package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements orders.Store on Postgres. Row-level locking via
// SELECT ... FOR UPDATE is the sole mechanism serializing concurrent
// adjustments to the same sku.
type Store struct{ DB *pgxpool.Pool }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so reads can be
// shared between the locked and unlocked paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithinTx runs fn inside one transaction: commit on nil, rollback on error.
// The deferred rollback is a no-op after a successful commit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type storeTx struct{ tx pgx.Tx }

func (t *storeTx) LockStock(ctx context.Context, sku string) (orders.Storage, error) {
	var st orders.Storage
	err := t.tx.QueryRow(ctx, `SELECT sku, qty FROM storage WHERE sku=$1 FOR UPDATE`, sku).
		Scan(&st.SKU, &st.Qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Storage{}, orders.ErrNotFound
	}
	return st, err
}

func (t *storeTx) AdjustStock(ctx context.Context, sku string, delta int) error {
	ct, err := t.tx.Exec(ctx, `UPDATE storage SET qty = qty + $2 WHERE sku=$1`, sku, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrNotFound
	}
	return nil
}

func (t *storeTx) InsertStock(ctx context.Context, sku string, qty int) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO storage(sku, qty) VALUES ($1, $2)`, sku, qty)
	return err
}

func (t *storeTx) DeleteStock(ctx context.Context, sku string) error {
	ct, err := t.tx.Exec(ctx, `DELETE FROM storage WHERE sku=$1`, sku)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrNotFound
	}
	return nil
}

func (t *storeTx) StockBySKU(ctx context.Context, sku string) (orders.Storage, error) {
	return stockBySKU(ctx, t.tx, sku)
}

func (t *storeTx) ProductBySKU(ctx context.Context, sku string) (orders.Product, error) {
	return productBySKU(ctx, t.tx, sku)
}

func (t *storeTx) InsertProduct(ctx context.Context, p orders.Product) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO products(sku, name, price) VALUES ($1, $2, $3)`,
		p.SKU, p.Name, p.Price)
	return err
}

func (t *storeTx) InsertOrder(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO orders(user_id) VALUES ($1) RETURNING id`, userID).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (t *storeTx) OrderByID(ctx context.Context, id int64) (orders.OrderView, error) {
	return orderByID(ctx, t.tx, id)
}

func (t *storeTx) InsertDetail(ctx context.Context, orderID int64, sku string, qty int) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO order_details(order_id, product_sku, qty)
	                          VALUES ($1, $2, $3)`, orderID, sku, qty)
	return err
}

func (t *storeTx) DeleteDetail(ctx context.Context, orderID int64, sku string) error {
	ct, err := t.tx.Exec(ctx, `DELETE FROM order_details WHERE order_id=$1 AND product_sku=$2`,
		orderID, sku)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrNotFound
	}
	return nil
}

// DeleteOrder removes the order row; order_details go with it via the FK
// cascade. Storage is deliberately untouched.
func (t *storeTx) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	ct, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
