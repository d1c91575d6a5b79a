package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Plain reads, no locks. May observe stale-but-committed data.

func (s *Store) UserByName(ctx context.Context, name string) (orders.User, error) {
	var u orders.User
	err := s.DB.QueryRow(ctx, `SELECT id, username FROM users WHERE username=$1`, name).
		Scan(&u.ID, &u.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.User{}, orders.ErrNotFound
	}
	return u, err
}

func (s *Store) Users(ctx context.Context) ([]orders.User, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, username FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.User
	for rows.Next() {
		var u orders.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Orders(ctx context.Context) ([]orders.OrderView, error) {
	return scanOrders(ctx, s.DB, `
		SELECT o.id, o.user_id, d.product_sku, d.qty, d.created
		FROM orders o
		LEFT JOIN order_details d ON d.order_id = o.id
		ORDER BY o.id, d.product_sku`)
}

func (s *Store) OrderByID(ctx context.Context, id int64) (orders.OrderView, error) {
	return orderByID(ctx, s.DB, id)
}

func (s *Store) OrdersByUser(ctx context.Context, userID int64) ([]orders.OrderView, error) {
	return scanOrders(ctx, s.DB, `
		SELECT o.id, o.user_id, d.product_sku, d.qty, d.created
		FROM orders o
		LEFT JOIN order_details d ON d.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.id, d.product_sku`, userID)
}

func (s *Store) Products(ctx context.Context) ([]orders.Product, error) {
	return scanProducts(ctx, s.DB, `SELECT sku, name, price FROM products ORDER BY sku`)
}

func (s *Store) ProductBySKU(ctx context.Context, sku string) (orders.Product, error) {
	return productBySKU(ctx, s.DB, sku)
}

func (s *Store) ProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]orders.Product, error) {
	return scanProducts(ctx, s.DB, `SELECT sku, name, price FROM products
	                               WHERE price >= $1 AND price <= $2 ORDER BY sku`, min, max)
}

func (s *Store) ProductsByName(ctx context.Context, part string) ([]orders.Product, error) {
	return scanProducts(ctx, s.DB, `SELECT sku, name, price FROM products
	                               WHERE name ILIKE '%' || $1 || '%' ORDER BY sku`, part)
}

func (s *Store) StockLevels(ctx context.Context) ([]orders.Storage, error) {
	return scanStock(ctx, s.DB, `SELECT sku, qty FROM storage ORDER BY sku`)
}

func (s *Store) StockBySKU(ctx context.Context, sku string) (orders.Storage, error) {
	return stockBySKU(ctx, s.DB, sku)
}

func (s *Store) StockByQtyBetween(ctx context.Context, min, max int) ([]orders.Storage, error) {
	return scanStock(ctx, s.DB, `SELECT sku, qty FROM storage
	                            WHERE qty >= $1 AND qty <= $2 ORDER BY sku`, min, max)
}

// ---- shared scan helpers (pool or tx) ----

func orderByID(ctx context.Context, q querier, id int64) (orders.OrderView, error) {
	views, err := scanOrders(ctx, q, `
		SELECT o.id, o.user_id, d.product_sku, d.qty, d.created
		FROM orders o
		LEFT JOIN order_details d ON d.order_id = o.id
		WHERE o.id = $1
		ORDER BY d.product_sku`, id)
	if err != nil {
		return orders.OrderView{}, err
	}
	if len(views) == 0 {
		return orders.OrderView{}, orders.ErrNotFound
	}
	return views[0], nil
}

func scanOrders(ctx context.Context, q querier, sql string, args ...any) ([]orders.OrderView, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.OrderView
	byID := map[int64]int{}
	for rows.Next() {
		var (
			id, userID int64
			sku        *string
			qty        *int
			created    *time.Time
		)
		if err := rows.Scan(&id, &userID, &sku, &qty, &created); err != nil {
			return nil, err
		}
		idx, ok := byID[id]
		if !ok {
			out = append(out, orders.OrderView{ID: id, UserID: userID})
			idx = len(out) - 1
			byID[id] = idx
		}
		if sku != nil {
			out[idx].Lines = append(out[idx].Lines, orders.OrderDetail{
				OrderID: id, SKU: *sku, Qty: *qty, Created: *created,
			})
		}
	}
	return out, rows.Err()
}

func scanProducts(ctx context.Context, q querier, sql string, args ...any) ([]orders.Product, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Product
	for rows.Next() {
		var p orders.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanStock(ctx context.Context, q querier, sql string, args ...any) ([]orders.Storage, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Storage
	for rows.Next() {
		var st orders.Storage
		if err := rows.Scan(&st.SKU, &st.Qty); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func productBySKU(ctx context.Context, q querier, sku string) (orders.Product, error) {
	var p orders.Product
	err := q.QueryRow(ctx, `SELECT sku, name, price FROM products WHERE sku=$1`, sku).
		Scan(&p.SKU, &p.Name, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Product{}, orders.ErrNotFound
	}
	return p, err
}

func stockBySKU(ctx context.Context, q querier, sku string) (orders.Storage, error) {
	var st orders.Storage
	err := q.QueryRow(ctx, `SELECT sku, qty FROM storage WHERE sku=$1`, sku).
		Scan(&st.SKU, &st.Qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Storage{}, orders.ErrNotFound
	}
	return st, err
}
