package orders

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// memStore is a map-backed Store with real transaction semantics: WithinTx
// works on a deep copy and swaps it in only on success, so rollback is
// observable. The mutex serializes transactions the way row locks do, which
// is enough to exercise the concurrency contract.
type memStore struct {
	mu sync.Mutex
	d  *memData
}

type memData struct {
	users    map[string]User
	products map[string]Product
	stock    map[string]int
	orders   map[int64]*OrderView
	nextUser int64
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{d: &memData{
		users:    map[string]User{},
		products: map[string]Product{},
		stock:    map[string]int{},
		orders:   map[int64]*OrderView{},
	}}
}

func (m *memStore) seedUser(name string) User {
	m.d.nextUser++
	u := User{ID: m.d.nextUser, Username: name}
	m.d.users[name] = u
	return u
}

func (m *memStore) seedProduct(sku, name string, price string) {
	m.d.products[sku] = Product{SKU: sku, Name: name, Price: decimal.RequireFromString(price)}
}

func (m *memStore) seedStock(sku string, qty int) {
	m.d.stock[sku] = qty
}

func (m *memStore) qty(sku string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.stock[sku]
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.d.orders)
}

func (d *memData) clone() *memData {
	c := &memData{
		users:    make(map[string]User, len(d.users)),
		products: make(map[string]Product, len(d.products)),
		stock:    make(map[string]int, len(d.stock)),
		orders:   make(map[int64]*OrderView, len(d.orders)),
		nextUser: d.nextUser,
		nextID:   d.nextID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.stock {
		c.stock[k] = v
	}
	for k, v := range d.orders {
		ov := *v
		ov.Lines = append([]OrderDetail(nil), v.Lines...)
		c.orders[k] = &ov
	}
	return c
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	shadow := m.d.clone()
	if err := fn(&memTx{d: shadow}); err != nil {
		return err
	}
	m.d = shadow
	return nil
}

type memTx struct{ d *memData }

func (t *memTx) LockStock(ctx context.Context, sku string) (Storage, error) {
	qty, ok := t.d.stock[sku]
	if !ok {
		return Storage{}, ErrNotFound
	}
	return Storage{SKU: sku, Qty: qty}, nil
}

func (t *memTx) AdjustStock(ctx context.Context, sku string, delta int) error {
	if _, ok := t.d.stock[sku]; !ok {
		return ErrNotFound
	}
	t.d.stock[sku] += delta
	return nil
}

func (t *memTx) InsertStock(ctx context.Context, sku string, qty int) error {
	t.d.stock[sku] = qty
	return nil
}

func (t *memTx) DeleteStock(ctx context.Context, sku string) error {
	if _, ok := t.d.stock[sku]; !ok {
		return ErrNotFound
	}
	delete(t.d.stock, sku)
	return nil
}

func (t *memTx) StockBySKU(ctx context.Context, sku string) (Storage, error) {
	return t.LockStock(ctx, sku)
}

func (t *memTx) ProductBySKU(ctx context.Context, sku string) (Product, error) {
	p, ok := t.d.products[sku]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (t *memTx) InsertProduct(ctx context.Context, p Product) error {
	t.d.products[p.SKU] = p
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, userID int64) (int64, error) {
	t.d.nextID++
	t.d.orders[t.d.nextID] = &OrderView{ID: t.d.nextID, UserID: userID}
	return t.d.nextID, nil
}

func (t *memTx) OrderByID(ctx context.Context, id int64) (OrderView, error) {
	ov, ok := t.d.orders[id]
	if !ok {
		return OrderView{}, ErrNotFound
	}
	out := *ov
	out.Lines = append([]OrderDetail(nil), ov.Lines...)
	return out, nil
}

func (t *memTx) InsertDetail(ctx context.Context, orderID int64, sku string, qty int) error {
	ov, ok := t.d.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	ov.Lines = append(ov.Lines, OrderDetail{OrderID: orderID, SKU: sku, Qty: qty, Created: time.Now()})
	return nil
}

func (t *memTx) DeleteDetail(ctx context.Context, orderID int64, sku string) error {
	ov, ok := t.d.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i, l := range ov.Lines {
		if l.SKU == sku {
			ov.Lines = append(ov.Lines[:i], ov.Lines[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (t *memTx) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	if _, ok := t.d.orders[id]; !ok {
		return 0, nil
	}
	delete(t.d.orders, id)
	return 1, nil
}

// ---- plain reads ----

func (m *memStore) UserByName(ctx context.Context, name string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.d.users[name]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memStore) Users(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.d.users))
	for _, u := range m.d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memStore) Orders(ctx context.Context) ([]OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OrderView, 0, len(m.d.orders))
	for _, ov := range m.d.orders {
		v := *ov
		v.Lines = append([]OrderDetail(nil), ov.Lines...)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) OrderByID(ctx context.Context, id int64) (OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{d: m.d}).OrderByID(ctx, id)
}

func (m *memStore) OrdersByUser(ctx context.Context, userID int64) ([]OrderView, error) {
	all, _ := m.Orders(ctx)
	var out []OrderView
	for _, ov := range all {
		if ov.UserID == userID {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (m *memStore) Products(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.d.products))
	for _, p := range m.d.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (m *memStore) ProductBySKU(ctx context.Context, sku string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{d: m.d}).ProductBySKU(ctx, sku)
}

func (m *memStore) ProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]Product, error) {
	all, _ := m.Products(ctx)
	var out []Product
	for _, p := range all {
		if p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ProductsByName(ctx context.Context, part string) ([]Product, error) {
	all, _ := m.Products(ctx)
	var out []Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(part)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) StockLevels(ctx context.Context) ([]Storage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Storage, 0, len(m.d.stock))
	for sku, qty := range m.d.stock {
		out = append(out, Storage{SKU: sku, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (m *memStore) StockBySKU(ctx context.Context, sku string) (Storage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{d: m.d}).StockBySKU(ctx, sku)
}

func (m *memStore) StockByQtyBetween(ctx context.Context, min, max int) ([]Storage, error) {
	all, _ := m.StockLevels(ctx)
	var out []Storage
	for _, st := range all {
		if st.Qty >= min && st.Qty <= max {
			out = append(out, st)
		}
	}
	return out, nil
}

// sinkRecorder records published events for assertions.
type sinkRecorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *sinkRecorder) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
}

func (r *sinkRecorder) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
