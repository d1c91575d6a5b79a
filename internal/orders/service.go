package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// OrderService orchestrates order mutations together with storage ledger
// adjustments inside one transaction. Any failure rolls the whole
// transaction back; the order and every prior decrement in the call are
// undone together.
type OrderService struct {
	Store       Store
	Events      EventSink
	ServiceName string
	Log         *logrus.Logger
}

// AddOrderWithDetails creates an order for the named user and reserves stock
// for every line, strictly in input order. Inputs are validated before the
// transaction opens. Returns the new order id and the number of lines added.
func (s *OrderService) AddOrderWithDetails(ctx context.Context, userName string, lines []LineInput) (int64, int, error) {
	user, err := s.Store.UserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, 0, fmt.Errorf("user %s: %w", userName, ErrNotFound)
		}
		return 0, 0, err
	}

	for _, l := range lines {
		if err := validateLine(l.SKU, l.Qty); err != nil {
			return 0, 0, err
		}
	}

	var orderID int64
	err = s.Store.WithinTx(ctx, func(tx Tx) error {
		id, err := tx.InsertOrder(ctx, user.ID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(lines))
		for _, l := range lines {
			if seen[l.SKU] {
				return fmt.Errorf("product %s already exists in order %d: %w", l.SKU, id, ErrConflict)
			}
			seen[l.SKU] = true
			if err := reserveLine(ctx, tx, id, l.SKU, l.Qty); err != nil {
				return err
			}
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	s.Log.WithFields(logrus.Fields{"order_id": orderID, "user": userName, "lines": len(lines)}).
		Info("order created")
	publish(s.Events, s.ServiceName, TopicOrderCreated, EventOrderCreated,
		strconv.FormatInt(orderID, 10),
		OrderCreatedPayload{OrderID: orderID, UserID: user.ID, Lines: lines})
	return orderID, len(lines), nil
}

// AddProductToOrder reserves qty of sku for an existing order.
func (s *OrderService) AddProductToOrder(ctx context.Context, orderID int64, sku string, qty int) error {
	if err := validateLine(sku, qty); err != nil {
		return err
	}

	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
			}
			return err
		}
		for _, d := range order.Lines {
			if d.SKU == sku {
				return fmt.Errorf("product %s already exists in order %d: %w", sku, orderID, ErrConflict)
			}
		}
		return reserveLine(ctx, tx, orderID, sku, qty)
	})
	if err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{"order_id": orderID, "sku": sku, "qty": qty}).
		Info("product added to order")
	publish(s.Events, s.ServiceName, TopicStockReserved, EventStockReserved,
		strconv.FormatInt(orderID, 10),
		StockReservedPayload{OrderID: orderID, SKU: sku, Qty: qty})
	return nil
}

// DeleteProductInOrder removes the line item for sku and returns its quantity
// to storage. A missing storage row is a hard failure, not silently ignored.
func (s *OrderService) DeleteProductInOrder(ctx context.Context, orderID int64, sku string) error {
	var removed int
	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
			}
			return err
		}
		var line *OrderDetail
		for i := range order.Lines {
			if order.Lines[i].SKU == sku {
				line = &order.Lines[i]
				break
			}
		}
		if line == nil {
			return fmt.Errorf("product %s not found in order %d: %w", sku, orderID, ErrNotFound)
		}
		if _, err := tx.LockStock(ctx, sku); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("product %s not found in storage: %w", sku, ErrNotFound)
			}
			return err
		}
		if err := tx.AdjustStock(ctx, sku, line.Qty); err != nil {
			return err
		}
		removed = line.Qty
		return tx.DeleteDetail(ctx, orderID, sku)
	})
	if err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{"order_id": orderID, "sku": sku, "qty": removed}).
		Info("product removed from order, stock returned")
	publish(s.Events, s.ServiceName, TopicStockReleased, EventStockReleased,
		strconv.FormatInt(orderID, 10),
		StockReleasedPayload{OrderID: orderID, SKU: sku, Qty: removed})
	return nil
}

// DeleteOrder removes the order and cascades its line items. Reserved stock
// is NOT returned to storage; releasing lines one by one via
// DeleteProductInOrder is the explicit way to give stock back.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		n, err := tx.DeleteOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Log.WithField("order_id", orderID).Info("order deleted with all details")
	publish(s.Events, s.ServiceName, TopicOrderDeleted, EventOrderDeleted,
		strconv.FormatInt(orderID, 10), OrderDeletedPayload{OrderID: orderID})
	return nil
}

func (s *OrderService) Orders(ctx context.Context) ([]OrderView, error) {
	return s.Store.Orders(ctx)
}

func (s *OrderService) OrderByID(ctx context.Context, orderID int64) (OrderView, error) {
	order, err := s.Store.OrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return OrderView{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return OrderView{}, err
	}
	return order, nil
}

func (s *OrderService) OrdersByUser(ctx context.Context, userName string) ([]OrderView, error) {
	user, err := s.Store.UserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userName, ErrNotFound)
		}
		return nil, err
	}
	return s.Store.OrdersByUser(ctx, user.ID)
}

// reserveLine takes qty of sku off the ledger and appends the line item.
// Lock first, then validate against the locked quantity; this is the only
// thing standing between two concurrent reservations and a lost update.
func reserveLine(ctx context.Context, tx Tx, orderID int64, sku string, qty int) error {
	stock, err := tx.LockStock(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("product %s not found in storage: %w", sku, ErrNotFound)
		}
		return err
	}
	if stock.Qty < qty {
		return fmt.Errorf("ordered qty %d > storage qty %d for %s: %w", qty, stock.Qty, sku, ErrInsufficientStock)
	}
	if err := tx.AdjustStock(ctx, sku, -qty); err != nil {
		return err
	}
	return tx.InsertDetail(ctx, orderID, sku, qty)
}

func validateLine(sku string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("qty %d must be positive: %w", qty, ErrValidation)
	}
	if strings.TrimSpace(sku) == "" {
		return fmt.Errorf("product sku is empty: %w", ErrValidation)
	}
	return nil
}
