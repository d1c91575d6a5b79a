package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// StockService exposes the direct ledger operations that bypass orders:
// stocking a product for the first time, adding and deducting quantity, and
// removing an empty row. Adjustments lock the row first, same as the
// reservation path.
type StockService struct {
	Store       Store
	Events      EventSink
	ServiceName string
	Log         *logrus.Logger
}

// CreateStock stocks a catalog product for the first time. The product must
// exist; the storage row must not.
func (s *StockService) CreateStock(ctx context.Context, sku string, qty int) (string, error) {
	if strings.TrimSpace(sku) == "" {
		return "", fmt.Errorf("product sku is empty: %w", ErrValidation)
	}
	if qty < 0 {
		return "", fmt.Errorf("qty %d must not be negative: %w", qty, ErrValidation)
	}

	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.ProductBySKU(ctx, sku); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("product %s not found in system, add to products first: %w", sku, ErrNotFound)
			}
			return err
		}
		_, err := tx.StockBySKU(ctx, sku)
		if err == nil {
			return fmt.Errorf("product %s already exists in storage: %w", sku, ErrConflict)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.InsertStock(ctx, sku, qty)
	})
	if err != nil {
		return "", err
	}

	s.Log.WithFields(logrus.Fields{"sku": sku, "qty": qty}).Info("storage row created")
	return fmt.Sprintf("product %s added to storage with qty %d", sku, qty), nil
}

// AddQty increases on-hand quantity for sku.
func (s *StockService) AddQty(ctx context.Context, sku string, qty int) (string, error) {
	if err := validateLine(sku, qty); err != nil {
		return "", err
	}
	if err := s.adjust(ctx, sku, qty); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d added to %s", qty, sku), nil
}

// DeductQty decreases on-hand quantity for sku; taking more than is on hand
// fails and nothing is committed.
func (s *StockService) DeductQty(ctx context.Context, sku string, qty int) (string, error) {
	if err := validateLine(sku, qty); err != nil {
		return "", err
	}
	if err := s.adjust(ctx, sku, -qty); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d deducted from %s", qty, sku), nil
}

// RemoveStock deletes the storage row for sku. Rows with quantity left
// cannot be removed.
func (s *StockService) RemoveStock(ctx context.Context, sku string) (string, error) {
	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		stock, err := tx.LockStock(ctx, sku)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("product %s not found in storage: %w", sku, ErrNotFound)
			}
			return err
		}
		if stock.Qty != 0 {
			return fmt.Errorf("product %s with qty %d left cannot be deleted: %w", sku, stock.Qty, ErrConflict)
		}
		return tx.DeleteStock(ctx, sku)
	})
	if err != nil {
		return "", err
	}

	s.Log.WithField("sku", sku).Info("storage row deleted")
	return fmt.Sprintf("product %s deleted from storage", sku), nil
}

func (s *StockService) Levels(ctx context.Context) ([]Storage, error) {
	return s.Store.StockLevels(ctx)
}

func (s *StockService) LevelBySKU(ctx context.Context, sku string) (Storage, error) {
	stock, err := s.Store.StockBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Storage{}, fmt.Errorf("product %s not found in storage: %w", sku, ErrNotFound)
		}
		return Storage{}, err
	}
	return stock, nil
}

func (s *StockService) LevelsByQtyBetween(ctx context.Context, min, max int) ([]Storage, error) {
	levels, err := s.Store.StockByQtyBetween(ctx, min, max)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no storage rows with qty between %d and %d: %w", min, max, ErrNotFound)
	}
	return levels, nil
}

func (s *StockService) adjust(ctx context.Context, sku string, delta int) error {
	var after int
	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.ProductBySKU(ctx, sku); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("product %s not found in system, add to products first: %w", sku, ErrNotFound)
			}
			return err
		}
		stock, err := tx.LockStock(ctx, sku)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("product %s not found, add to storage: %w", sku, ErrNotFound)
			}
			return err
		}
		if stock.Qty+delta < 0 {
			return fmt.Errorf("deducting %d from qty %d of %s: %w", -delta, stock.Qty, sku, ErrInsufficientStock)
		}
		if err := tx.AdjustStock(ctx, sku, delta); err != nil {
			return err
		}
		after = stock.Qty + delta
		return nil
	})
	if err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{"sku": sku, "delta": delta, "qty": after}).Info("stock adjusted")
	publish(s.Events, s.ServiceName, TopicStockAdjusted, EventStockAdjusted, sku,
		StockAdjustedPayload{SKU: sku, Delta: delta, QtyAfter: after})
	return nil
}
