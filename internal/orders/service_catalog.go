package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CatalogService covers the read-mostly edges of the system: the product
// catalog (consulted, not mutated, by the reservation path) and the user
// directory (read-only).
type CatalogService struct {
	Store Store
	Log   *logrus.Logger
}

// CreateProduct registers a new catalog product. Products are immutable
// after creation.
func (s *CatalogService) CreateProduct(ctx context.Context, sku, name string, price decimal.Decimal) (Product, error) {
	if strings.TrimSpace(sku) == "" {
		return Product{}, fmt.Errorf("product sku is empty: %w", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("product name is empty: %w", ErrValidation)
	}
	if price.IsNegative() {
		return Product{}, fmt.Errorf("price %s must not be negative: %w", price, ErrValidation)
	}

	p := Product{SKU: sku, Name: name, Price: price}
	err := s.Store.WithinTx(ctx, func(tx Tx) error {
		_, err := tx.ProductBySKU(ctx, sku)
		if err == nil {
			return fmt.Errorf("product with sku %s already exists: %w", sku, ErrConflict)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.InsertProduct(ctx, p)
	})
	if err != nil {
		return Product{}, err
	}

	s.Log.WithFields(logrus.Fields{"sku": sku, "price": price.String()}).Info("product created")
	return p, nil
}

func (s *CatalogService) Products(ctx context.Context) ([]Product, error) {
	return s.Store.Products(ctx)
}

func (s *CatalogService) ProductBySKU(ctx context.Context, sku string) (Product, error) {
	p, err := s.Store.ProductBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, fmt.Errorf("product with sku %s: %w", sku, ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}

func (s *CatalogService) ProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]Product, error) {
	products, err := s.Store.ProductsByPriceBetween(ctx, min, max)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products with price between %s and %s: %w", min, max, ErrNotFound)
	}
	return products, nil
}

// ProductsByName matches on a case-insensitive fragment of the name.
func (s *CatalogService) ProductsByName(ctx context.Context, part string) ([]Product, error) {
	products, err := s.Store.ProductsByName(ctx, part)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products with name like %s: %w", part, ErrNotFound)
	}
	return products, nil
}

func (s *CatalogService) Users(ctx context.Context) ([]User, error) {
	return s.Store.Users(ctx)
}
