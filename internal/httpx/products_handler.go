package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductsHandler struct {
	Service *orders.CatalogService
}

type CreateProductReq struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/sku/{sku}", h.get)
	r.Post("/products", h.create)
	r.Get("/users", h.users)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.CreateProduct(ctx, req.SKU, req.Name, req.Price)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.ProductBySKU(ctx, sku)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// list supports /products, /products?name=part and /products?min=1&max=99.99
func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	switch {
	case q.Get("name") != "":
		products, err := h.Service.ProductsByName(ctx, q.Get("name"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, products)

	case q.Has("min") || q.Has("max"):
		min, max, ok := priceWindow(w, q.Get("min"), q.Get("max"))
		if !ok {
			return
		}
		products, err := h.Service.ProductsByPriceBetween(ctx, min, max)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, products)

	default:
		products, err := h.Service.Products(ctx)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func (h *ProductsHandler) users(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	users, err := h.Service.Users(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func priceWindow(w http.ResponseWriter, minRaw, maxRaw string) (decimal.Decimal, decimal.Decimal, bool) {
	min := decimal.Zero
	max := decimal.NewFromInt(9999999999)
	var err error
	if minRaw != "" {
		if min, err = decimal.NewFromString(minRaw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min price"})
			return min, max, false
		}
	}
	if maxRaw != "" {
		if max, err = decimal.NewFromString(maxRaw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max price"})
			return min, max, false
		}
	}
	return min, max, true
}
