package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type OrdersHandler struct {
	Service *orders.OrderService
	Redis   *redis.Client
}

type CreateOrderReq struct {
	UserName string             `json:"user_name"`
	Items    []orders.LineInput `json:"items"`
}

type CreateOrderResp struct {
	OrderID int64  `json:"order_id"`
	Lines   int    `json:"lines"`
	Message string `json:"message"`
}

type AddItemReq struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders", h.create)
	r.Post("/orders/{id}/items", h.addItem)
	r.Delete("/orders/{id}/items/{sku}", h.removeItem)
	r.Delete("/orders/{id}", h.delete)
	r.Get("/users/{name}/orders", h.listByUser)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserName == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, lines, err := h.Service.AddOrderWithDetails(ctx, req.UserName, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateOrderResp{
		OrderID: orderID,
		Lines:   lines,
		Message: fmt.Sprintf("order %d created with %d lines", orderID, lines),
	})
}

func (h *OrdersHandler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.AddProductToOrder(ctx, orderID, req.SKU, req.Qty); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("product %s qty %d added to order %d", req.SKU, req.Qty, orderID),
	})
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	sku := chi.URLParam(r, "sku")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeleteProductInOrder(ctx, orderID, sku); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("product %s removed from order %d, stock returned", sku, orderID),
	})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeleteOrder(ctx, orderID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("order %d deleted with all details", orderID),
	})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first
	key := fmt.Sprintf(redisx.KeyOrderView, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	order, err := h.Service.OrderByID(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	b, _ := json.Marshal(order)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLOrderView).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	views, err := h.Service.Orders(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	views, err := h.Service.OrdersByUser(ctx, name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}
