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

type StorageHandler struct {
	Service *orders.StockService
	Redis   *redis.Client
}

type ModifyStorageReq struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

func (h *StorageHandler) Register(r *chi.Mux) {
	r.Get("/storage", h.list)
	r.Get("/storage/sku/{sku}", h.get)
	r.Post("/storage", h.create)
	r.Patch("/storage/add", h.add)
	r.Patch("/storage/deduct", h.deduct)
	r.Delete("/storage/remove/{sku}", h.remove)
}

func (h *StorageHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeModify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Service.CreateStock(ctx, req.SKU, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": msg})
}

func (h *StorageHandler) add(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.Service.AddQty)
}

func (h *StorageHandler) deduct(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.Service.DeductQty)
}

func (h *StorageHandler) modify(w http.ResponseWriter, r *http.Request,
	op func(context.Context, string, int) (string, error)) {
	req, ok := decodeModify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := op(ctx, req.SKU, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *StorageHandler) remove(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Service.RemoveStock(ctx, sku)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *StorageHandler) get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyStockLevel, sku)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	level, err := h.Service.LevelBySKU(ctx, sku)
	if err != nil {
		writeErr(w, err)
		return
	}
	b, _ := json.Marshal(level)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStockLevel).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *StorageHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// optional qty window: /storage?min=1&max=50
	if r.URL.Query().Has("min") || r.URL.Query().Has("max") {
		min := queryInt(r, "min", 0)
		max := queryInt(r, "max", 9999999999)
		levels, err := h.Service.LevelsByQtyBetween(ctx, min, max)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, levels)
		return
	}

	levels, err := h.Service.Levels(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func decodeModify(w http.ResponseWriter, r *http.Request) (ModifyStorageReq, bool) {
	var req ModifyStorageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return ModifyStorageReq{}, false
	}
	return req, true
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
