package httpx

import (
	"context"
	"net/http"

	"github.com/flow1h/flow1h-api/internal/catalog"
	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogStore interface {
	CreateItem(ctx context.Context, d catalog.ItemDraft) (*catalog.Item, error)
	ListItems(ctx context.Context, businessID string) ([]catalog.Item, error)
	CreateOrder(ctx context.Context, d catalog.OrderDraft) (*catalog.Order, error)
	ListOrders(ctx context.Context, businessID string, status catalog.OrderStatus) ([]catalog.Order, error)
	SetOrderStatus(ctx context.Context, id string, s catalog.OrderStatus) (*catalog.Order, error)
}

// StockReleaser returns held stock when a catalog order is cancelled.
type StockReleaser interface {
	ReleaseAll(ctx context.Context, orderID string) error
}

type CatalogHandler struct {
	Repo   CatalogStore
	Stock  StockReleaser
	Events Emitter
	Log    *zap.Logger
}

type createItemReq struct {
	BusinessID  string           `json:"business_id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	ImageURL    *string          `json:"image_url"`
	Stock       int              `json:"stock" validate:"gte=0"`
}

type catalogLineReq struct {
	CatalogItemID string           `json:"catalog_item_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"gte=1"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
}

type createCatalogOrderReq struct {
	BusinessID    string           `json:"business_id" validate:"required"`
	CustomerName  string           `json:"customer_name" validate:"required"`
	CustomerPhone string           `json:"customer_phone" validate:"required"`
	Items         []catalogLineReq `json:"items" validate:"required,dive"`
	Total         *decimal.Decimal `json:"total" validate:"required"`
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Post("/items", h.createItem)
		r.Get("/items/{business_id}", h.listItems)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{business_id}", h.listOrders)
		r.Patch("/orders/{order_id}/status", h.updateOrderStatus)
	})
}

func (h *CatalogHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	it, err := h.Repo.CreateItem(r.Context(), catalog.ItemDraft{
		BusinessID:  req.BusinessID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, upstream("error creating item", err))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CatalogHandler) listItems(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.ListItems(r.Context(), chi.URLParam(r, "business_id"))
	if err != nil {
		writeError(w, upstream("error listing items", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createCatalogOrderReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	lines := make([]catalog.OrderLine, 0, len(req.Items))
	qty := make([]events.ItemQty, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, catalog.OrderLine{CatalogItemID: l.CatalogItemID, Quantity: l.Quantity, Price: *l.Price})
		qty = append(qty, events.ItemQty{CatalogItemID: l.CatalogItemID, Quantity: l.Quantity})
	}

	o, err := h.Repo.CreateOrder(r.Context(), catalog.OrderDraft{
		BusinessID:    req.BusinessID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Total:         *req.Total,
		Items:         lines,
	})
	if err != nil {
		writeError(w, upstream("error creating catalog order", err))
		return
	}

	emit(r.Context(), h.Events, events.CatalogOrderCreated, o.ID, events.CatalogOrderCreatedPayload{
		CatalogOrderID: o.ID,
		BusinessID:     o.BusinessID,
		Items:          qty,
		Total:          o.Total,
	})
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

func (h *CatalogHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := catalog.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	out, err := h.Repo.ListOrders(r.Context(), chi.URLParam(r, "business_id"), status)
	if err != nil {
		writeError(w, upstream("error listing catalog orders", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := catalog.OrderStatus(req.Status)
	if !status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	id := chi.URLParam(r, "order_id")
	o, err := h.Repo.SetOrderStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, upstream("error updating catalog order", err))
		return
	}
	if o == nil {
		writeError(w, notFound("catalog order not found"))
		return
	}

	if status == catalog.OrderCancelled && h.Stock != nil {
		if err := h.Stock.ReleaseAll(r.Context(), id); err != nil {
			h.Log.Error("release catalog stock", zap.String("catalog_order_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, o)
}
