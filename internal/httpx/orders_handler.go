package httpx

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/flow1h/flow1h-api/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Emitter publishes domain events; *events.Publisher implements it.
type Emitter interface {
	Emit(ctx context.Context, eventType, correlationID string, payload any)
}

type OrderStore interface {
	Create(ctx context.Context, d orders.Draft, items []orders.ItemDraft) (*orders.Order, error)
	ListByBusiness(ctx context.Context, businessID string, status orders.Status) ([]orders.Order, error)
	Get(ctx context.Context, id string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, id string, s orders.Status) (*orders.Order, error)
	ConfirmPayment(ctx context.Context, id, receiptURL string, at time.Time) (*orders.Order, error)
}

// ObjectStore is implemented by *backend.StorageClient.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	PublicURL(bucket, key string) string
}

type OrdersHandler struct {
	Repo    OrderStore
	Storage ObjectStore
	Events  Emitter
	Bucket  string
	Now     func() time.Time
}

type orderItemReq struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

type createOrderReq struct {
	BusinessID         string              `json:"business_id" validate:"required"`
	CustomerName       string              `json:"customer_name" validate:"required"`
	CustomerPhone      string              `json:"customer_phone" validate:"required"`
	DeliveryAddress    string              `json:"delivery_address" validate:"required"`
	DeliveryReferences *string             `json:"delivery_references"`
	AmountTotal        *decimal.Decimal    `json:"amount_total" validate:"required"`
	PaymentMethod      string              `json:"payment_method" validate:"required"`
	AmountPaid         decimal.NullDecimal `json:"amount_paid"`
	ChangeAmount       decimal.NullDecimal `json:"change_amount"`
	Items              []orderItemReq      `json:"items" validate:"required,dive"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/by-business/{business_id}", h.listByBusiness)
		r.Get("/{order_id}", h.getOrder)
		r.Patch("/{order_id}/status", h.updateStatus)
		r.Post("/{order_id}/receipt", h.uploadReceipt)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	method := orders.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		writeError(w, badRequest("invalid payment_method"))
		return
	}

	draft := orders.NewDraft(orders.Draft{
		BusinessID:         req.BusinessID,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryReferences: req.DeliveryReferences,
		AmountTotal:        *req.AmountTotal,
		PaymentMethod:      method,
		AmountPaid:         req.AmountPaid,
		ChangeAmount:       req.ChangeAmount,
	})
	items := make([]orders.ItemDraft, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemDraft{ProductID: it.ProductID, Quantity: it.Quantity, Price: *it.Price})
	}

	o, err := h.Repo.Create(r.Context(), draft, items)
	if err != nil {
		writeError(w, upstream("error creating order", err))
		return
	}

	emit(r.Context(), h.Events, events.OrderCreated, o.ID, events.OrderCreatedPayload{
		OrderID:       o.ID,
		BusinessID:    o.BusinessID,
		Source:        "api",
		PaymentMethod: string(o.PaymentMethod),
		AmountTotal:   o.AmountTotal,
		Status:        string(o.Status),
	})
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

func (h *OrdersHandler) listByBusiness(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	out, err := h.Repo.ListByBusiness(r.Context(), chi.URLParam(r, "business_id"), status)
	if err != nil {
		writeError(w, upstream("error listing orders", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Repo.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		writeError(w, upstream("error loading order", err))
		return
	}
	if o == nil {
		writeError(w, notFound("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := orders.Status(req.Status)
	if !status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	o, err := h.Repo.UpdateStatus(r.Context(), chi.URLParam(r, "order_id"), status)
	if err != nil {
		writeError(w, upstream("error updating order", err))
		return
	}
	if o == nil {
		writeError(w, notFound("order not found"))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest("file is required"))
		return
	}
	defer file.Close()

	key := orderID + "/" + uuid.NewString() + "." + receiptExt(header.Filename)
	if err := h.Storage.Upload(r.Context(), h.Bucket, key, header.Header.Get("Content-Type"), file); err != nil {
		writeError(w, upstream("error uploading file", err))
		return
	}
	url := h.Storage.PublicURL(h.Bucket, key)

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	o, err := h.Repo.ConfirmPayment(r.Context(), orderID, url, now().UTC())
	if err != nil {
		writeError(w, upstream("error updating order", err))
		return
	}
	if o == nil {
		writeError(w, notFound("order not found"))
		return
	}

	emit(r.Context(), h.Events, events.OrderPaymentConfirmed, o.ID, events.OrderPaymentConfirmedPayload{
		OrderID:    o.ID,
		ReceiptURL: url,
	})
	writeJSON(w, http.StatusOK, map[string]string{"order_id": orderID, "transfer_receipt_url": url})
}

// receiptExt is the upload's extension without the dot, or "bin".
func receiptExt(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}

func emit(ctx context.Context, e Emitter, eventType, correlationID string, payload any) {
	if e != nil {
		e.Emit(ctx, eventType, correlationID, payload)
	}
}
