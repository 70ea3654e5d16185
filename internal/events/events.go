package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCreated             = "OrderCreated"
	OrderPaymentConfirmed    = "OrderPaymentConfirmed"
	AppointmentStatusChanged = "AppointmentStatusChanged"
	CatalogOrderCreated      = "CatalogOrderCreated"
	CatalogStockReserved     = "CatalogStockReserved"
	CatalogStockRejected     = "CatalogStockRejected"
)

const (
	TopicOrderCreated             = "flow1h.order.created"
	TopicOrderPaymentConfirmed    = "flow1h.order.payment_confirmed"
	TopicAppointmentStatusChanged = "flow1h.appointment.status_changed"
	TopicCatalogOrderCreated      = "flow1h.catalog_order.created"
	TopicCatalogStockReserved     = "flow1h.catalog_order.stock_reserved"
	TopicCatalogStockRejected     = "flow1h.catalog_order.stock_rejected"
)

var topicOf = map[string]string{
	OrderCreated:             TopicOrderCreated,
	OrderPaymentConfirmed:    TopicOrderPaymentConfirmed,
	AppointmentStatusChanged: TopicAppointmentStatusChanged,
	CatalogOrderCreated:      TopicCatalogOrderCreated,
	CatalogStockReserved:     TopicCatalogStockReserved,
	CatalogStockRejected:     TopicCatalogStockRejected,
}

// TopicFor returns the topic an event type is published on.
func TopicFor(eventType string) (string, bool) {
	t, ok := topicOf[eventType]
	return t, ok
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // aggregate id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID       string          `json:"order_id"`
	BusinessID    string          `json:"business_id"`
	Source        string          `json:"source"` // api | whatsapp
	PaymentMethod string          `json:"payment_method"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	Status        string          `json:"status"`
}

type OrderPaymentConfirmedPayload struct {
	OrderID    string `json:"order_id"`
	ReceiptURL string `json:"transfer_receipt_url"`
}

type AppointmentStatusChangedPayload struct {
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	Status        string `json:"status"`
}

type ItemQty struct {
	CatalogItemID string `json:"catalog_item_id"`
	Quantity      int    `json:"quantity"`
}

type CatalogOrderCreatedPayload struct {
	CatalogOrderID string          `json:"catalog_order_id"`
	BusinessID     string          `json:"business_id"`
	Items          []ItemQty       `json:"items"`
	Total          decimal.Decimal `json:"total"`
}

type CatalogStockReservedPayload struct {
	CatalogOrderID string    `json:"catalog_order_id"`
	Items          []ItemQty `json:"items"`
}

type StockRejectedDetail struct {
	CatalogItemID string `json:"catalog_item_id"`
	Required      int    `json:"required"`
	Available     int    `json:"available"`
}

type CatalogStockRejectedPayload struct {
	CatalogOrderID string                `json:"catalog_order_id"`
	Reason         string                `json:"reason"` // OUT_OF_STOCK
	Details        []StockRejectedDetail `json:"details,omitempty"`
}
