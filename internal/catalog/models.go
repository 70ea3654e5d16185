package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	tableItems        = "catalog_items"
	tableOrders       = "catalog_orders"
	tableOrderItems   = "catalog_order_items"
	tableReservations = "catalog_stock_reservations"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderOutOfStock OrderStatus = "out_of_stock"
	OrderCancelled  OrderStatus = "cancelled"
	OrderCompleted  OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderOutOfStock, OrderCancelled, OrderCompleted:
		return true
	}
	return false
}

type Item struct {
	ID          string          `db:"id" json:"id"`
	BusinessID  string          `db:"business_id" json:"business_id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    *string         `db:"image_url" json:"image_url"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Order struct {
	ID            string          `db:"id" json:"id"`
	BusinessID    string          `db:"business_id" json:"business_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerPhone string          `db:"customer_phone" json:"customer_phone"`
	Status        OrderStatus     `db:"status" json:"status"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID             string          `db:"id" json:"id"`
	CatalogOrderID string          `db:"catalog_order_id" json:"catalog_order_id"`
	CatalogItemID  string          `db:"catalog_item_id" json:"catalog_item_id"`
	Quantity       int             `db:"quantity" json:"quantity"`
	Price          decimal.Decimal `db:"price" json:"price"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type ItemDraft struct {
	BusinessID  string
	Name        string
	Description *string
	Price       decimal.Decimal
	ImageURL    *string
	Stock       int
}

type OrderDraft struct {
	BusinessID    string
	CustomerName  string
	CustomerPhone string
	Total         decimal.Decimal
	Items         []OrderLine
}

type OrderLine struct {
	CatalogItemID string
	Quantity      int
	Price         decimal.Decimal
}

// ItemQty is one line of a stock reservation.
type ItemQty struct {
	CatalogItemID string
	Quantity      int
}

// Shortage describes an item that could not be reserved.
type Shortage struct {
	CatalogItemID string
	Required      int
	Available     int
}
