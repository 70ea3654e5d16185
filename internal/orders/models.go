package orders

import (
	"time"

	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/shopspring/decimal"
)

const (
	tableOrders = "orders"
	tableItems  = "order_items"
)

type Order struct {
	ID                 string              `db:"id" json:"id"`
	BusinessID         string              `db:"business_id" json:"business_id"`
	CustomerName       string              `db:"customer_name" json:"customer_name"`
	CustomerPhone      string              `db:"customer_phone" json:"customer_phone"`
	DeliveryAddress    string              `db:"delivery_address" json:"delivery_address"`
	DeliveryReferences *string             `db:"delivery_references" json:"delivery_references"`
	AmountTotal        decimal.Decimal     `db:"amount_total" json:"amount_total"`
	PaymentMethod      PaymentMethod       `db:"payment_method" json:"payment_method"`
	AmountPaid         decimal.NullDecimal `db:"amount_paid" json:"amount_paid"`
	ChangeAmount       decimal.NullDecimal `db:"change_amount" json:"change_amount"`
	Status             Status              `db:"status" json:"status"`
	TransferReceiptURL *string             `db:"transfer_receipt_url" json:"transfer_receipt_url"`
	PaymentConfirmedAt *time.Time          `db:"payment_confirmed_at" json:"payment_confirmed_at"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`

	Items []Item `db:"-" json:"items,omitempty"`
}

type Item struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Draft is an order not yet persisted.
type Draft struct {
	BusinessID         string
	CustomerName       string
	CustomerPhone      string
	DeliveryAddress    string
	DeliveryReferences *string
	AmountTotal        decimal.Decimal
	PaymentMethod      PaymentMethod
	AmountPaid         decimal.NullDecimal
	ChangeAmount       decimal.NullDecimal
	Status             Status
}

type ItemDraft struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

func (d Draft) values() backend.Values {
	return backend.Values{
		"business_id":         d.BusinessID,
		"customer_name":       d.CustomerName,
		"customer_phone":      d.CustomerPhone,
		"delivery_address":    d.DeliveryAddress,
		"delivery_references": d.DeliveryReferences,
		"amount_total":        d.AmountTotal,
		"payment_method":      string(d.PaymentMethod),
		"amount_paid":         d.AmountPaid,
		"change_amount":       d.ChangeAmount,
		"status":              string(d.Status),
	}
}

func (it ItemDraft) values(orderID string) backend.Values {
	return backend.Values{
		"order_id":   orderID,
		"product_id": it.ProductID,
		"quantity":   it.Quantity,
		"price":      it.Price,
	}
}
