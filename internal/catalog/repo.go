package catalog

import (
	"context"
	"errors"

	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotCreated = errors.New("catalog record not created")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateItem(ctx context.Context, d ItemDraft) (*Item, error) {
	created, err := backend.Insert[Item](ctx, r.DB, tableItems, backend.Values{
		"business_id": d.BusinessID,
		"name":        d.Name,
		"description": d.Description,
		"price":       d.Price,
		"image_url":   d.ImageURL,
		"stock":       d.Stock,
	})
	if err != nil {
		return nil, err
	}
	it, ok := backend.First(created)
	if !ok {
		return nil, ErrNotCreated
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context, businessID string) ([]Item, error) {
	if !backend.ValidID(businessID) {
		return []Item{}, nil
	}
	out, err := backend.Select[Item](ctx, r.DB,
		backend.From(tableItems).Eq("business_id", businessID).Order("created_at", true))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Item{}
	}
	return out, nil
}

// CreateOrder stores the order in pending state together with its lines.
func (r *Repo) CreateOrder(ctx context.Context, d OrderDraft) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := backend.Insert[Order](ctx, tx, tableOrders, backend.Values{
		"business_id":    d.BusinessID,
		"customer_name":  d.CustomerName,
		"customer_phone": d.CustomerPhone,
		"status":         string(OrderPending),
		"total":          d.Total,
	})
	if err != nil {
		return nil, err
	}
	o, ok := backend.First(created)
	if !ok {
		return nil, ErrNotCreated
	}

	if len(d.Items) > 0 {
		rows := make([]backend.Values, 0, len(d.Items))
		for _, l := range d.Items {
			rows = append(rows, backend.Values{
				"catalog_order_id": o.ID,
				"catalog_item_id":  l.CatalogItemID,
				"quantity":         l.Quantity,
				"price":            l.Price,
			})
		}
		if o.Items, err = backend.Insert[OrderItem](ctx, tx, tableOrderItems, rows...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListOrders(ctx context.Context, businessID string, status OrderStatus) ([]Order, error) {
	if !backend.ValidID(businessID) {
		return []Order{}, nil
	}
	q := backend.From(tableOrders).Eq("business_id", businessID)
	if status != "" {
		q = q.Eq("status", string(status))
	}
	out, err := backend.Select[Order](ctx, r.DB, q.Order("created_at", true))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

// SetOrderStatus returns nil when no order matched.
func (r *Repo) SetOrderStatus(ctx context.Context, id string, s OrderStatus) (*Order, error) {
	if !backend.ValidID(id) {
		return nil, nil
	}
	updated, err := backend.Update[Order](ctx, r.DB, backend.From(tableOrders).Eq("id", id), backend.Values{"status": string(s)})
	if err != nil {
		return nil, err
	}
	o, ok := backend.First(updated)
	if !ok {
		return nil, nil
	}
	return &o, nil
}
