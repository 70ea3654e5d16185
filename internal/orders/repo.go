package orders

import (
	"context"
	"errors"
	"time"

	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotCreated means the insert returned no row.
var ErrNotCreated = errors.New("order not created")

type Repo struct{ DB *pgxpool.Pool }

// Create inserts the order and its items in one transaction.
func (r *Repo) Create(ctx context.Context, d Draft, items []ItemDraft) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := backend.Insert[Order](ctx, tx, tableOrders, d.values())
	if err != nil {
		return nil, err
	}
	o, ok := backend.First(created)
	if !ok {
		return nil, ErrNotCreated
	}

	if len(items) > 0 {
		rows := make([]backend.Values, 0, len(items))
		for _, it := range items {
			rows = append(rows, it.values(o.ID))
		}
		if o.Items, err = backend.Insert[Item](ctx, tx, tableItems, rows...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByBusiness returns newest first, optionally filtered by status.
func (r *Repo) ListByBusiness(ctx context.Context, businessID string, status Status) ([]Order, error) {
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

// Get returns the order with its items, or nil when it does not exist.
func (r *Repo) Get(ctx context.Context, id string) (*Order, error) {
	if !backend.ValidID(id) {
		return nil, nil
	}
	found, err := backend.Select[Order](ctx, r.DB, backend.From(tableOrders).Eq("id", id).Limit(1))
	if err != nil {
		return nil, err
	}
	o, ok := backend.First(found)
	if !ok {
		return nil, nil
	}
	o.Items, err = backend.Select[Item](ctx, r.DB, backend.From(tableItems).Eq("order_id", id).Order("created_at", false))
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus returns nil when no order matched.
func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) (*Order, error) {
	return r.update(ctx, id, backend.Values{"status": string(s)})
}

// ConfirmPayment stores the receipt URL and marks the order payment_confirmed.
func (r *Repo) ConfirmPayment(ctx context.Context, id, receiptURL string, at time.Time) (*Order, error) {
	return r.update(ctx, id, backend.Values{
		"transfer_receipt_url": receiptURL,
		"status":               string(StatusPaymentConfirmed),
		"payment_confirmed_at": at,
	})
}

func (r *Repo) update(ctx context.Context, id string, set backend.Values) (*Order, error) {
	if !backend.ValidID(id) {
		return nil, nil
	}
	updated, err := backend.Update[Order](ctx, r.DB, backend.From(tableOrders).Eq("id", id), set)
	if err != nil {
		return nil, err
	}
	o, ok := backend.First(updated)
	if !ok {
		return nil, nil
	}
	return &o, nil
}
