package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockRepo struct{ DB *pgxpool.Pool }

// ReserveOutcome says what ReserveAll did with an order.
type ReserveOutcome int

const (
	// Reserved: stock was taken for every line.
	Reserved ReserveOutcome = iota
	// OutOfStock: nothing was taken and the order is now out_of_stock.
	OutOfStock
	// NotPending: the order was gone or had left pending; nothing changed.
	NotPending
)

type Reservation struct {
	Outcome   ReserveOutcome
	Shortages []Shortage
	// Status is the order status found when Outcome is NotPending; empty
	// when the order does not exist.
	Status OrderStatus
}

// MergeLines sums quantities per catalog item and sorts by item id, so each
// item is locked once and in the same order by every reservation.
func MergeLines(items []ItemQty) []ItemQty {
	sum := make(map[string]int, len(items))
	for _, it := range items {
		sum[it.CatalogItemID] += it.Quantity
	}
	out := make([]ItemQty, 0, len(sum))
	for id, q := range sum {
		out = append(out, ItemQty{CatalogItemID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatalogItemID < out[j].CatalogItemID })
	return out
}

// ReserveAll locks the order and its items, then either takes stock for
// every line or, if any line is short, marks the order out_of_stock without
// touching stock. Orders that are no longer pending are left alone, so a
// cancel that wins the race never gets stock reserved behind it. An order
// that already holds reservations reports Reserved again.
func (r *StockRepo) ReserveAll(ctx context.Context, orderID string, items []ItemQty) (Reservation, error) {
	items = MergeLines(items)

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Reservation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM `+tableOrders+` WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{Outcome: NotPending}, nil
	}
	if err != nil {
		return Reservation{}, err
	}
	if status != OrderPending {
		return Reservation{Outcome: NotPending, Status: status}, nil
	}

	var held int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM `+tableReservations+`
		WHERE catalog_order_id = $1 AND status = 'RESERVED'`, orderID).Scan(&held); err != nil {
		return Reservation{}, err
	}
	if held > 0 {
		return Reservation{Outcome: Reserved}, nil
	}

	var short []Shortage
	for _, it := range items {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM `+tableItems+` WHERE id = $1 FOR UPDATE`, it.CatalogItemID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			stock = 0 // unknown item
		} else if err != nil {
			return Reservation{}, err
		}
		if stock < it.Quantity {
			short = append(short, Shortage{CatalogItemID: it.CatalogItemID, Required: it.Quantity, Available: stock})
		}
	}

	if len(short) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE `+tableOrders+` SET status = $2 WHERE id = $1 AND status = $3`,
			orderID, string(OrderOutOfStock), string(OrderPending)); err != nil {
			return Reservation{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return Reservation{}, err
		}
		return Reservation{Outcome: OutOfStock, Shortages: short}, nil
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `UPDATE `+tableItems+` SET stock = stock - $2 WHERE id = $1`, it.CatalogItemID, it.Quantity); err != nil {
			return Reservation{}, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO `+tableReservations+` (catalog_order_id, catalog_item_id, quantity, status)
			VALUES ($1, $2, $3, 'RESERVED')
			ON CONFLICT (catalog_order_id, catalog_item_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, status = 'RESERVED'`,
			orderID, it.CatalogItemID, it.Quantity); err != nil {
			return Reservation{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Reservation{}, err
	}
	return Reservation{Outcome: Reserved}, nil
}

// ReleaseAll gives reserved stock back, e.g. when the order is cancelled.
func (r *StockRepo) ReleaseAll(ctx context.Context, orderID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT catalog_item_id, quantity FROM `+tableReservations+`
		WHERE catalog_order_id = $1 AND status = 'RESERVED'
		ORDER BY catalog_item_id`, orderID)
	if err != nil {
		return err
	}
	held, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ItemQty, error) {
		var q ItemQty
		err := row.Scan(&q.CatalogItemID, &q.Quantity)
		return q, err
	})
	if err != nil {
		return err
	}

	for _, h := range held {
		if _, err := tx.Exec(ctx, `UPDATE `+tableItems+` SET stock = stock + $2 WHERE id = $1`, h.CatalogItemID, h.Quantity); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE `+tableReservations+` SET status = 'RELEASED'
		WHERE catalog_order_id = $1 AND status = 'RESERVED'`, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
