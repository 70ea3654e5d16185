package backend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collect[T any](ctx context.Context, db Querier, sql string, args []any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

func Select[T any](ctx context.Context, db Querier, q *Query) ([]T, error) {
	sql, args := q.SelectSQL()
	out, err := collect[T](ctx, db, sql, args)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table, err)
	}
	return out, nil
}

func Insert[T any](ctx context.Context, db Querier, table string, rows ...Values) ([]T, error) {
	sql, args, err := InsertSQL(table, rows...)
	if err != nil {
		return nil, err
	}
	out, err := collect[T](ctx, db, sql, args)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return out, nil
}

func Update[T any](ctx context.Context, db Querier, q *Query, set Values) ([]T, error) {
	sql, args, err := q.UpdateSQL(set)
	if err != nil {
		return nil, err
	}
	out, err := collect[T](ctx, db, sql, args)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", q.table, err)
	}
	return out, nil
}

func Upsert[T any](ctx context.Context, db Querier, table string, row Values, conflictColumn string) ([]T, error) {
	sql, args, err := UpsertSQL(table, row, conflictColumn)
	if err != nil {
		return nil, err
	}
	out, err := collect[T](ctx, db, sql, args)
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", table, err)
	}
	return out, nil
}

// First returns the first element, or false when the result is empty.
func First[T any](rows []T) (T, bool) {
	var zero T
	if len(rows) == 0 {
		return zero, false
	}
	return rows[0], true
}

// ValidID reports whether id can address a row. Every table is keyed by uuid,
// so anything else cannot match and is treated as not found by callers.
func ValidID(id string) bool { return uuid.Validate(id) == nil }
