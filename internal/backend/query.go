package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Values is one row keyed by column name.
type Values map[string]any

// ErrUnfiltered is returned for an UPDATE without any WHERE clause.
var ErrUnfiltered = errors.New("refusing to update without a filter")

type filter struct {
	column string
	op     string
	value  any
}

type ordering struct {
	column string
	desc   bool
}

// Query is a table-scoped filter chain, PostgREST style:
//
//	backend.From("orders").Eq("business_id", id).Order("created_at", true)
type Query struct {
	table   string
	filters []filter
	orders  []ordering
	limit   int
}

func From(table string) *Query { return &Query{table: table} }

func (q *Query) Eq(column string, v any) *Query  { return q.where(column, "=", v) }
func (q *Query) Gte(column string, v any) *Query { return q.where(column, ">=", v) }
func (q *Query) Lte(column string, v any) *Query { return q.where(column, "<=", v) }

func (q *Query) where(column, op string, v any) *Query {
	q.filters = append(q.filters, filter{column: column, op: op, value: v})
	return q
}

func (q *Query) Order(column string, desc bool) *Query {
	q.orders = append(q.orders, ordering{column: column, desc: desc})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

// whereClause renders the filters with placeholders starting after offset.
func (q *Query) whereClause(offset int) (string, []any) {
	if len(q.filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(q.filters))
	args := make([]any, 0, len(q.filters))
	for i, f := range q.filters {
		parts = append(parts, fmt.Sprintf("%s %s $%d", ident(f.column), f.op, offset+i+1))
		args = append(args, f.value)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (q *Query) SelectSQL() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(ident(q.table))
	where, args := q.whereClause(0)
	b.WriteString(where)
	if len(q.orders) > 0 {
		parts := make([]string, 0, len(q.orders))
		for _, o := range q.orders {
			dir := "ASC"
			if o.desc {
				dir = "DESC"
			}
			parts = append(parts, ident(o.column)+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	return b.String(), args
}

func (q *Query) UpdateSQL(set Values) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, errors.New("nothing to update")
	}
	if len(q.filters) == 0 {
		return "", nil, ErrUnfiltered
	}
	cols := sortedColumns(set)
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(q.filters))
	for i, c := range cols {
		parts = append(parts, fmt.Sprintf("%s = $%d", ident(c), i+1))
		args = append(args, set[c])
	}
	where, wargs := q.whereClause(len(cols))
	args = append(args, wargs...)
	sql := "UPDATE " + ident(q.table) + " SET " + strings.Join(parts, ", ") + where + " RETURNING *"
	return sql, args, nil
}

// InsertSQL renders a multi-row insert. Columns come from the first row;
// later rows missing a column insert NULL.
func InsertSQL(table string, rows ...Values) (string, []any, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", nil, errors.New("nothing to insert")
	}
	cols := sortedColumns(rows[0])
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}

	args := make([]any, 0, len(cols)*len(rows))
	tuples := make([]string, 0, len(rows))
	for _, row := range rows {
		ph := make([]string, len(cols))
		for i, c := range cols {
			args = append(args, row[c])
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		tuples = append(tuples, "("+strings.Join(ph, ", ")+")")
	}
	sql := "INSERT INTO " + ident(table) + " (" + strings.Join(quoted, ", ") + ") VALUES " +
		strings.Join(tuples, ", ") + " RETURNING *"
	return sql, args, nil
}

// UpsertSQL inserts row or, on conflict over conflictColumn, overwrites
// every other supplied column.
func UpsertSQL(table string, row Values, conflictColumn string) (string, []any, error) {
	sql, args, err := InsertSQL(table, row)
	if err != nil {
		return "", nil, err
	}
	sql = strings.TrimSuffix(sql, " RETURNING *")

	var sets []string
	for _, c := range sortedColumns(row) {
		if c == conflictColumn {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", ident(c), ident(c)))
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	sql += " ON CONFLICT (" + ident(conflictColumn) + ") " + action + " RETURNING *"
	return sql, args, nil
}

func sortedColumns(v Values) []string {
	cols := make([]string, 0, len(v))
	for c := range v {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
