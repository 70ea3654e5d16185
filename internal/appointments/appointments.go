package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/flow1h/flow1h-api/internal/backend"
)

const table = "appointments"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID            string    `db:"id" json:"id"`
	BusinessID    string    `db:"business_id" json:"business_id"`
	CustomerName  string    `db:"customer_name" json:"customer_name"`
	CustomerPhone string    `db:"customer_phone" json:"customer_phone"`
	ServiceID     string    `db:"service_id" json:"service_id"`
	EmployeeID    *string   `db:"employee_id" json:"employee_id"`
	Datetime      time.Time `db:"datetime" json:"datetime"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Draft struct {
	BusinessID    string
	CustomerName  string
	CustomerPhone string
	ServiceID     string
	EmployeeID    *string
	Datetime      time.Time
}

// Filter narrows a business's appointments. Zero fields are ignored; From and
// To are inclusive bounds on datetime.
type Filter struct {
	Status Status
	From   *time.Time
	To     *time.Time
}

var ErrNotCreated = errors.New("appointment not created")

type Repo struct{ DB backend.Querier }

// Create books a new appointment in pending state.
func (r *Repo) Create(ctx context.Context, d Draft) (*Appointment, error) {
	created, err := backend.Insert[Appointment](ctx, r.DB, table, backend.Values{
		"business_id":    d.BusinessID,
		"customer_name":  d.CustomerName,
		"customer_phone": d.CustomerPhone,
		"service_id":     d.ServiceID,
		"employee_id":    d.EmployeeID,
		"datetime":       d.Datetime,
		"status":         string(StatusPending),
	})
	if err != nil {
		return nil, err
	}
	a, ok := backend.First(created)
	if !ok {
		return nil, ErrNotCreated
	}
	return &a, nil
}

// List returns the business's appointments in chronological order.
func (r *Repo) List(ctx context.Context, businessID string, f Filter) ([]Appointment, error) {
	if !backend.ValidID(businessID) {
		return []Appointment{}, nil
	}
	q := backend.From(table).Eq("business_id", businessID)
	if f.Status != "" {
		q = q.Eq("status", string(f.Status))
	}
	if f.From != nil {
		q = q.Gte("datetime", *f.From)
	}
	if f.To != nil {
		q = q.Lte("datetime", *f.To)
	}
	out, err := backend.Select[Appointment](ctx, r.DB, q.Order("datetime", false))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}

// UpdateStatus returns nil when no appointment matched.
func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) (*Appointment, error) {
	if !backend.ValidID(id) {
		return nil, nil
	}
	updated, err := backend.Update[Appointment](ctx, r.DB, backend.From(table).Eq("id", id), backend.Values{"status": string(s)})
	if err != nil {
		return nil, err
	}
	a, ok := backend.First(updated)
	if !ok {
		return nil, nil
	}
	return &a, nil
}
