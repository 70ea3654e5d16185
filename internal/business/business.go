package business

import (
	"context"
	"errors"
	"time"

	"github.com/flow1h/flow1h-api/internal/backend"
)

const table = "businesses"

// Type is the kind of operation a business runs; it also picks the bot flow.
type Type string

const (
	TypeOrders       Type = "orders"
	TypeAppointments Type = "appointments"
	TypeCatalog      Type = "catalog"
)

type Business struct {
	ID                string    `db:"id" json:"id"`
	OwnerUserID       string    `db:"owner_user_id" json:"owner_user_id"`
	Name              string    `db:"name" json:"name"`
	Type              Type      `db:"type" json:"type"`
	Phone             *string   `db:"phone" json:"phone"`
	WhatsappNumber    *string   `db:"whatsapp_number" json:"whatsapp_number"`
	Address           *string   `db:"address" json:"address"`
	AddressReferences *string   `db:"address_references" json:"address_references"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Draft struct {
	OwnerUserID       string
	Name              string
	Type              Type
	Phone             *string
	WhatsappNumber    *string
	Address           *string
	AddressReferences *string
}

var ErrNotCreated = errors.New("business not created")

type Repo struct{ DB backend.Querier }

func (r *Repo) Create(ctx context.Context, d Draft) (*Business, error) {
	created, err := backend.Insert[Business](ctx, r.DB, table, backend.Values{
		"owner_user_id":      d.OwnerUserID,
		"name":               d.Name,
		"type":               string(d.Type),
		"phone":              d.Phone,
		"whatsapp_number":    d.WhatsappNumber,
		"address":            d.Address,
		"address_references": d.AddressReferences,
	})
	if err != nil {
		return nil, err
	}
	b, ok := backend.First(created)
	if !ok {
		return nil, ErrNotCreated
	}
	return &b, nil
}

// ByOwner returns the owner's first business, or nil. One business per
// owner is assumed but not enforced.
func (r *Repo) ByOwner(ctx context.Context, ownerUserID string) (*Business, error) {
	if !backend.ValidID(ownerUserID) {
		return nil, nil
	}
	found, err := backend.Select[Business](ctx, r.DB,
		backend.From(table).Eq("owner_user_id", ownerUserID).Order("created_at", false).Limit(1))
	if err != nil {
		return nil, err
	}
	b, ok := backend.First(found)
	if !ok {
		return nil, nil
	}
	return &b, nil
}
