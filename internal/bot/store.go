package bot

import (
	"context"
	"errors"

	"github.com/flow1h/flow1h-api/internal/backend"
)

var ErrNotSaved = errors.New("bot config not saved")

// Store is the persistence the bot endpoints and the webhook need.
type Store interface {
	ByBusiness(ctx context.Context, businessID string) (*Config, error)
	Upsert(ctx context.Context, d Draft) (*Config, error)
	UpdateTexts(ctx context.Context, businessID string, t Texts) (*Config, error)
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) ([]Config, error)
}

type Repo struct{ DB backend.Querier }

var _ Store = (*Repo)(nil)

// ByBusiness returns nil when the business has no bot.
func (r *Repo) ByBusiness(ctx context.Context, businessID string) (*Config, error) {
	if !backend.ValidID(businessID) {
		return nil, nil
	}
	found, err := backend.Select[Config](ctx, r.DB, backend.From(table).Eq("business_id", businessID).Limit(1))
	if err != nil {
		return nil, err
	}
	c, ok := backend.First(found)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Upsert creates or replaces the config, keyed by business_id.
func (r *Repo) Upsert(ctx context.Context, d Draft) (*Config, error) {
	saved, err := backend.Upsert[Config](ctx, r.DB, table, d.values(), "business_id")
	if err != nil {
		return nil, err
	}
	c, ok := backend.First(saved)
	if !ok {
		return nil, ErrNotSaved
	}
	return &c, nil
}

// UpdateTexts returns nil when no config matched.
func (r *Repo) UpdateTexts(ctx context.Context, businessID string, t Texts) (*Config, error) {
	if !backend.ValidID(businessID) {
		return nil, nil
	}
	updated, err := backend.Update[Config](ctx, r.DB, backend.From(table).Eq("business_id", businessID), t.Values())
	if err != nil {
		return nil, err
	}
	c, ok := backend.First(updated)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FindByPhoneNumberID fetches at most two configs so callers can tell a
// unique match from a duplicated channel.
func (r *Repo) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) ([]Config, error) {
	return backend.Select[Config](ctx, r.DB, backend.From(table).Eq("phone_number_id", phoneNumberID).Limit(2))
}
