package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flow1h/flow1h-api/internal/redisx"
	"go.uber.org/zap"
)

// JSONCache is implemented by *redisx.Cache.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CachedStore keeps channel lookups for the webhook in Redis. Only unique
// matches are cached; writes drop the affected channel keys. Cache errors
// fall through to the underlying store.
//
// A lookup that read the database just before a write may still store the
// old row after the first delete. When Redelete is set the keys are deleted
// a second time after that delay, which bounds how long a stale config can
// survive.
type CachedStore struct {
	Store
	Cache    JSONCache
	TTL      time.Duration
	Redelete time.Duration
	Log      *zap.Logger
}

func (s *CachedStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return redisx.TTLBotConfig
	}
	return s.TTL
}

func phoneKey(phoneNumberID string) string {
	return fmt.Sprintf(redisx.KeyBotConfigByPhone, phoneNumberID)
}

func (s *CachedStore) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) ([]Config, error) {
	key := phoneKey(phoneNumberID)

	var cached Config
	err := s.Cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return []Config{cached}, nil
	}
	if !errors.Is(err, redisx.ErrMiss) {
		s.Log.Warn("bot config cache read", zap.String("key", key), zap.Error(err))
	}

	found, err := s.Store.FindByPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return nil, err
	}
	if len(found) == 1 {
		if err := s.Cache.SetJSON(ctx, key, found[0], s.ttl()); err != nil {
			s.Log.Warn("bot config cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return found, nil
}

func (s *CachedStore) Upsert(ctx context.Context, d Draft) (*Config, error) {
	prev, err := s.Store.ByBusiness(ctx, d.BusinessID)
	if err != nil {
		s.Log.Warn("bot config lookup before upsert", zap.String("business_id", d.BusinessID), zap.Error(err))
	}
	c, err := s.Store.Upsert(ctx, d)
	if err != nil {
		return nil, err
	}
	keys := []string{phoneKey(c.PhoneNumberID)}
	if prev != nil && prev.PhoneNumberID != c.PhoneNumberID {
		keys = append(keys, phoneKey(prev.PhoneNumberID))
	}
	s.invalidate(ctx, keys...)
	return c, nil
}

func (s *CachedStore) UpdateTexts(ctx context.Context, businessID string, t Texts) (*Config, error) {
	c, err := s.Store.UpdateTexts(ctx, businessID, t)
	if err != nil || c == nil {
		return c, err
	}
	s.invalidate(ctx, phoneKey(c.PhoneNumberID))
	return c, nil
}

func (s *CachedStore) invalidate(ctx context.Context, keys ...string) {
	s.del(ctx, keys)
	if s.Redelete <= 0 {
		return
	}
	time.AfterFunc(s.Redelete, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.del(ctx, keys)
	})
}

func (s *CachedStore) del(ctx context.Context, keys []string) {
	if err := s.Cache.Del(ctx, keys...); err != nil {
		s.Log.Warn("bot config cache invalidate", zap.Strings("keys", keys), zap.Error(err))
	}
}
