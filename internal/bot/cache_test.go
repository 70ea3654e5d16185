package bot

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/flow1h/flow1h-api/internal/redisx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memCache) GetJSON(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	b, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return redisx.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type memStore struct {
	configs []Config
	finds   int
}

func (s *memStore) ByBusiness(_ context.Context, businessID string) (*Config, error) {
	for i := range s.configs {
		if s.configs[i].BusinessID == businessID {
			c := s.configs[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) Upsert(_ context.Context, d Draft) (*Config, error) {
	c := Config{BusinessID: d.BusinessID, PhoneNumberID: d.PhoneNumberID, AccessToken: d.AccessToken}
	for i := range s.configs {
		if s.configs[i].BusinessID == d.BusinessID {
			s.configs[i] = c
			return &c, nil
		}
	}
	s.configs = append(s.configs, c)
	return &c, nil
}

func (s *memStore) UpdateTexts(_ context.Context, businessID string, t Texts) (*Config, error) {
	for i := range s.configs {
		if s.configs[i].BusinessID == businessID {
			if t.GreetingMessage != nil {
				s.configs[i].GreetingMessage = t.GreetingMessage
			}
			c := s.configs[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByPhoneNumberID(_ context.Context, id string) ([]Config, error) {
	s.finds++
	var out []Config
	for _, c := range s.configs {
		if c.PhoneNumberID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func newCached(store *memStore) (*CachedStore, *memCache) {
	cache := newMemCache()
	return &CachedStore{Store: store, Cache: cache, TTL: time.Minute, Log: zap.NewNop()}, cache
}

func TestCachedStoreServesRepeatLookups(t *testing.T) {
	store := &memStore{configs: []Config{{BusinessID: "b1", PhoneNumberID: "P1"}}}
	cs, _ := newCached(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cs.FindByPhoneNumberID(ctx, "P1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b1", got[0].BusinessID)
	}
	assert.Equal(t, 1, store.finds)
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	store := &memStore{}
	cs, _ := newCached(store)
	ctx := context.Background()

	got, err := cs.FindByPhoneNumberID(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = cs.Upsert(ctx, Draft{BusinessID: "b1", PhoneNumberID: "P1"})
	require.NoError(t, err)

	got, err = cs.FindByPhoneNumberID(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCachedStoreUpsertDropsOldChannel(t *testing.T) {
	store := &memStore{configs: []Config{{BusinessID: "b1", PhoneNumberID: "OLD"}}}
	cs, cache := newCached(store)
	ctx := context.Background()

	_, err := cs.FindByPhoneNumberID(ctx, "OLD")
	require.NoError(t, err)
	require.True(t, cache.has(phoneKey("OLD")))

	_, err = cs.Upsert(ctx, Draft{BusinessID: "b1", PhoneNumberID: "NEW"})
	require.NoError(t, err)
	assert.False(t, cache.has(phoneKey("OLD")))

	got, err := cs.FindByPhoneNumberID(ctx, "OLD")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedStoreUpdateTextsInvalidates(t *testing.T) {
	store := &memStore{configs: []Config{{BusinessID: "b1", PhoneNumberID: "P1"}}}
	cs, _ := newCached(store)
	ctx := context.Background()

	_, err := cs.FindByPhoneNumberID(ctx, "P1")
	require.NoError(t, err)

	_, err = cs.UpdateTexts(ctx, "b1", Texts{GreetingMessage: strPtr("new hello")})
	require.NoError(t, err)

	got, err := cs.FindByPhoneNumberID(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].GreetingMessage)
	assert.Equal(t, "new hello", *got[0].GreetingMessage)
}

func TestCachedStoreRedeleteDropsLateStaleWrite(t *testing.T) {
	store := &memStore{configs: []Config{{BusinessID: "b1", PhoneNumberID: "P1", AccessToken: "old"}}}
	cs, cache := newCached(store)
	cs.Redelete = 20 * time.Millisecond
	ctx := context.Background()

	_, err := cs.Upsert(ctx, Draft{BusinessID: "b1", PhoneNumberID: "P1", AccessToken: "new"})
	require.NoError(t, err)

	// a lookup that read the old row before the write lands after the delete
	require.NoError(t, cache.SetJSON(ctx, phoneKey("P1"), Config{BusinessID: "b1", PhoneNumberID: "P1", AccessToken: "old"}, time.Minute))

	assert.Eventually(t, func() bool { return !cache.has(phoneKey("P1")) }, time.Second, 5*time.Millisecond)

	got, err := cs.FindByPhoneNumberID(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].AccessToken)
}

func TestCachedStoreDefaultTTL(t *testing.T) {
	store := &memStore{configs: []Config{{BusinessID: "b1", PhoneNumberID: "P1"}}}
	cache := newMemCache()
	cs := &CachedStore{Store: store, Cache: cache, Log: zap.NewNop()}

	_, err := cs.FindByPhoneNumberID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, redisx.TTLBotConfig, cache.ttls[phoneKey("P1")])
}

func TestTextsValuesOnlySetFields(t *testing.T) {
	v := Texts{GreetingMessage: strPtr("hi"), ClosingMessage: strPtr("")}.Values()
	assert.Equal(t, map[string]any{"greeting_message": "hi", "closing_message": ""}, map[string]any(v))
	assert.Empty(t, Texts{}.Values())
}
