package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
)

type memStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memStore) SetJSON(_ context.Context, key string, value any, exp time.Duration) error {
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = exp
	return nil
}

func TestResultRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := NewResultRedisCache(store, time.Minute)

	got, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &domain.PathResult{Pi: []float64{1, 2}, OutputGap: []float64{0, 1}, InterestRate: []float64{3, 4}}
	require.NoError(t, c.Set(ctx, "abc", want))
	assert.Equal(t, time.Minute, store.ttls["nkmodel:result:abc"])

	got, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, c.Set(ctx, "nil", nil))
	assert.NotContains(t, store.data, "nkmodel:result:nil")
}

func TestResultRedisCache_Errors(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	c := NewResultRedisCache(store, 0)
	assert.Equal(t, 10*time.Minute, c.ttl)

	_, err := c.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "x", &domain.PathResult{}))
}
