package cacheapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type simpleCache[K comparable, V any] struct {
	m map[K]V
}

func (s *simpleCache[K, V]) Get(ctx context.Context, k K) (V, error) {
	v, ok := s.m[k]
	if !ok {
		return v, ErrCacheKeyNotExist
	}
	return v, nil
}

func (s *simpleCache[K, V]) Set(ctx context.Context, k K, v V) error {
	s.m[k] = v
	return nil
}

func (s *simpleCache[K, V]) Del(ctx context.Context, k K) error {
	delete(s.m, k)
	return nil
}

func newSimpleCache[K comparable, V any]() ICache[K, V] {
	return &simpleCache[K, V]{m: map[K]V{}}
}

func TestLoad(t *testing.T) {
	c := newSimpleCache[string, string]()
	ctx := context.Background()
	calls := 0
	cb := func(ctx context.Context, k string) (string, error) {
		calls++
		return fmt.Sprintf("v-%s", k), nil
	}
	v, err := Load(ctx, c, "a", cb)
	assert.NoError(t, err)
	assert.Equal(t, "v-a", v)
	v, err = Load(ctx, c, "a", cb)
	assert.NoError(t, err)
	assert.Equal(t, "v-a", v)
	assert.Equal(t, 1, calls)
	_, err = c.Get(ctx, "b")
	assert.True(t, errors.Is(err, ErrCacheKeyNotExist))
}

func TestLoadErrorNotCached(t *testing.T) {
	c := newSimpleCache[string, string]()
	ctx := context.Background()
	_, err := Load(ctx, c, "a", func(ctx context.Context, k string) (string, error) {
		return "", fmt.Errorf("load failed")
	})
	assert.Error(t, err)
	_, err = c.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrCacheKeyNotExist))
}
