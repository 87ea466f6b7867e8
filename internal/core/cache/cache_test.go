package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestNilCacheLoadsThrough(t *testing.T) {
	var c *Cache
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{ID: "p1", Name: "phone"}, nil
	}
	for range 2 {
		got, err := GetOrLoadJSON(c, context.Background(), "product:p1", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "phone", got.Name)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Invalidate(context.Background(), "product:p1"))
	assert.NoError(t, c.Close())
}

// redis 不可达时退化为直接回源
func TestUnreachableRedisFallsBackToLoader(t *testing.T) {
	c := NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	}))
	defer c.Close()

	got, err := GetOrLoadJSON(c, context.Background(), "product:p1", time.Minute, func(context.Context) (*item, error) {
		return &item{ID: "p1", Name: "phone"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, &item{ID: "p1", Name: "phone"}, got)

	boom := errors.New("boom")
	_, err = GetOrLoadJSON(c, context.Background(), "product:p2", time.Minute, func(context.Context) (*item, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
