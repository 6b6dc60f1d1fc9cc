package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("chat", "v1")
	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.Len(t, strings.TrimPrefix(a, KeyPrefix), 64)
	assert.Equal(t, a, Key("chat", "v1"))
	assert.NotEqual(t, a, Key("chat", "v2"))
	assert.NotEqual(t, a, Key("chat2", "v1"))
	// fingerprint and text cannot bleed into each other
	assert.NotEqual(t, Key("bc", "a"), Key("c", "ab"))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v")))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	val := []byte("report")
	require.NoError(t, m.Set(ctx, "k", val))
	val[0] = 'X'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "report", string(got))

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "entry should expire after ttl")
}

func TestRedisCache_Unreachable(t *testing.T) {
	c := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	_, ok, err := c.Get(ctx, Key("chat", ""))
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, Key("chat", ""), []byte("x")))
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1"})
	defer c.Close()
	assert.Equal(t, DefaultTTL, c.ttl)
}
