package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_GetSet(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", 0))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestMemoryKV_TTL(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tilp:session:a", "x", time.Hour))

	now = now.Add(59 * time.Minute)
	_, err := kv.Get(ctx, "tilp:session:a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = kv.Get(ctx, "tilp:session:a")
	assert.ErrorIs(t, err, ErrMiss)

	keys, err := kv.ScanKeys(ctx, "tilp:session:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryKV_ScanAndDelete(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tilp:session:b", "1", 0))
	require.NoError(t, kv.Set(ctx, "tilp:session:a", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:key", "3", 0))

	keys, err := kv.ScanKeys(ctx, "tilp:session:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"tilp:session:a", "tilp:session:b"}, keys)

	require.NoError(t, kv.Delete(ctx, keys...))
	keys, err = kv.ScanKeys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"other:key"}, keys)
}
