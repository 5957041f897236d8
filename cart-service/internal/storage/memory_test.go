package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadMissing(t *testing.T) {
	s := NewMemoryStore()

	v, ok, err := s.Read(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestMemoryStore_WriteThenRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte(`[{"id":"1"}]`)
	require.NoError(t, s.Write(ctx, "cart", value))
	value[0] = 'x'

	got, ok, err := s.Read(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	got[0] = 'y'
	again, _, _ := s.Read(ctx, "cart")
	assert.Equal(t, `[{"id":"1"}]`, string(again))
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, _, err := s.Read(context.Background(), "cart")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Write(context.Background(), "cart", nil), ErrClosed)
}

func TestCartKey_Format(t *testing.T) {
	assert.Equal(t, "cart:abc", CartKey("abc"))
}
