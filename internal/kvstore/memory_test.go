package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`)))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), val)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestMemStoreCopiesValues(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'X'

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), val)
}
