package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get on missing key", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		_, _, err := store.Get(ctx, "videos.json")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Metadata(ctx, "videos.json")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get roundtrip", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		etag, err := store.Set(ctx, "videos.json", []byte(`[]`), SetOptions{
			ContentType: "application/json; charset=utf-8",
		})
		require.NoError(t, err)
		require.NotEmpty(t, etag)

		data, gotETag, err := store.Get(ctx, "videos.json")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)
		assert.Equal(t, etag, gotETag)

		meta, err := store.Metadata(ctx, "videos.json")
		require.NoError(t, err)
		assert.Equal(t, etag, meta.ETag)
		assert.Equal(t, "application/json; charset=utf-8", meta.ContentType)
	})

	t.Run("every write issues a fresh etag", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		first, err := store.Set(ctx, "k", []byte("a"), SetOptions{})
		require.NoError(t, err)
		second, err := store.Set(ctx, "k", []byte("b"), SetOptions{})
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("conditional write with matching etag", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		etag, err := store.Set(ctx, "k", []byte("a"), SetOptions{})
		require.NoError(t, err)

		_, err = store.Set(ctx, "k", []byte("b"), SetOptions{IfMatch: etag})
		assert.NoError(t, err)
	})

	t.Run("conditional write with stale etag fails", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		stale, err := store.Set(ctx, "k", []byte("a"), SetOptions{})
		require.NoError(t, err)
		_, err = store.Set(ctx, "k", []byte("b"), SetOptions{})
		require.NoError(t, err)

		_, err = store.Set(ctx, "k", []byte("c"), SetOptions{IfMatch: stale})
		assert.ErrorIs(t, err, ErrPreconditionFailed)

		data, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), data, "failed write must not change the blob")
	})

	t.Run("conditional write on absent key fails", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		_, err := store.Set(ctx, "missing", []byte("a"), SetOptions{IfMatch: "anything"})
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})

	t.Run("stored data is isolated from caller slices", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		payload := []byte("abc")
		_, err := store.Set(ctx, "k", payload, SetOptions{})
		require.NoError(t, err)
		payload[0] = 'x'

		data, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), data)
	})
}

func TestDisabledStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := Disabled{}

	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = store.Set(ctx, "k", nil, SetOptions{})
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = store.Metadata(ctx, "k")
	assert.ErrorIs(t, err, ErrNotEnabled)
}
