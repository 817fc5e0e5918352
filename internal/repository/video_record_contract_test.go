package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
)

// testVideoRecordContract exercises the behaviour every backend must share.
// other is a repository for a second alias on the same backend.
func testVideoRecordContract(t *testing.T, repo, other VideoRecordRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	first := []byte(`{"VIDEO_BASIC_DATA": {"contentDetails": {"videoId": "dQw4w9WgXcQ"}}}`)
	second := []byte(`{"VIDEO_BASIC_DATA": {"contentDetails": {"videoId": "9bZkp7q19f0"}}}`)

	t.Run("empty repository", func(t *testing.T) {
		ids, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)

		exists, err := repo.Exists(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.Get(ctx, "dQw4w9WgXcQ")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "dQw4w9WgXcQ", first))
		require.NoError(t, repo.Put(ctx, "9bZkp7q19f0", second))

		exists, err := repo.Exists(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := repo.Get(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(got))
	})

	t.Run("put never overwrites", func(t *testing.T) {
		err := repo.Put(ctx, "dQw4w9WgXcQ", second)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		got, err := repo.Get(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(got))
	})

	t.Run("list is sorted", func(t *testing.T) {
		ids, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"9bZkp7q19f0", "dQw4w9WgXcQ"}, ids)
	})

	t.Run("aliases are isolated", func(t *testing.T) {
		exists, err := other.Exists(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.False(t, exists)

		ids, err := other.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("invalid video ID", func(t *testing.T) {
		for _, id := range []string{"", "..", "a/b"} {
			err := repo.Put(ctx, id, first)
			require.Error(t, err, id)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg), id)
		}
	})
}
