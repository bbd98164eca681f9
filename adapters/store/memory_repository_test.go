package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samoylenkodmitry/shrtlin/core"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	r := NewMemoryUserRepository()
	ctx := context.Background()

	u, err := r.CreateFromChallenge(ctx, "user42", "challenge-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "user42", u.Nick)

	got, err := r.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = r.Get(ctx, 999)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestUserRepositoryChallengeUnique(t *testing.T) {
	r := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := r.CreateFromChallenge(ctx, "first", "challenge-a")
	require.NoError(t, err)

	_, err = r.CreateFromChallenge(ctx, "second", "challenge-a")
	assert.ErrorIs(t, err, core.ErrUserExists)
}

func TestUserRepositoryConcurrentSameChallenge(t *testing.T) {
	r := NewMemoryUserRepository()

	const workers = 32
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := r.CreateFromChallenge(context.Background(), "nick", "contested")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, core.ErrUserExists)
		}
	}
	assert.Equal(t, 1, created)
}

func TestUserRepositoryUpdateNick(t *testing.T) {
	r := NewMemoryUserRepository()
	ctx := context.Background()

	u, err := r.CreateFromChallenge(ctx, "old", "c")
	require.NoError(t, err)

	ok, err := r.UpdateNick(ctx, u.ID, "new")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Nick)

	ok, err = r.UpdateNick(ctx, 999, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestURLRepositoryCreateAssignsCode(t *testing.T) {
	r := NewMemoryURLRepository()
	ctx := context.Background()

	info, err := r.Create(ctx, core.UrlInfo{OriginalURL: "example.com/a", UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.ID)
	assert.Equal(t, core.EncodeID(info.ID), info.ShortURL)
	assert.NotZero(t, info.Timestamp)

	got, err := r.GetByCode(ctx, info.ShortURL)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	_, err = r.GetByCode(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrURLNotFound)
}

func TestURLRepositoryListByUserPagination(t *testing.T) {
	r := NewMemoryURLRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.Create(ctx, core.UrlInfo{OriginalURL: fmt.Sprintf("example.com/%d", i), UserID: 1})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, core.UrlInfo{OriginalURL: "example.com/other", UserID: 2})
	require.NoError(t, err)

	urls, total, err := r.ListByUser(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, urls, 2)
	// Newest first.
	assert.Greater(t, urls[0].ID, urls[1].ID)

	urls, _, err = r.ListByUser(ctx, 1, 3, 2)
	require.NoError(t, err)
	assert.Len(t, urls, 1)

	urls, _, err = r.ListByUser(ctx, 1, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestURLRepositoryRemoveOwnership(t *testing.T) {
	r := NewMemoryURLRepository()
	ctx := context.Background()

	info, err := r.Create(ctx, core.UrlInfo{OriginalURL: "example.com", UserID: 1})
	require.NoError(t, err)

	// Wrong owner cannot remove.
	ok, err := r.Remove(ctx, info.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Remove(ctx, info.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.GetByCode(ctx, info.ShortURL)
	assert.ErrorIs(t, err, core.ErrURLNotFound)
}

func TestURLRepositoryIncrementClicks(t *testing.T) {
	r := NewMemoryURLRepository()
	ctx := context.Background()

	info, err := r.Create(ctx, core.UrlInfo{OriginalURL: "example.com", UserID: 1})
	require.NoError(t, err)

	require.NoError(t, r.IncrementClicks(ctx, info.ID, false))
	require.NoError(t, r.IncrementClicks(ctx, info.ID, true))

	got, err := r.GetByCode(ctx, info.ShortURL)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)
	assert.Equal(t, int64(1), got.QrClicks)

	assert.ErrorIs(t, r.IncrementClicks(ctx, 999, false), core.ErrURLNotFound)
}
