package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardConsumeOnce(t *testing.T) {
	g := NewMemoryGuard()

	ok, err := g.TryConsume(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.TryConsume(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.TryConsume(context.Background(), "c2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGuardConcurrentConsume(t *testing.T) {
	g := NewMemoryGuard()

	const workers = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ok, err := g.TryConsume(context.Background(), "contested")
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryGuardResetsUnderPressure(t *testing.T) {
	g := NewMemoryGuard()

	for i := 0; i < maxTrackedChallenges; i++ {
		ok, err := g.TryConsume(context.Background(), fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		require.True(t, ok)
	}

	// The set is full; the next new challenge triggers a reset and the
	// very first challenge becomes consumable again. The database unique
	// constraint covers this window.
	ok, err := g.TryConsume(context.Background(), "overflow")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.TryConsume(context.Background(), "c0")
	require.NoError(t, err)
	assert.True(t, ok)
}
