package vectorstore

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyGuardRunsOnce(t *testing.T) {
	var g ReadyGuard
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(func() error {
				calls.Add(1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestReadyGuardRetriesAfterFailure(t *testing.T) {
	var g ReadyGuard
	calls := 0
	boom := errors.New("boom")

	err := g.Do(func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Failure is not memoized; the next call retries the bootstrap.
	require.NoError(t, g.Do(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 2, calls)

	// Success is memoized; further calls are no-ops.
	require.NoError(t, g.Do(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 2, calls)
}
