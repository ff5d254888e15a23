package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDoSerializesAndSpaces submits bursts of calls and checks they run one
// at a time with at least the configured spacing between starts.
func TestDoSerializesAndSpaces(t *testing.T) {
	t.Parallel()

	const (
		interval = 30 * time.Millisecond
		calls    = 5
	)

	c := New(interval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	var (
		mu     sync.Mutex
		starts []time.Time
		wg     sync.WaitGroup
	)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Do(ctx, func(ctx context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, starts, calls)
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "gap between call %d and %d", i-1, i)
	}
}

// TestDoPreservesSubmissionOrder checks FIFO execution for sequentially
// submitted calls.
func TestDoPreservesSubmissionOrder(t *testing.T) {
	t.Parallel()

	c := New(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	var order []int

	// Submit from one goroutine so the queue order is the loop order.
	for i := 0; i < 10; i++ {
		i := i
		err := c.Do(ctx, func(ctx context.Context) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}

	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

// TestDoRespectsCallerContext checks a cancelled caller gets its error even
// while queued.
func TestDoRespectsCallerContext(t *testing.T) {
	t.Parallel()

	c := New(time.Hour) // spacing long enough that a second call waits
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	require.NoError(t, c.Do(ctx, func(ctx context.Context) error { return nil }))

	callCtx, callCancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer callCancel()
	err := c.Do(callCtx, func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestGet performs a rate-limited GET against a local server.
func TestGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	resp, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
