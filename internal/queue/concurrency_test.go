package queue

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSettings is an in-memory settings store that can simulate outages.
type memSettings struct {
	values map[string]string
	err    error
	reads  int
}

func (m *memSettings) Get(ctx context.Context, key string) (string, bool, error) {
	m.reads++
	if m.err != nil {
		return "", false, m.err
	}
	v, found := m.values[key]
	return v, found, nil
}

func (m *memSettings) Set(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

// TestConcurrencyLimitCachesWithTTL checks the TTL cache and the re-read on
// expiry using an injected clock.
func TestConcurrencyLimitCachesWithTTL(t *testing.T) {
	t.Parallel()

	settings := &memSettings{values: map[string]string{"worker_concurrency": "4"}}
	clock := time.Now()
	c := NewConcurrencySetting(settings, time.Minute, func() time.Time { return clock })
	ctx := context.Background()

	require.Equal(t, 4, c.Limit(ctx))
	readsAfterFirst := settings.reads

	// Within the TTL the store is not consulted again.
	require.Equal(t, 4, c.Limit(ctx))
	assert.Equal(t, readsAfterFirst, settings.reads)

	// Past the TTL a changed setting is observed.
	settings.values["worker_concurrency"] = "8"
	clock = clock.Add(2 * time.Minute)
	require.Equal(t, 8, c.Limit(ctx))
}

// TestConcurrencyLimitKeepsStaleValueOnError checks outage behavior: the
// last good value survives a store failure.
func TestConcurrencyLimitKeepsStaleValueOnError(t *testing.T) {
	t.Parallel()

	settings := &memSettings{values: map[string]string{"worker_concurrency": "6"}}
	clock := time.Now()
	c := NewConcurrencySetting(settings, time.Minute, func() time.Time { return clock })
	ctx := context.Background()

	require.Equal(t, 6, c.Limit(ctx))

	settings.err = errors.New("store down")
	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 6, c.Limit(ctx))
}

// TestConcurrencyLoadFallsBack checks the bounded-retry startup read ending
// in the hard default.
func TestConcurrencyLoadFallsBack(t *testing.T) {
	t.Parallel()

	settings := &memSettings{err: errors.New("store down")}
	c := NewConcurrencySetting(settings, time.Minute, time.Now)

	n := c.Load(context.Background())
	assert.Equal(t, DefaultConcurrency, n)
	assert.GreaterOrEqual(t, settings.reads, 2)
}

// TestReadStoreSanitizes checks malformed persisted values fall back.
func TestReadStoreSanitizes(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"0", "-3", "lots"} {
		settings := &memSettings{values: map[string]string{"worker_concurrency": bad}}
		c := NewConcurrencySetting(settings, time.Minute, time.Now)
		assert.Equal(t, DefaultConcurrency, c.Limit(context.Background()), "value %q", bad)
	}

	settings := &memSettings{values: map[string]string{"worker_concurrency": strconv.Itoa(12)}}
	c := NewConcurrencySetting(settings, time.Minute, time.Now)
	assert.Equal(t, 12, c.Limit(context.Background()))
}
