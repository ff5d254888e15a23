package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"grabarr/internal/contracts"
	"grabarr/internal/domain/consts"
	"grabarr/internal/domain/keys"
	"grabarr/internal/logging"

	"github.com/spf13/viper"
)

// DefaultConcurrency applies when neither the store nor the environment
// supplies a worker count.
const DefaultConcurrency = 2

const loadBackoff = 500 * time.Millisecond

// ConcurrencySetting reads the persisted worker concurrency through a
// short-lived cache, with bounded retry/backoff at startup and an
// environment-or-default fallback when the store is unavailable.
type ConcurrencySetting struct {
	settings contracts.SettingsStore

	mu       sync.Mutex
	value    int
	loadedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewConcurrencySetting returns a concurrency setting reader. A nil clock
// uses time.Now.
func NewConcurrencySetting(settings contracts.SettingsStore, ttl time.Duration, clock func() time.Time) *ConcurrencySetting {
	if clock == nil {
		clock = time.Now
	}
	return &ConcurrencySetting{
		settings: settings,
		ttl:      ttl,
		now:      clock,
	}
}

// Load reads the setting at startup with bounded retries, falling back to
// the environment-supplied or hard default. Never fatal.
func (c *ConcurrencySetting) Load(ctx context.Context) int {
	attempts := viper.GetInt(keys.ConcurrencyRetries)
	if attempts <= 0 {
		attempts = 3
	}

	for attempt := 0; attempt < attempts; attempt++ {
		n, err := c.readStore(ctx)
		if err == nil {
			c.cache(n)
			return n
		}
		logging.W("Failed to read worker concurrency (attempt %d/%d): %v", attempt+1, attempts, err)
		select {
		case <-ctx.Done():
			attempt = attempts // give up
		case <-time.After(loadBackoff * time.Duration(attempt+1)):
		}
	}

	n := fallbackConcurrency()
	logging.I("Using fallback worker concurrency %d", n)
	c.cache(n)
	return n
}

// Limit returns the current concurrency limit through the TTL cache. Store
// failures keep the last cached value.
func (c *ConcurrencySetting) Limit(ctx context.Context) int {
	c.mu.Lock()
	cached := c.value
	fresh := cached > 0 && c.now().Sub(c.loadedAt) < c.ttl
	c.mu.Unlock()

	if fresh {
		return cached
	}

	n, err := c.readStore(ctx)
	if err != nil {
		if cached > 0 {
			return cached
		}
		n = fallbackConcurrency()
	}
	c.cache(n)
	return n
}

func (c *ConcurrencySetting) cache(n int) {
	c.mu.Lock()
	c.value = n
	c.loadedAt = c.now()
	c.mu.Unlock()
}

func (c *ConcurrencySetting) readStore(ctx context.Context) (int, error) {
	v, found, err := c.settings.Get(ctx, consts.SettingWorkerConcurrency)
	if err != nil {
		return 0, err
	}
	if !found {
		return fallbackConcurrency(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logging.W("Invalid persisted worker concurrency %q, using fallback", v)
		return fallbackConcurrency(), nil
	}
	return n, nil
}

func fallbackConcurrency() int {
	if n := viper.GetInt(keys.Concurrency); n > 0 {
		return n
	}
	return DefaultConcurrency
}
