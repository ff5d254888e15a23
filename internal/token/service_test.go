package token

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"grabarr/internal/database"
	"grabarr/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, clock *fakeClock) *Service {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.DB.Close() })

	return NewService(repo.InitStores(db.DB).SettingsStore(), time.Minute, clock.now)
}

// TestEnsureIsStableAndPersisted checks lazy generation and that repeated
// calls return the same token, including across a fresh cache.
func TestEnsureIsStableAndPersisted(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	s := newTestService(t, clock)
	ctx := context.Background()

	first, err := s.Ensure(ctx)
	require.NoError(t, err)
	require.Len(t, first, 64) // 32 random bytes hex encoded

	again, err := s.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Past the TTL the store is re-read, the token itself stays stable.
	clock.advance(2 * time.Minute)
	again, err = s.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

// TestRotateInvalidatesOldToken checks rotation semantics.
func TestRotateInvalidatesOldToken(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	s := newTestService(t, clock)
	ctx := context.Background()

	old, err := s.Ensure(ctx)
	require.NoError(t, err)

	fresh, err := s.Rotate(ctx)
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	ok, err := s.Valid(ctx, old)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Valid(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestValidRejectsEmpty checks the empty-token short circuit.
func TestValidRejectsEmpty(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	s := newTestService(t, clock)

	ok, err := s.Valid(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestFromRequest checks the extraction order: query, header, bearer.
func TestFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/x?token=fromquery", nil)
	r.Header.Set("X-Stream-Token", "fromheader")
	r.Header.Set("Authorization", "Bearer frombearer")
	assert.Equal(t, "fromquery", FromRequest(r))

	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Stream-Token", "fromheader")
	r.Header.Set("Authorization", "Bearer frombearer")
	assert.Equal(t, "fromheader", FromRequest(r))

	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("Authorization", "Bearer frombearer")
	assert.Equal(t, "frombearer", FromRequest(r))

	r = httptest.NewRequest("GET", "/x", nil)
	assert.Equal(t, "", FromRequest(r))
}
