package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"grabarr/internal/domain/keys"
	"grabarr/internal/logging"

	"github.com/spf13/viper"
)

// fallbackMediaDir is used when the configured media root cannot be created.
const fallbackMediaDir = "media"

// MediaRoot resolves and caches the media root directory. The cached value
// carries its load time and expires after the TTL, so configuration changes
// are observed without re-statting the filesystem on every call.
type MediaRoot struct {
	mu       sync.Mutex
	value    string
	loadedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMediaRoot returns a media root cache. A nil clock uses time.Now.
func NewMediaRoot(ttl time.Duration, clock func() time.Time) *MediaRoot {
	if clock == nil {
		clock = time.Now
	}
	return &MediaRoot{ttl: ttl, now: clock}
}

// Path returns the media root directory, creating it on first use and
// falling back to a local working directory when the configured root cannot
// be created.
func (m *MediaRoot) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.value != "" && m.now().Sub(m.loadedAt) < m.ttl {
		return m.value
	}

	m.value = resolveMediaRoot()
	m.loadedAt = m.now()
	return m.value
}

// HLSDir returns the per-track segment cache directory under the media root.
func (m *MediaRoot) HLSDir(trackID int64) string {
	return filepath.Join(m.Path(), "hls", fmt.Sprintf("track_%d", trackID))
}

// DownloadDir returns the directory new downloads are written into.
func (m *MediaRoot) DownloadDir() string {
	return filepath.Join(m.Path(), "downloads")
}

func resolveMediaRoot() string {
	configured := viper.GetString(keys.MediaDir)
	if configured != "" {
		if err := os.MkdirAll(configured, 0o755); err == nil {
			return configured
		}
		logging.W("Cannot create configured media root %q, falling back to %q", configured, fallbackMediaDir)
	}

	if err := os.MkdirAll(fallbackMediaDir, 0o755); err != nil {
		logging.E("Cannot create fallback media root %q: %v", fallbackMediaDir, err)
	}
	return fallbackMediaDir
}
