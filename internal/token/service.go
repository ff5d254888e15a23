// Package token manages the single shared secret gating playback endpoints.
package token

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"grabarr/internal/contracts"
	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
)

const tokenBytes = 32

// Service caches the stream access token in memory with a short TTL,
// re-reading the store on expiry. Exactly one token is active at a time;
// rotation invalidates all previously issued URLs immediately.
type Service struct {
	settings contracts.SettingsStore

	mu       sync.Mutex
	cached   string
	enabled  bool
	loadedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewService returns a token service. A nil clock uses time.Now.
func NewService(settings contracts.SettingsStore, ttl time.Duration, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		settings: settings,
		ttl:      ttl,
		now:      clock,
	}
}

// Ensure returns the active token, lazily generating and persisting a new
// cryptographically random one when none exists.
func (s *Service) Ensure(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && s.now().Sub(s.loadedAt) < s.ttl {
		return s.cached, nil
	}

	stored, found, err := s.settings.Get(ctx, consts.SettingStreamToken)
	if err != nil {
		return "", fmt.Errorf("failed to read stream token: %w", err)
	}
	if found && stored != "" {
		s.cached = stored
		s.enabled = s.readEnabled(ctx)
		s.loadedAt = s.now()
		return stored, nil
	}

	return s.generateLocked(ctx)
}

// Rotate generates and persists a new token, invalidating the previous one
// with no grace period.
func (s *Service) Rotate(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateLocked(ctx)
}

// Valid reports whether the presented token matches the active one.
func (s *Service) Valid(ctx context.Context, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	active, err := s.Ensure(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	enabled := s.enabled
	s.mu.Unlock()
	if !enabled {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(active), []byte(presented)) == 1, nil
}

// FromRequest extracts the presented token: query parameter first, then the
// custom header, then a bearer Authorization header.
func FromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if t := r.Header.Get("X-Stream-Token"); t != "" {
		return t
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (s *Service) generateLocked(ctx context.Context) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate stream token: %w", err)
	}
	generated := hex.EncodeToString(buf)

	if err := s.settings.Set(ctx, consts.SettingStreamToken, generated); err != nil {
		return "", fmt.Errorf("failed to persist stream token: %w", err)
	}
	if err := s.settings.Set(ctx, consts.SettingStreamTokenEnabled, "true"); err != nil {
		return "", fmt.Errorf("failed to persist stream token enablement: %w", err)
	}

	s.cached = generated
	s.enabled = true
	s.loadedAt = s.now()

	logging.I("Generated new stream access token")
	return generated, nil
}

func (s *Service) readEnabled(ctx context.Context) bool {
	v, found, err := s.settings.Get(ctx, consts.SettingStreamTokenEnabled)
	if err != nil {
		logging.E("Failed to read stream token enablement: %v", err)
		return true
	}
	if !found {
		return true
	}
	return v != "false"
}
