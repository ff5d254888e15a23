// Package artwork saves cover images for downloaded tracks, fetching them
// through the shared rate-limited client so image hosts are never hammered.
package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"grabarr/internal/ratelimit"
)

const coverName = "cover"

// Saver fetches and stores cover images next to track media.
type Saver struct {
	client *ratelimit.Client
}

// NewSaver returns a Saver over the given rate-limited client.
func NewSaver(client *ratelimit.Client) *Saver {
	return &Saver{client: client}
}

// Save fetches url and writes it beside mediaPath as cover.<ext>, returning
// the written path.
func (s *Saver) Save(ctx context.Context, url, mediaPath string) (string, error) {
	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artwork %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artwork fetch %q returned status %d", url, resp.StatusCode)
	}

	dest := filepath.Join(filepath.Dir(mediaPath), coverName+coverExt(url, resp.Header.Get("Content-Type")))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create artwork file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("failed to write artwork file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

// coverExt picks a file extension from the Content-Type, falling back to
// the URL's own extension, then .jpg.
func coverExt(url, contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if ext := strings.ToLower(filepath.Ext(stripQuery(url))); ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp" {
		return ext
	}
	return ".jpg"
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
