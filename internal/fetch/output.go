package fetch

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
)

// finalPathFromLine detects the tool-printed "final file path" line: an
// absolute path carrying a recognized media extension.
func finalPathFromLine(line string) (string, bool) {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, "/") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(l))
	for _, validExt := range consts.AllMediaExtensions {
		if ext == validExt {
			return l, true
		}
	}
	return "", false
}

// newestMediaFile scans dir for the most recently modified media file
// created after start. Returns "" when nothing qualifies.
func newestMediaFile(dir string, start time.Time) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.E("Failed to scan output directory %q: %v", dir, err)
		return ""
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := finalPathFromLine("/" + entry.Name()); !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(start) {
			continue
		}
		if info.ModTime().After(newestTime) {
			newestTime = info.ModTime()
			newest = filepath.Join(dir, entry.Name())
		}
	}
	return newest
}
