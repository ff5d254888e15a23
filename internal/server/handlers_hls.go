package server

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"grabarr/internal/domain/command"

	"github.com/go-chi/chi/v5"
)

// handleHLSPlaylist serves the track playlist with every media URI rewritten
// to an absolute, token-carrying URL so stock players can fetch segments.
func handleHLSPlaylist(w http.ResponseWriter, r *http.Request) {
	trackID, ok := trackIDParam(w, r)
	if !ok {
		return
	}

	playlistPath := filepath.Join(media.HLSDir(trackID), command.HLSPlaylistName)
	f, err := os.Open(playlistPath)
	if err != nil {
		errorJSON(w, http.StatusNotFound, "no playlist for track")
		return
	}
	defer f.Close()

	streamToken, err := tokens.Ensure(r.Context())
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	base := fmt.Sprintf("%s/tracks/%d/hls", externalBase(r), trackID)

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		b.WriteString(rewritePlaylistLine(scanner.Text(), base, streamToken))
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	fmt.Fprint(w, b.String())
}

// rewritePlaylistLine makes segment references absolute and tokenized.
// Bare media lines are rewritten wholesale; tag lines only have their
// URI="..." attribute touched.
func rewritePlaylistLine(line, base, streamToken string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return line
	}
	if !strings.HasPrefix(trimmed, "#") {
		return segmentURL(base, trimmed, streamToken)
	}
	if start := strings.Index(line, `URI="`); start >= 0 {
		uriStart := start + len(`URI="`)
		if end := strings.Index(line[uriStart:], `"`); end >= 0 {
			uri := line[uriStart : uriStart+end]
			return line[:uriStart] + segmentURL(base, uri, streamToken) + line[uriStart+end:]
		}
	}
	return line
}

func segmentURL(base, name, streamToken string) string {
	return fmt.Sprintf("%s/%s?token=%s", base, name, streamToken)
}

// handleHLSSegment serves a single segment file from the track's HLS
// directory. Segment names are allow-listed before touching the filesystem.
func handleHLSSegment(w http.ResponseWriter, r *http.Request) {
	trackID, ok := trackIDParam(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "segment")
	if !segmentNamePattern.MatchString(name) || strings.Contains(name, "..") {
		errorJSON(w, http.StatusBadRequest, "invalid segment name")
		return
	}

	dir := media.HLSDir(trackID)
	segPath := filepath.Join(dir, name)

	// Containment re-check after joining, in case of symlink tricks or
	// future pattern changes.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	absSeg, err := filepath.Abs(segPath)
	if err != nil || !strings.HasPrefix(absSeg, absDir+string(filepath.Separator)) {
		errorJSON(w, http.StatusBadRequest, "invalid segment name")
		return
	}

	f, err := os.Open(segPath)
	if err != nil {
		errorJSON(w, http.StatusNotFound, "segment not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		errorJSON(w, http.StatusNotFound, "segment not found")
		return
	}

	w.Header().Set("Content-Type", segmentMIME(name))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func segmentMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".m4s":
		return "video/iso.segment"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
