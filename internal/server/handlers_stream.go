package server

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"grabarr/internal/logging"
)

// handleStreamTrack serves the latest completed asset for a track as a
// progressive MP4 download with single-range support.
func handleStreamTrack(w http.ResponseWriter, r *http.Request) {
	trackID, ok := trackIDParam(w, r)
	if !ok {
		return
	}

	asset, found, err := as.LatestCompletedAsset(r.Context(), trackID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found || asset.FilePath == "" {
		errorJSON(w, http.StatusNotFound, "no media for track")
		return
	}

	f, err := os.Open(asset.FilePath)
	if err != nil {
		logging.W("Asset %d for track %d missing on disk: %v", asset.ID, trackID, err)
		errorJSON(w, http.StatusNotFound, "no media for track")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		errorJSON(w, http.StatusNotFound, "no media for track")
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Range")

	rng, validRange := byteRange{}, false
	if header := r.Header.Get("Range"); header != "" {
		rng, validRange = parseRange(header, size)
	}

	// Unsatisfiable or malformed ranges degrade to a full 200 response.
	if !validRange {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			logging.D(2, "Stream for track %d ended early: %v", trackID, err)
		}
		return
	}

	if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	length := rng.end - rng.start + 1

	w.Header().Set("Content-Length", fmt.Sprintf("%d", length))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, f, length); err != nil {
		logging.D(2, "Ranged stream for track %d ended early: %v", trackID, err)
	}
}
