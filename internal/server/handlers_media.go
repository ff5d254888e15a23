package server

import (
	"net/http"
	"os"

	"grabarr/internal/logging"
)

// handleDeleteTrackMedia removes a track's media from disk along with its
// segment cache. The asset row survives with a cleared path, superseded by
// the next completed download.
func handleDeleteTrackMedia(w http.ResponseWriter, r *http.Request) {
	trackID, ok := trackIDParam(w, r)
	if !ok {
		return
	}

	asset, found, err := as.LatestCompletedAsset(r.Context(), trackID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		errorJSON(w, http.StatusNotFound, "no media for track")
		return
	}

	if asset.FilePath != "" {
		if err := os.Remove(asset.FilePath); err != nil && !os.IsNotExist(err) {
			logging.E("Failed to remove media file %q: %v", asset.FilePath, err)
			errorJSON(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	if err := os.RemoveAll(media.HLSDir(trackID)); err != nil {
		logging.E("Failed to remove segment cache for track %d: %v", trackID, err)
	}

	if err := as.DeleteAssetMedia(r.Context(), asset.ID); err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
