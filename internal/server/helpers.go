package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"grabarr/internal/domain/keys"
	"grabarr/internal/logging"
	"grabarr/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
)

var segmentNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// trackIDParam parses the {id} route parameter, writing a 400 on bad input.
func trackIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(w, http.StatusBadRequest, "invalid track id")
		return 0, false
	}
	return id, true
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E("Failed to encode JSON response: %v", err)
	}
}

// errorJSON writes a JSON error body. Handlers never pass raw errors
// through on 5xx paths.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireToken guards the HLS routes with the shared stream token.
func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := token.FromRequest(r)
		ok, err := tokens.Valid(r.Context(), presented)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			errorJSON(w, http.StatusUnauthorized, "invalid or missing stream token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// externalBase returns the advertised base URL for absolute playlist entries,
// falling back to the request's own host.
func externalBase(r *http.Request) string {
	if base := viper.GetString(keys.ExternalURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// byteRange is a single parsed Range request.
type byteRange struct {
	start, end int64
}

// parseRange parses a single bytes= range header against the given size.
// A syntactically invalid or unsatisfiable header returns ok=false; multi
// part ranges are not supported and are treated the same way.
func parseRange(header string, size int64) (byteRange, bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return byteRange{}, false
	}
	start, end, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false
	}

	// Suffix form: bytes=-N requests the final N bytes.
	if start == "" {
		n, err := strconv.ParseInt(end, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, false
		}
		if n > size {
			n = size
		}
		return byteRange{start: size - n, end: size - 1}, true
	}

	s, err := strconv.ParseInt(start, 10, 64)
	if err != nil || s < 0 || s >= size {
		return byteRange{}, false
	}
	e := size - 1
	if end != "" {
		e, err = strconv.ParseInt(end, 10, 64)
		if err != nil || e < s {
			return byteRange{}, false
		}
		if e >= size {
			e = size - 1
		}
	}
	return byteRange{start: s, end: e}, true
}
