package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolveTargets checks the target forms produced from queries, ids,
// URLs and explicit search directives.
func TestResolveTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		query        string
		wantPrimary  string
		wantFallback string
	}{
		{
			name:        "direct video id",
			query:       "dQw4w9WgXcQ",
			wantPrimary: "dQw4w9WgXcQ",
		},
		{
			name:        "absolute url",
			query:       "https://example.com/watch?v=dQw4w9WgXcQ",
			wantPrimary: "https://example.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:        "explicit search directive",
			query:       "ytsearch3:some artist some song",
			wantPrimary: "ytsearch3:some artist some song",
		},
		{
			name:         "free text gets official bias plus fallback",
			query:        "some artist - some song",
			wantPrimary:  "ytsearch1:some artist - some song official video",
			wantFallback: "ytsearch1:some artist - some song",
		},
		{
			name:        "free text already containing bias terms",
			query:       "some song official video",
			wantPrimary: "ytsearch1:some song official video",
		},
		{
			name:         "surrounding whitespace trimmed",
			query:        "  a song  ",
			wantPrimary:  "ytsearch1:a song official video",
			wantFallback: "ytsearch1:a song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			primary, fallback := ResolveTargets(tt.query)
			assert.Equal(t, tt.wantPrimary, primary)
			assert.Equal(t, tt.wantFallback, fallback)
		})
	}
}
