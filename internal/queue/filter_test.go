package queue

import (
	"testing"

	"grabarr/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestIsOfficial checks the official-source classification signals.
func TestIsOfficial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta models.FetchMetadata
		want bool
	}{
		{
			name: "official video title",
			meta: models.FetchMetadata{Title: "Artist - Song (Official Video)", Uploader: "SomeChannel"},
			want: true,
		},
		{
			name: "official music video title",
			meta: models.FetchMetadata{Title: "Artist - Song [Official Music Video]"},
			want: true,
		},
		{
			name: "unofficial title rejected",
			meta: models.FetchMetadata{Title: "Artist - Song (Unofficial Video)"},
			want: false,
		},
		{
			name: "non-official title rejected",
			meta: models.FetchMetadata{Title: "Artist - Song (non-official video)"},
			want: false,
		},
		{
			name: "official without video is not enough",
			meta: models.FetchMetadata{Title: "Artist - Song (Official Audio)"},
			want: false,
		},
		{
			name: "vevo uploader",
			meta: models.FetchMetadata{Title: "Artist - Song", Uploader: "ArtistVEVO"},
			want: true,
		},
		{
			name: "vevo channel",
			meta: models.FetchMetadata{Title: "Artist - Song", Channel: "artistvevo"},
			want: true,
		},
		{
			name: "vevo uploader id",
			meta: models.FetchMetadata{Title: "Artist - Song", UploaderID: "ArtistVevo"},
			want: true,
		},
		{
			name: "vevo embedded mid-word does not match",
			meta: models.FetchMetadata{Title: "Artist - Song", Uploader: "vevolution"},
			want: false,
		},
		{
			name: "plain fan upload",
			meta: models.FetchMetadata{Title: "Artist - Song lyrics", Uploader: "randomfan123"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsOfficial(tt.meta))
		})
	}
}

// TestRejectionReason spot-checks the human-readable rejection text.
func TestRejectionReason(t *testing.T) {
	t.Parallel()

	reason := RejectionReason(models.FetchMetadata{Title: "Some Cover", Uploader: "coverband"})
	assert.Contains(t, reason, "Some Cover")
	assert.Contains(t, reason, "coverband")
}
