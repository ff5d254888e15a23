package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatChain checks the exact format expression per quality label, and
// that repeated calls are byte-identical.
func TestFormatChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		quality string
		want    string
	}{
		{
			quality: "1080p",
			want: "bestvideo[height<=1080][vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]" +
				"/bestvideo[height<=1080][vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/best[height<=1080][ext=mp4]" +
				"/best",
		},
		{
			quality: "720P",
			want: "bestvideo[height<=720][vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]" +
				"/bestvideo[height<=720][vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/best[height<=720][ext=mp4]" +
				"/best",
		},
		{
			quality: "",
			want: "bestvideo[vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]" +
				"/bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/best[ext=mp4]" +
				"/best",
		},
		{
			quality: "not-a-resolution",
			want: "bestvideo[vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]" +
				"/bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]" +
				"/best[ext=mp4]" +
				"/best",
		},
	}

	for _, tt := range tests {
		t.Run("quality "+tt.quality, func(t *testing.T) {
			t.Parallel()

			got := FormatChain(tt.quality)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, FormatChain(tt.quality))
		})
	}
}
