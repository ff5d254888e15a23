package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseMetaLine checks parsing of the tool's tab-separated metadata
// print line.
func TestParseMetaLine(t *testing.T) {
	t.Parallel()

	md, ok := parseMetaLine("Artist - Song (Official Video)\tArtistVEVO\tArtistVEVO\t@artistvevo\t20240115\thttps://img.example.com/t.jpg")
	require.True(t, ok)
	assert.Equal(t, "Artist - Song (Official Video)", md.Title)
	assert.Equal(t, "ArtistVEVO", md.Uploader)
	assert.Equal(t, "ArtistVEVO", md.Channel)
	assert.Equal(t, "@artistvevo", md.UploaderID)
	assert.Equal(t, 2024, md.UploadDate.Year())
	assert.Equal(t, time.January, md.UploadDate.Month())
	assert.Equal(t, "https://img.example.com/t.jpg", md.ThumbnailURL)

	// Placeholder values collapse to empty fields.
	md, ok = parseMetaLine("Some Title\tNA\tnone\tNA\tNA\tNA")
	require.True(t, ok)
	assert.Equal(t, "Some Title", md.Title)
	assert.Empty(t, md.Uploader)
	assert.Empty(t, md.Channel)
	assert.Empty(t, md.UploaderID)
	assert.True(t, md.UploadDate.IsZero())
	assert.Empty(t, md.ThumbnailURL)

	// Too few fields or an empty title are skipped.
	_, ok = parseMetaLine("just a log line")
	assert.False(t, ok)
	_, ok = parseMetaLine("NA\tuploader\tchannel\tid")
	assert.False(t, ok)
}

// TestFinalPathFromLine checks final-path line detection.
func TestFinalPathFromLine(t *testing.T) {
	t.Parallel()

	p, ok := finalPathFromLine("/media/downloads/Artist_-_Song.mp4")
	require.True(t, ok)
	assert.Equal(t, "/media/downloads/Artist_-_Song.mp4", p)

	_, ok = finalPathFromLine("[download] 100% of 10MiB")
	assert.False(t, ok)

	_, ok = finalPathFromLine("/media/downloads/notes.txt")
	assert.False(t, ok)

	_, ok = finalPathFromLine("relative/path/song.mp4")
	assert.False(t, ok)
}
