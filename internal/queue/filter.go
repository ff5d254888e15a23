package queue

import (
	"fmt"
	"regexp"
	"strings"

	"grabarr/internal/models"
)

var vevoPattern = regexp.MustCompile(`(?i)vevo\b`)

// IsOfficial reports whether resolved metadata looks like an official
// release. Two signals pass: an "official ... video" title that is not
// disclaiming officialness, or a Vevo channel.
func IsOfficial(meta models.FetchMetadata) bool {
	if officialTitle(meta.Title) {
		return true
	}
	return vevoPattern.MatchString(meta.Uploader) ||
		vevoPattern.MatchString(meta.Channel) ||
		vevoPattern.MatchString(meta.UploaderID)
}

func officialTitle(title string) bool {
	t := strings.ToLower(title)
	if !strings.Contains(t, "official") || !strings.Contains(t, "video") {
		return false
	}
	if strings.Contains(t, "unofficial") || strings.Contains(t, "non-official") {
		return false
	}
	return true
}

// RejectionReason describes why metadata failed the official filter.
func RejectionReason(meta models.FetchMetadata) string {
	return fmt.Sprintf("result %q by %q does not look like an official video", meta.Title, meta.Uploader)
}
