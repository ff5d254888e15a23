package fetch

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatChain builds the yt-dlp format-selection expression for a human
// quality label such as "720p", "1080p" or "2160p". Alternatives run most
// specific first; each later one is used only when the previous is
// unavailable for the given source:
//
//  1. H.264/AAC in mp4/m4a at the height ceiling
//  2. H.264/AAC at the ceiling, any container
//  3. H.264/AAC, unconstrained
//  4. any mp4 at the ceiling
//  5. best available
//
// An empty or unparseable label yields the same chain without a ceiling.
// Identical input always yields the identical expression string.
func FormatChain(quality string) string {
	height := parseHeight(quality)

	if height <= 0 {
		return strings.Join([]string{
			"bestvideo[vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]",
			"bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]",
			"best[ext=mp4]",
			"best",
		}, "/")
	}

	h := strconv.Itoa(height)
	return strings.Join([]string{
		fmt.Sprintf("bestvideo[height<=%s][vcodec^=avc1][ext=mp4]+bestaudio[acodec^=mp4a][ext=m4a]", h),
		fmt.Sprintf("bestvideo[height<=%s][vcodec^=avc1]+bestaudio[acodec^=mp4a]", h),
		"bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]",
		fmt.Sprintf("best[height<=%s][ext=mp4]", h),
		"best",
	}, "/")
}

// parseHeight extracts the resolution ceiling from labels like "1080p".
func parseHeight(quality string) int {
	q := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	if q == "" {
		return 0
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
