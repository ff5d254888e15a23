package fetch

import (
	"context"
	"errors"
	"strings"

	"grabarr/internal/domain/command"
	"grabarr/internal/logging"
	"grabarr/internal/models"

	"github.com/araddon/dateparse"
)

// ErrNoMetadata reports that no usable metadata line could be parsed from
// the tool's output.
var ErrNoMetadata = errors.New("unable to resolve metadata")

// ResolveMetadata runs the tool in metadata-only mode (no download) and
// returns the best candidate's title/uploader/channel/uploader-id. The
// biased search target runs first, falling back to the unbiased query.
func (a *Adapter) ResolveMetadata(ctx context.Context, query string) (models.FetchMetadata, error) {
	primary, fallback := ResolveTargets(query)

	md, err := a.metadataTarget(ctx, primary)
	if err == nil {
		return md, nil
	}
	if fallback == "" || !errors.Is(err, ErrNoMetadata) {
		return models.FetchMetadata{}, err
	}

	logging.D(1, "Biased metadata lookup %q yielded nothing, rerunning unbiased", primary)
	return a.metadataTarget(ctx, fallback)
}

func (a *Adapter) metadataTarget(ctx context.Context, target string) (models.FetchMetadata, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	args := []string{
		command.SkipVideo,
		command.NoPlaylist,
		command.Print, command.MetaPrintFields,
	}
	if a.cookieFile != "" {
		args = append(args, command.CookiePath, a.cookieFile)
	}
	args = append(args, target)

	var md models.FetchMetadata
	found := false

	err := runTool(ctx, args, func(line string) {
		if found {
			return
		}
		parsed, ok := parseMetaLine(line)
		if !ok {
			return
		}
		md = parsed
		found = true
	})
	if err != nil {
		return models.FetchMetadata{}, err
	}
	if !found {
		return models.FetchMetadata{}, ErrNoMetadata
	}
	return md, nil
}

// parseMetaLine splits one printed metadata line into its fields. Malformed
// lines are skipped individually.
func parseMetaLine(line string) (models.FetchMetadata, bool) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < 4 {
		return models.FetchMetadata{}, false
	}

	md := models.FetchMetadata{
		Title:      cleanMetaField(fields[0]),
		Uploader:   cleanMetaField(fields[1]),
		Channel:    cleanMetaField(fields[2]),
		UploaderID: cleanMetaField(fields[3]),
	}
	if md.Title == "" {
		return models.FetchMetadata{}, false
	}

	if len(fields) >= 5 {
		if t, err := dateparse.ParseAny(cleanMetaField(fields[4])); err == nil {
			md.UploadDate = t
		}
	}
	if len(fields) >= 6 {
		md.ThumbnailURL = cleanMetaField(fields[5])
	}
	return md, true
}

// cleanMetaField normalizes the tool's placeholder for absent values.
func cleanMetaField(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" || s == "none" {
		return ""
	}
	return s
}
