package models

import "time"

// ProgressEvent is one classified line of fetch-tool output: the stage the
// tool is in and, when the line carried one, a percentage.
type ProgressEvent struct {
	Stage      string
	Percent    float64
	HasPercent bool
}

// FetchMetadata is the result of a metadata-only fetch invocation, used by
// the official-source preflight.
type FetchMetadata struct {
	Title        string
	Uploader     string
	Channel      string
	UploaderID   string
	UploadDate   time.Time
	ThumbnailURL string
}
