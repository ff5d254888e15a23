// Package consts holds various global, unchanging values.
package consts

// Job kinds dispatched by the worker pool.
const (
	KindDownloadCheck = "download-check"
	KindDownload      = "download"
	KindRemux         = "remux"
	KindHLSSegment    = "hls-segment"
)

// Job sources. Monitoring and import sources are subject to the
// official-source preflight when the filter is active.
const (
	SourceManual  = "manual"
	SourceMonitor = "monitor"
	SourceImport  = "import"
)

// Progress stages reported during a fetch.
const (
	StageDownload   = "download"
	StageProcessing = "processing"
	StageFinalizing = "finalizing"
)

// Activity event types appended to the activity log.
const (
	EventDownloadCompleted = "download_completed"
	EventDownloadFailed    = "download_failed"
	EventDownloadRejected  = "download_rejected"
	EventRemuxStarted      = "remux_started"
	EventRemuxCompleted    = "remux_completed"
	EventSegmentFailed     = "hls_segment_failed"
	EventTokenRotated      = "stream_token_rotated"
)

// AllMediaExtensions are the file extensions recognized as fetchable media.
var AllMediaExtensions = []string{
	".mp4", ".mkv", ".webm", ".m4v", ".mov", ".avi",
	".m4a", ".mp3", ".opus", ".ogg", ".flac", ".wav",
}

// Settings keys stored in the settings table.
const (
	SettingStreamToken        = "stream_token"
	SettingStreamTokenEnabled = "stream_token_enabled"
	SettingWorkerConcurrency  = "worker_concurrency"
)
