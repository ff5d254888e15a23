package consts

// Database table names.
const (
	DBJobs     = "jobs"
	DBAssets   = "media_assets"
	DBSettings = "settings"
	DBActivity = "activity_log"
)

// Job table columns.
const (
	QJobID         = "id"
	QJobKind       = "kind"
	QJobStatus     = "status"
	QJobStage      = "stage"
	QJobProgress   = "progress_pct"
	QJobQuery      = "query"
	QJobSource     = "source"
	QJobQuality    = "quality"
	QJobArtistName = "artist_name"
	QJobAlbumTitle = "album_title"
	QJobTrackID    = "track_id"
	QJobAssetID    = "asset_id"
	QJobPrechecked = "prechecked"
	QJobError      = "error_message"
	QJobStartedAt  = "started_at"
	QJobFinishedAt = "finished_at"
	QJobCreatedAt  = "created_at"
	QJobUpdatedAt  = "updated_at"
)

// Media asset table columns.
const (
	QAssetID        = "id"
	QAssetTrackID   = "track_id"
	QAssetStatus    = "status"
	QAssetFilePath  = "file_path"
	QAssetCreatedAt = "created_at"
	QAssetUpdatedAt = "updated_at"
)

// Settings table columns.
const (
	QSettingKey       = "key"
	QSettingValue     = "value"
	QSettingUpdatedAt = "updated_at"
)

// Activity log table columns.
const (
	QActivityID        = "id"
	QActivityType      = "type"
	QActivityMessage   = "message"
	QActivityMetadata  = "metadata"
	QActivityCreatedAt = "created_at"
)
