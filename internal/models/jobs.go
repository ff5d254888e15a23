package models

import (
	"time"
)

// JobStatus is the closed set of states a download job moves through.
type JobStatus string

const (
	JobQueued      JobStatus = "queued"
	JobChecking    JobStatus = "checking"
	JobDownloading JobStatus = "downloading"
	JobCompleted   JobStatus = "completed"
	JobFailed      JobStatus = "failed"
	JobCancelled   JobStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted out of s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

// transitionSources maps a target status to the statuses a job may hold when
// moving into it. Cancellation is additionally guarded at the store boundary:
// no update, including these, may overwrite a cancelled job.
var transitionSources = map[JobStatus][]JobStatus{
	JobQueued:      {JobChecking},
	JobChecking:    {JobQueued},
	JobDownloading: {JobQueued, JobChecking},
	JobCompleted:   {JobQueued, JobChecking, JobDownloading},
	JobFailed:      {JobQueued, JobChecking, JobDownloading},
	JobCancelled:   {JobQueued, JobChecking, JobDownloading},
}

// TransitionSources returns the statuses from which target may be entered.
func TransitionSources(target JobStatus) []JobStatus {
	return transitionSources[target]
}

// DownloadJob is one requested unit of media acquisition or post-processing,
// tracked through a status/stage/progress record.
//
// Matches the order of the DB table, do not alter.
type DownloadJob struct {
	ID          string     `json:"id" db:"id"`
	Kind        string     `json:"kind" db:"kind"`
	Status      JobStatus  `json:"status" db:"status"`
	Stage       *string    `json:"stage,omitempty" db:"stage"`
	ProgressPct *float64   `json:"progress_pct,omitempty" db:"progress_pct"`
	Query       string     `json:"query" db:"query"`
	Source      string     `json:"source" db:"source"`
	Quality     string     `json:"quality,omitempty" db:"quality"`
	ArtistName  string     `json:"artist_name,omitempty" db:"artist_name"`
	AlbumTitle  string     `json:"album_title,omitempty" db:"album_title"`
	TrackID     int64      `json:"track_id,omitempty" db:"track_id"`
	AssetID     int64      `json:"asset_id,omitempty" db:"asset_id"`
	Prechecked  bool       `json:"prechecked" db:"prechecked"`
	Error       string     `json:"error,omitempty" db:"error_message"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// JobUpdate models one conditional write against a job row. Nil fields are
// left untouched. WhileStatus, when set, makes the whole write a no-op unless
// the job currently holds that status (used for progress writes that must not
// land after completion or cancellation).
type JobUpdate struct {
	Status      *JobStatus
	Stage       *string
	ClearStage  bool
	ProgressPct *float64
	Prechecked  *bool
	Error       *string
	StartedAt   *time.Time
	FinishedAt  *time.Time
	WhileStatus *JobStatus
}

// JobPayload is the queue message for one unit of work. Field usage varies by
// kind: download/download-check carry query/source/quality, remux carries
// asset and path, hls-segment carries track and path.
type JobPayload struct {
	JobID      string `json:"job_id"`
	Kind       string `json:"kind"`
	Query      string `json:"query,omitempty"`
	Source     string `json:"source,omitempty"`
	Quality    string `json:"quality,omitempty"`
	ArtistName string `json:"artist_name,omitempty"`
	AlbumTitle string `json:"album_title,omitempty"`
	TrackID    int64  `json:"track_id,omitempty"`
	AssetID    int64  `json:"asset_id,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Prechecked bool   `json:"prechecked,omitempty"`
}

// StatusPtr returns a pointer to s, for use in JobUpdate literals.
func StatusPtr(s JobStatus) *JobStatus { return &s }

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
