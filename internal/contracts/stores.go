// Package contracts holds the store interfaces consumed across the program.
package contracts

import (
	"context"
	"database/sql"

	"grabarr/internal/models"
)

// Store bundles access to every store backed by the shared database.
type Store interface {
	JobStore() JobStore
	AssetStore() AssetStore
	SettingsStore() SettingsStore
	ActivityStore() ActivityStore
	GetDB() *sql.DB
}

// JobStore persists download jobs. All mutating writes from the worker pool
// go through UpdateJobIfNotCancelled; reads never block writers (WAL).
type JobStore interface {
	CreateJob(ctx context.Context, j *models.DownloadJob) (string, error)
	GetJob(ctx context.Context, id string) (*models.DownloadJob, bool, error)
	UpdateJobIfNotCancelled(ctx context.Context, id string, u models.JobUpdate) (bool, error)
	UpdateJob(ctx context.Context, id string, u models.JobUpdate) error
	ListJobs(ctx context.Context, limit int) ([]*models.DownloadJob, error)
}

// AssetStore persists media assets resulting from completed downloads.
type AssetStore interface {
	RecordMediaAsset(ctx context.Context, trackID int64, filePath string) (int64, error)
	GetAsset(ctx context.Context, id int64) (*models.MediaAsset, bool, error)
	LatestCompletedAsset(ctx context.Context, trackID int64) (*models.MediaAsset, bool, error)
	UpdateAssetPath(ctx context.Context, id int64, filePath string) error
	DeleteAssetMedia(ctx context.Context, id int64) error
}

// SettingsStore reads and writes single-row key/value settings.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ActivityStore appends and lists activity log events.
type ActivityStore interface {
	Append(ctx context.Context, eventType, message string, metadata map[string]any) error
	Recent(ctx context.Context, limit int) ([]*models.ActivityEvent, error)
}
