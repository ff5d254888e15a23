package models

import "time"

// AssetStatus is the lifecycle state of a media asset.
type AssetStatus string

const (
	AssetPending   AssetStatus = "pending"
	AssetCompleted AssetStatus = "completed"
	AssetDeleted   AssetStatus = "deleted"
)

// MediaAsset is the downloaded/transcoded file tied to a track. Rows are
// never physically removed; deletion clears the path and flips the status,
// and playback always selects the most recently created completed asset.
type MediaAsset struct {
	ID        int64       `json:"id" db:"id"`
	TrackID   int64       `json:"track_id" db:"track_id"`
	Status    AssetStatus `json:"status" db:"status"`
	FilePath  string      `json:"file_path" db:"file_path"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
