package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/Masterminds/squirrel"
)

// AssetStore holds a pointer to the sql.DB.
type AssetStore struct {
	DB *sql.DB
}

// GetAssetStore returns an asset store instance with injected database.
func GetAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{DB: db}
}

// RecordMediaAsset creates a new completed asset row for the track. Earlier
// rows are left in place; playback selects the most recently created
// completed asset, so older entries are superseded rather than removed.
func (as *AssetStore) RecordMediaAsset(ctx context.Context, trackID int64, filePath string) (int64, error) {
	if trackID == 0 {
		return 0, errors.New("must enter a track ID for the asset")
	}
	now := time.Now()

	query := squirrel.
		Insert(consts.DBAssets).
		Columns(
			consts.QAssetTrackID,
			consts.QAssetStatus,
			consts.QAssetFilePath,
			consts.QAssetCreatedAt,
			consts.QAssetUpdatedAt,
		).
		Values(trackID, models.AssetCompleted, filePath, now, now).
		RunWith(as.DB)

	result, err := query.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to record asset for track %d: %w", trackID, err)
	}
	return result.LastInsertId()
}

// GetAsset retrieves an asset by ID.
func (as *AssetStore) GetAsset(ctx context.Context, id int64) (*models.MediaAsset, bool, error) {
	query := squirrel.
		Select(assetColumns()...).
		From(consts.DBAssets).
		Where(squirrel.Eq{consts.QAssetID: id}).
		RunWith(as.DB)

	a, err := scanAsset(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get asset %d: %w", id, err)
	}
	return a, true, nil
}

// LatestCompletedAsset returns the authoritative playback asset for a track:
// the most recently created completed entry.
func (as *AssetStore) LatestCompletedAsset(ctx context.Context, trackID int64) (*models.MediaAsset, bool, error) {
	query := squirrel.
		Select(assetColumns()...).
		From(consts.DBAssets).
		Where(squirrel.Eq{
			consts.QAssetTrackID: trackID,
			consts.QAssetStatus:  models.AssetCompleted,
		}).
		OrderBy(consts.QAssetCreatedAt + " DESC").
		Limit(1).
		RunWith(as.DB)

	a, err := scanAsset(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest asset for track %d: %w", trackID, err)
	}
	return a, true, nil
}

// UpdateAssetPath replaces the file path of an existing asset (remux).
func (as *AssetStore) UpdateAssetPath(ctx context.Context, id int64, filePath string) error {
	query := squirrel.
		Update(consts.DBAssets).
		Set(consts.QAssetFilePath, filePath).
		Set(consts.QAssetStatus, models.AssetCompleted).
		Set(consts.QAssetUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QAssetID: id}).
		RunWith(as.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to update path for asset %d: %w", id, err)
	}
	return nil
}

// DeleteAssetMedia clears the file path and marks the asset deleted. The row
// itself stays: assets are superseded, never physically removed.
func (as *AssetStore) DeleteAssetMedia(ctx context.Context, id int64) error {
	query := squirrel.
		Update(consts.DBAssets).
		Set(consts.QAssetFilePath, "").
		Set(consts.QAssetStatus, models.AssetDeleted).
		Set(consts.QAssetUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QAssetID: id}).
		RunWith(as.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to delete media for asset %d: %w", id, err)
	}
	return nil
}

func assetColumns() []string {
	return []string{
		consts.QAssetID,
		consts.QAssetTrackID,
		consts.QAssetStatus,
		consts.QAssetFilePath,
		consts.QAssetCreatedAt,
		consts.QAssetUpdatedAt,
	}
}

func scanAsset(row rowScanner) (*models.MediaAsset, error) {
	var (
		a        models.MediaAsset
		filePath sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.TrackID,
		&a.Status,
		&filePath,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.FilePath = filePath.String
	return &a, nil
}
