package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// JobStore holds a pointer to the sql.DB.
type JobStore struct {
	DB *sql.DB
}

// GetJobStore returns a job store instance with injected database.
func GetJobStore(db *sql.DB) *JobStore {
	return &JobStore{DB: db}
}

// CreateJob inserts a new job row. A missing ID is generated, a missing
// status defaults to queued.
func (js *JobStore) CreateJob(ctx context.Context, j *models.DownloadJob) (string, error) {
	if j.Kind == "" {
		return "", errors.New("must enter a job kind")
	}
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Status == "" {
		j.Status = models.JobQueued
	}
	now := time.Now()

	query := squirrel.
		Insert(consts.DBJobs).
		Columns(
			consts.QJobID,
			consts.QJobKind,
			consts.QJobStatus,
			consts.QJobQuery,
			consts.QJobSource,
			consts.QJobQuality,
			consts.QJobArtistName,
			consts.QJobAlbumTitle,
			consts.QJobTrackID,
			consts.QJobAssetID,
			consts.QJobPrechecked,
			consts.QJobCreatedAt,
			consts.QJobUpdatedAt,
		).
		Values(
			j.ID,
			j.Kind,
			j.Status,
			j.Query,
			j.Source,
			j.Quality,
			j.ArtistName,
			j.AlbumTitle,
			j.TrackID,
			j.AssetID,
			j.Prechecked,
			now,
			now,
		).
		RunWith(js.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return "", fmt.Errorf("failed to insert job: %w", err)
	}
	return j.ID, nil
}

// GetJob retrieves a job by ID.
func (js *JobStore) GetJob(ctx context.Context, id string) (*models.DownloadJob, bool, error) {
	query := squirrel.
		Select(jobColumns()...).
		From(consts.DBJobs).
		Where(squirrel.Eq{consts.QJobID: id}).
		RunWith(js.DB)

	j, err := scanJob(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get job %q: %w", id, err)
	}
	return j, true, nil
}

// UpdateJobIfNotCancelled applies the update only when the job is not
// cancelled, and, when the update changes status, only when the current
// status is a legal source for the target status. A zero row count is a
// benign no-op (late writes racing cancellation or completion), reported
// through the boolean, never as an error.
func (js *JobStore) UpdateJobIfNotCancelled(ctx context.Context, id string, u models.JobUpdate) (bool, error) {
	query := applyJobUpdate(u).
		Where(squirrel.Eq{consts.QJobID: id}).
		Where(squirrel.NotEq{consts.QJobStatus: models.JobCancelled})

	if u.Status != nil {
		query = query.Where(squirrel.Eq{consts.QJobStatus: models.TransitionSources(*u.Status)})
	}
	if u.WhileStatus != nil {
		query = query.Where(squirrel.Eq{consts.QJobStatus: *u.WhileStatus})
	}

	result, err := query.RunWith(js.DB).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update job %q: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for job %q: %w", id, err)
	}
	if n == 0 {
		logging.D(2, "Conditional update for job %q did not apply (cancelled, terminal, or illegal transition)", id)
	}
	return n > 0, nil
}

// UpdateJob applies the update unconditionally. Used by remux and segment
// jobs, which do not participate in the cancellation guard.
func (js *JobStore) UpdateJob(ctx context.Context, id string, u models.JobUpdate) error {
	query := applyJobUpdate(u).
		Where(squirrel.Eq{consts.QJobID: id}).
		RunWith(js.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to update job %q: %w", id, err)
	}
	return nil
}

// ListJobs returns the most recently created jobs, newest first.
func (js *JobStore) ListJobs(ctx context.Context, limit int) ([]*models.DownloadJob, error) {
	if limit <= 0 {
		limit = 50
	}

	query := squirrel.
		Select(jobColumns()...).
		From(consts.DBJobs).
		OrderBy(consts.QJobCreatedAt + " DESC").
		Limit(uint64(limit)).
		RunWith(js.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E("Failed to close job rows: %v", err)
		}
	}()

	var jobs []*models.DownloadJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// applyJobUpdate translates the non-nil update fields into SET clauses.
func applyJobUpdate(u models.JobUpdate) squirrel.UpdateBuilder {
	query := squirrel.
		Update(consts.DBJobs).
		Set(consts.QJobUpdatedAt, time.Now())

	if u.Status != nil {
		query = query.Set(consts.QJobStatus, *u.Status)
	}
	if u.Stage != nil {
		query = query.Set(consts.QJobStage, *u.Stage)
	} else if u.ClearStage {
		query = query.Set(consts.QJobStage, nil)
	}
	if u.ProgressPct != nil {
		query = query.Set(consts.QJobProgress, *u.ProgressPct)
	}
	if u.Prechecked != nil {
		query = query.Set(consts.QJobPrechecked, *u.Prechecked)
	}
	if u.Error != nil {
		query = query.Set(consts.QJobError, *u.Error)
	}
	if u.StartedAt != nil {
		query = query.Set(consts.QJobStartedAt, *u.StartedAt)
	}
	if u.FinishedAt != nil {
		query = query.Set(consts.QJobFinishedAt, *u.FinishedAt)
	}
	return query
}

func jobColumns() []string {
	return []string{
		consts.QJobID,
		consts.QJobKind,
		consts.QJobStatus,
		consts.QJobStage,
		consts.QJobProgress,
		consts.QJobQuery,
		consts.QJobSource,
		consts.QJobQuality,
		consts.QJobArtistName,
		consts.QJobAlbumTitle,
		consts.QJobTrackID,
		consts.QJobAssetID,
		consts.QJobPrechecked,
		consts.QJobError,
		consts.QJobStartedAt,
		consts.QJobFinishedAt,
		consts.QJobCreatedAt,
		consts.QJobUpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.DownloadJob, error) {
	var (
		j          models.DownloadJob
		stage      sql.NullString
		progress   sql.NullFloat64
		query      sql.NullString
		source     sql.NullString
		quality    sql.NullString
		artist     sql.NullString
		album      sql.NullString
		trackID    sql.NullInt64
		assetID    sql.NullInt64
		errMsg     sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)

	if err := row.Scan(
		&j.ID,
		&j.Kind,
		&j.Status,
		&stage,
		&progress,
		&query,
		&source,
		&quality,
		&artist,
		&album,
		&trackID,
		&assetID,
		&j.Prechecked,
		&errMsg,
		&startedAt,
		&finishedAt,
		&j.CreatedAt,
		&j.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if stage.Valid {
		j.Stage = &stage.String
	}
	if progress.Valid {
		j.ProgressPct = &progress.Float64
	}
	j.Query = query.String
	j.Source = source.String
	j.Quality = quality.String
	j.ArtistName = artist.String
	j.AlbumTitle = album.String
	j.TrackID = trackID.Int64
	j.AssetID = assetID.Int64
	j.Error = errMsg.String
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		j.FinishedAt = &finishedAt.Time
	}
	return &j, nil
}
