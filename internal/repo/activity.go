package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"

	"github.com/Masterminds/squirrel"
)

// ActivityStore holds a pointer to the sql.DB.
type ActivityStore struct {
	DB *sql.DB
}

// GetActivityStore returns an activity store instance with injected database.
func GetActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{DB: db}
}

// Append adds one event to the activity log.
func (as *ActivityStore) Append(ctx context.Context, eventType, message string, metadata map[string]any) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata to JSON: %w", err)
	}

	query := squirrel.
		Insert(consts.DBActivity).
		Columns(
			consts.QActivityType,
			consts.QActivityMessage,
			consts.QActivityMetadata,
			consts.QActivityCreatedAt,
		).
		Values(eventType, message, metadataJSON, time.Now()).
		RunWith(as.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to append activity event %q: %w", eventType, err)
	}
	return nil
}

// Recent lists the newest activity events, newest first.
func (as *ActivityStore) Recent(ctx context.Context, limit int) ([]*models.ActivityEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := squirrel.
		Select(
			consts.QActivityID,
			consts.QActivityType,
			consts.QActivityMessage,
			consts.QActivityMetadata,
			consts.QActivityCreatedAt,
		).
		From(consts.DBActivity).
		OrderBy(consts.QActivityID + " DESC").
		Limit(uint64(limit)).
		RunWith(as.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E("Failed to close activity rows: %v", err)
		}
	}()

	var events []*models.ActivityEvent
	for rows.Next() {
		var (
			e            models.ActivityEvent
			message      sql.NullString
			metadataJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.Type, &message, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		e.Message = message.String
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				logging.D(2, "Unparseable activity metadata for event %d: %v", e.ID, err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
