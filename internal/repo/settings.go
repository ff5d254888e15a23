package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grabarr/internal/domain/consts"

	"github.com/Masterminds/squirrel"
)

// SettingsStore holds a pointer to the sql.DB.
type SettingsStore struct {
	DB *sql.DB
}

// GetSettingsStore returns a settings store instance with injected database.
func GetSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{DB: db}
}

// Get returns the value for key, and whether the key exists.
func (ss *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := squirrel.
		Select(consts.QSettingValue).
		From(consts.DBSettings).
		Where(squirrel.Eq{consts.QSettingKey: key}).
		RunWith(ss.DB)

	var value string
	err := query.QueryRowContext(ctx).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value for key, inserting or replacing the single row.
func (ss *SettingsStore) Set(ctx context.Context, key, value string) error {
	query := squirrel.
		Insert(consts.DBSettings).
		Options("OR REPLACE").
		Columns(consts.QSettingKey, consts.QSettingValue, consts.QSettingUpdatedAt).
		Values(key, value, time.Now()).
		RunWith(ss.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}
