package database

import (
	"database/sql"
	"fmt"
)

// initJobsTable initializes the download jobs table.
func initJobsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS jobs (
        id TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        status TEXT NOT NULL CHECK(status IN ('queued', 'checking', 'downloading', 'completed', 'failed', 'cancelled')),
        stage TEXT,
        progress_pct REAL,
        query TEXT,
        source TEXT,
        quality TEXT,
        artist_name TEXT,
        album_title TEXT,
        track_id INTEGER,
        asset_id INTEGER,
        prechecked INTEGER DEFAULT 0,
        error_message TEXT,
        started_at TIMESTAMP,
        finished_at TIMESTAMP,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
    CREATE INDEX IF NOT EXISTS idx_jobs_track ON jobs(track_id);
    CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}
	return nil
}

// initAssetsTable initializes the media assets table.
func initAssetsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS media_assets (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        track_id INTEGER NOT NULL,
        status TEXT NOT NULL CHECK(status IN ('pending', 'completed', 'deleted')),
        file_path TEXT,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_assets_track ON media_assets(track_id);
    CREATE INDEX IF NOT EXISTS idx_assets_status ON media_assets(status);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create media_assets table: %w", err)
	}
	return nil
}

// initSettingsTable initializes the key/value settings table.
func initSettingsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS settings (
        key TEXT PRIMARY KEY,
        value TEXT,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// initActivityTable initializes the append-only activity log.
func initActivityTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS activity_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        type TEXT NOT NULL,
        message TEXT,
        metadata JSON,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_activity_type ON activity_log(type);
    CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create activity_log table: %w", err)
	}
	return nil
}
