// Package repo contains the squirrel-backed stores over the shared database.
package repo

import (
	"database/sql"

	"grabarr/internal/contracts"
)

// Stores bundles every store backed by the shared database.
type Stores struct {
	db       *sql.DB
	jobs     *JobStore
	assets   *AssetStore
	settings *SettingsStore
	activity *ActivityStore
}

// InitStores returns the store bundle with the injected database.
func InitStores(db *sql.DB) *Stores {
	return &Stores{
		db:       db,
		jobs:     GetJobStore(db),
		assets:   GetAssetStore(db),
		settings: GetSettingsStore(db),
		activity: GetActivityStore(db),
	}
}

// JobStore returns the job store.
func (s *Stores) JobStore() contracts.JobStore { return s.jobs }

// AssetStore returns the media asset store.
func (s *Stores) AssetStore() contracts.AssetStore { return s.assets }

// SettingsStore returns the settings store.
func (s *Stores) SettingsStore() contracts.SettingsStore { return s.settings }

// ActivityStore returns the activity log store.
func (s *Stores) ActivityStore() contracts.ActivityStore { return s.activity }

// GetDB returns the database.
func (s *Stores) GetDB() *sql.DB { return s.db }
