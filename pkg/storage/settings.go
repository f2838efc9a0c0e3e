package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// SettingsRepo is a small key/value store for app settings.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo returns a repository backed by db.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the value for key, or fallback if the key is absent.
func (r *SettingsRepo) Get(key, fallback string) (string, error) {
	row := r.db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key)
	var v string
	err := row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("scan setting %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
