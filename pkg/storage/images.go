package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImageRepo stores image bytes referenced by image blocks.
type ImageRepo struct {
	db *DB
}

// NewImageRepo returns a repository backed by db.
func NewImageRepo(db *DB) *ImageRepo {
	return &ImageRepo{db: db}
}

// Put stores the image bytes and returns the new ref.
func (r *ImageRepo) Put(data []byte, aspectRatio float64) (string, error) {
	ref := uuid.NewString()
	_, err := r.db.conn.Exec(
		`INSERT INTO images (ref, data, aspect_ratio, created_at) VALUES (?, ?, ?, ?)`,
		ref, data, aspectRatio, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert image: %w", err)
	}
	return ref, nil
}

// Get returns the image bytes and aspect ratio for ref.
func (r *ImageRepo) Get(ref string) ([]byte, float64, error) {
	row := r.db.conn.QueryRow(`SELECT data, aspect_ratio FROM images WHERE ref = ?`, ref)
	var data []byte
	var aspect float64
	err := row.Scan(&data, &aspect)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("scan image: %w", err)
	}
	return data, aspect, nil
}

// Sweep removes image rows no block references. Callers run this at
// startup, never after a delete, so undo of a block removal still finds
// its image.
func (r *ImageRepo) Sweep() (int64, error) {
	res, err := r.db.conn.Exec(
		`DELETE FROM images WHERE ref NOT IN (SELECT image_ref FROM blocks WHERE image_ref != '')`)
	if err != nil {
		return 0, fmt.Errorf("sweep images: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
