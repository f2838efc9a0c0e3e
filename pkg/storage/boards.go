package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slatecanvas/slate/pkg/board"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Board is a persisted board row. The viewport fields restore the last
// pan/zoom when the board is reopened.
type Board struct {
	ID           string
	Name         string
	ViewportX    float64
	ViewportY    float64
	ViewportZoom float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BoardRepo stores boards and their blocks.
type BoardRepo struct {
	db *DB
}

// NewBoardRepo returns a repository backed by db.
func NewBoardRepo(db *DB) *BoardRepo {
	return &BoardRepo{db: db}
}

// Create inserts a new board and returns it.
func (r *BoardRepo) Create(name string) (*Board, error) {
	now := time.Now().UTC()
	b := &Board{
		ID:           uuid.NewString(),
		Name:         name,
		ViewportZoom: 1.0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := r.db.conn.Exec(
		`INSERT INTO boards (id, name, viewport_x, viewport_y, viewport_zoom, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.ViewportX, b.ViewportY, b.ViewportZoom, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert board: %w", err)
	}
	return b, nil
}

// Get returns the board with the given id.
func (r *BoardRepo) Get(id string) (*Board, error) {
	row := r.db.conn.QueryRow(
		`SELECT id, name, viewport_x, viewport_y, viewport_zoom, created_at, updated_at FROM boards WHERE id = ?`, id)
	b := &Board{}
	err := row.Scan(&b.ID, &b.Name, &b.ViewportX, &b.ViewportY, &b.ViewportZoom, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan board: %w", err)
	}
	return b, nil
}

// List returns all boards, most recently updated first.
func (r *BoardRepo) List() ([]*Board, error) {
	rows, err := r.db.conn.Query(
		`SELECT id, name, viewport_x, viewport_y, viewport_zoom, created_at, updated_at FROM boards ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}
	defer rows.Close()

	var boards []*Board
	for rows.Next() {
		b := &Board{}
		if err := rows.Scan(&b.ID, &b.Name, &b.ViewportX, &b.ViewportY, &b.ViewportZoom, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// Rename updates a board's name.
func (r *BoardRepo) Rename(id, name string) error {
	res, err := r.db.conn.Exec(
		`UPDATE boards SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rename board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveViewport persists the board's current pan offset and zoom.
func (r *BoardRepo) SaveViewport(id string, x, y, zoom float64) error {
	_, err := r.db.conn.Exec(
		`UPDATE boards SET viewport_x = ?, viewport_y = ?, viewport_zoom = ?, updated_at = ? WHERE id = ?`,
		x, y, zoom, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("save viewport: %w", err)
	}
	return nil
}

// Delete removes a board and its blocks. Images are never cascade-deleted:
// a block removal must stay undoable, so image rows outlive their blocks.
func (r *BoardRepo) Delete(id string) error {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blocks WHERE board_id = ?`, id); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM boards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return tx.Commit()
}

// LoadBlocks returns the board's blocks in z-order.
func (r *BoardRepo) LoadBlocks(boardID string) ([]board.Block, error) {
	rows, err := r.db.conn.Query(
		`SELECT id, type, x, y, width, height, content, image_ref, aspect_ratio
		 FROM blocks WHERE board_id = ? ORDER BY sort_order`, boardID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []board.Block
	for rows.Next() {
		var b board.Block
		var typ string
		if err := rows.Scan(&b.ID, &typ, &b.X, &b.Y, &b.Width, &b.Height, &b.Content, &b.ImageRef, &b.AspectRatio); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Type = board.BlockType(typ)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// ReplaceBlocks atomically replaces the board's block set with the given
// snapshot. The autosaver calls this with the in-memory store contents.
func (r *BoardRepo) ReplaceBlocks(boardID string, blocks []board.Block) error {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blocks WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO blocks (id, board_id, type, x, y, width, height, content, image_ref, aspect_ratio, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range blocks {
		if _, err := stmt.Exec(b.ID, boardID, string(b.Type), b.X, b.Y, b.Width, b.Height, b.Content, b.ImageRef, b.AspectRatio, i); err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}
	if _, err := tx.Exec(`UPDATE boards SET updated_at = ? WHERE id = ?`, time.Now().UTC(), boardID); err != nil {
		return fmt.Errorf("touch board: %w", err)
	}
	return tx.Commit()
}
