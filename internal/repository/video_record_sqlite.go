package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
)

// sqliteVideoRecordRepository stores records in an embedded SQLite database
type sqliteVideoRecordRepository struct {
	db    *sql.DB
	alias string
}

// NewSQLiteVideoRecordRepository creates a repository for alias on an opened database
func NewSQLiteVideoRecordRepository(db *sql.DB, alias string) VideoRecordRepository {
	return &sqliteVideoRecordRepository{db: db, alias: alias}
}

// OpenSQLite opens (or creates) the database file and ensures the schema exists
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS video_records (
		alias      TEXT NOT NULL,
		video_id   TEXT NOT NULL,
		document   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (alias, video_id)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return db, nil
}

// Get retrieves the document for videoID
func (r *sqliteVideoRecordRepository) Get(ctx context.Context, videoID string) ([]byte, error) {
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	var document string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM video_records WHERE alias = ? AND video_id = ?",
		r.alias, videoID,
	).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(videoID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get video record")
	}
	return []byte(document), nil
}

// Put inserts the document unless a record already exists
func (r *sqliteVideoRecordRepository) Put(ctx context.Context, videoID string, document []byte) error {
	if err := validateVideoID(videoID); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO video_records (alias, video_id, document, created_at) VALUES (?, ?, ?, ?)",
		r.alias, videoID, string(document), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to put video record")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to put video record")
	}
	if n == 0 {
		return conflict(videoID)
	}
	return nil
}

// Exists checks whether a record is stored for videoID
func (r *sqliteVideoRecordRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	if err := validateVideoID(videoID); err != nil {
		return false, err
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM video_records WHERE alias = ? AND video_id = ?)",
		r.alias, videoID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check video record")
	}
	return exists, nil
}

// List returns every video ID stored for the alias
func (r *sqliteVideoRecordRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT video_id FROM video_records WHERE alias = ? ORDER BY video_id",
		r.alias,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list video records")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan video ID")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate video records")
	}
	return ids, nil
}

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an opened database
func NewSQLiteBackend(db *sql.DB) Backend {
	return &sqliteBackend{db: db}
}

func (b *sqliteBackend) Records(alias string) VideoRecordRepository {
	return NewSQLiteVideoRecordRepository(b.db, alias)
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
