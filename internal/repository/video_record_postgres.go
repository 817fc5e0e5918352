package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool used by the repository (pgxmock satisfies it in tests)
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresVideoRecordRepository implements VideoRecordRepository using PostgreSQL
type postgresVideoRecordRepository struct {
	pool  Pool
	alias string
}

// NewPostgresVideoRecordRepository creates a repository for alias on the given pool
func NewPostgresVideoRecordRepository(pool Pool, alias string) VideoRecordRepository {
	return &postgresVideoRecordRepository{
		pool:  pool,
		alias: alias,
	}
}

// Get retrieves the document for videoID
func (r *postgresVideoRecordRepository) Get(ctx context.Context, videoID string) ([]byte, error) {
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	sql := "SELECT document FROM video_records WHERE alias = $1 AND video_id = $2"
	row := r.pool.QueryRow(ctx, sql, r.alias, videoID)

	var document []byte
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(videoID)
		}
		return nil, handlePostgreSQLError(err, "failed to get video record")
	}
	return document, nil
}

// Put inserts the document, leaving an existing record untouched
func (r *postgresVideoRecordRepository) Put(ctx context.Context, videoID string, document []byte) error {
	if err := validateVideoID(videoID); err != nil {
		return err
	}

	sql := "INSERT INTO video_records (alias, video_id, document) VALUES ($1, $2, $3) ON CONFLICT (alias, video_id) DO NOTHING"
	tag, err := r.pool.Exec(ctx, sql, r.alias, videoID, document)
	if err != nil {
		return handlePostgreSQLError(err, "failed to put video record")
	}
	if tag.RowsAffected() == 0 {
		return conflict(videoID)
	}
	return nil
}

// Exists checks whether a record is stored for videoID
func (r *postgresVideoRecordRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	if err := validateVideoID(videoID); err != nil {
		return false, err
	}

	sql := "SELECT EXISTS(SELECT 1 FROM video_records WHERE alias = $1 AND video_id = $2)"
	var exists bool
	if err := r.pool.QueryRow(ctx, sql, r.alias, videoID).Scan(&exists); err != nil {
		return false, handlePostgreSQLError(err, "failed to check video record")
	}
	return exists, nil
}

// List returns every video ID stored for the alias
func (r *postgresVideoRecordRepository) List(ctx context.Context) ([]string, error) {
	sql := "SELECT video_id FROM video_records WHERE alias = $1 ORDER BY video_id"
	rows, err := r.pool.Query(ctx, sql, r.alias)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list video records")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan video ID")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate video records")
	}

	return ids, nil
}

type postgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend wraps a connected pool
func NewPostgresBackend(pool *pgxpool.Pool) Backend {
	return &postgresBackend{pool: pool}
}

func (b *postgresBackend) Records(alias string) VideoRecordRepository {
	return NewPostgresVideoRecordRepository(b.pool, alias)
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
