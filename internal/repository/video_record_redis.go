package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
)

const redisKeyPrefix = "ytharvest"

// redisVideoRecordRepository stores each record under ytharvest:<alias>:video:<id>
type redisVideoRecordRepository struct {
	rdb   redis.UniversalClient
	alias string
}

// NewRedisVideoRecordRepository creates a repository for alias on the given client
func NewRedisVideoRecordRepository(rdb redis.UniversalClient, alias string) VideoRecordRepository {
	return &redisVideoRecordRepository{rdb: rdb, alias: alias}
}

// OpenRedis connects to redisURL and verifies the connection
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}
	return rdb, nil
}

func redisRecordKey(alias, videoID string) string {
	return redisKeyPrefix + ":" + alias + ":video:" + videoID
}

// redisRecordPattern matches every record key of alias; glob metacharacters in the alias are escaped
func redisRecordPattern(alias string) string {
	var b strings.Builder
	for _, r := range alias {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return redisKeyPrefix + ":" + b.String() + ":video:*"
}

// Get retrieves the document for videoID
func (r *redisVideoRecordRepository) Get(ctx context.Context, videoID string) ([]byte, error) {
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	data, err := r.rdb.Get(ctx, redisRecordKey(r.alias, videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(videoID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get video record")
	}
	return data, nil
}

// Put stores the document with SETNX so an existing record is never replaced
func (r *redisVideoRecordRepository) Put(ctx context.Context, videoID string, document []byte) error {
	if err := validateVideoID(videoID); err != nil {
		return err
	}

	ok, err := r.rdb.SetNX(ctx, redisRecordKey(r.alias, videoID), document, 0).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to put video record")
	}
	if !ok {
		return conflict(videoID)
	}
	return nil
}

// Exists checks whether a record key is present
func (r *redisVideoRecordRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	if err := validateVideoID(videoID); err != nil {
		return false, err
	}

	n, err := r.rdb.Exists(ctx, redisRecordKey(r.alias, videoID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check video record")
	}
	return n > 0, nil
}

// List scans the alias keyspace and returns the sorted video IDs
func (r *redisVideoRecordRepository) List(ctx context.Context) ([]string, error) {
	prefix := redisRecordKey(r.alias, "")
	ids := []string{}

	iter := r.rdb.Scan(ctx, 0, redisRecordPattern(r.alias), 500).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list video records")
	}

	// SCAN may return a key more than once
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

type redisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend wraps a connected client
func NewRedisBackend(rdb *redis.Client) Backend {
	return &redisBackend{rdb: rdb}
}

func (b *redisBackend) Records(alias string) VideoRecordRepository {
	return NewRedisVideoRecordRepository(b.rdb, alias)
}

func (b *redisBackend) Close() error {
	return b.rdb.Close()
}
