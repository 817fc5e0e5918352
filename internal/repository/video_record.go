package repository

import (
	"context"
	"strings"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
)

// VideoRecordRepository stores one JSON document per video ID for a single channel alias.
// It is the harvest's cache: a record is written once and never refreshed.
type VideoRecordRepository interface {
	// Get returns the stored document, or a NOT_FOUND error
	Get(ctx context.Context, videoID string) ([]byte, error)

	// Put stores a new document; an existing record is kept and CONFLICT is returned
	Put(ctx context.Context, videoID string, document []byte) error

	// Exists reports whether a record is stored for videoID
	Exists(ctx context.Context, videoID string) (bool, error)

	// List returns every stored video ID in ascending order
	List(ctx context.Context) ([]string, error)
}

// Backend hands out alias-scoped repositories that share one underlying connection
type Backend interface {
	Records(alias string) VideoRecordRepository
	Close() error
}

// validateVideoID rejects IDs that cannot double as a file name
func validateVideoID(videoID string) error {
	if videoID == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "video ID is required")
	}
	if videoID == "." || videoID == ".." || strings.ContainsAny(videoID, `/\`) {
		return apperrors.New(apperrors.CodeInvalidArg, "invalid video ID: "+videoID)
	}
	return nil
}

func notFound(videoID string) error {
	return apperrors.New(apperrors.CodeNotFound, "video record not found: "+videoID)
}

func conflict(videoID string) error {
	return apperrors.New(apperrors.CodeConflict, "video record already exists: "+videoID)
}
