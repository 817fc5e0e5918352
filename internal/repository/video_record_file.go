package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
)

const recordExt = ".json"

// fileVideoRecordRepository keeps each record as <dir>/<video_id>.json
type fileVideoRecordRepository struct {
	dir string
}

// NewFileVideoRecordRepository creates a repository rooted at dir
func NewFileVideoRecordRepository(dir string) VideoRecordRepository {
	return &fileVideoRecordRepository{dir: dir}
}

func (r *fileVideoRecordRepository) path(videoID string) string {
	return filepath.Join(r.dir, videoID+recordExt)
}

// Get reads the record file for videoID
func (r *fileVideoRecordRepository) Get(ctx context.Context, videoID string) ([]byte, error) {
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path(videoID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(videoID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to read video record")
	}
	return data, nil
}

// Put creates the record file; it never replaces an existing one
func (r *fileVideoRecordRepository) Put(ctx context.Context, videoID string, document []byte) error {
	if err := validateVideoID(videoID); err != nil {
		return err
	}

	if err := storage.CreateFileAtomic(r.path(videoID), document); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return conflict(videoID)
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write video record")
	}
	return nil
}

// Exists checks for the record file
func (r *fileVideoRecordRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	if err := validateVideoID(videoID); err != nil {
		return false, err
	}

	_, err := os.Stat(r.path(videoID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat video record")
	}
}

// List returns the IDs of every *.json file in the directory.
// A directory that does not exist yet holds no records.
func (r *fileVideoRecordRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list video records")
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// fileBackend maps each alias to its directory under the output root
type fileBackend struct {
	layout storage.Layout
}

// NewFileBackend creates a Backend storing records under layout.VideoDir(alias)
func NewFileBackend(layout storage.Layout) Backend {
	return &fileBackend{layout: layout}
}

func (b *fileBackend) Records(alias string) VideoRecordRepository {
	return NewFileVideoRecordRepository(b.layout.VideoDir(alias))
}

func (b *fileBackend) Close() error { return nil }
