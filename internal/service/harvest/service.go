package harvest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/repository"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
	"github.com/Taichi-iskw/yt-harvest/internal/youtube"
)

// HarvestService runs the four harvest stages for one channel alias at a time.
// Every stage reads its input from the files written by the previous one.
type HarvestService interface {
	ResolveChannel(ctx context.Context, target Target) (*model.Channel, error)
	ListUploads(ctx context.Context, alias string) ([]*ytapi.PlaylistItem, error)
	FetchVideos(ctx context.Context, alias string) (*FetchStats, error)
	Export(ctx context.Context, alias string) (*ExportResult, error)
	Run(ctx context.Context, target Target) (*Result, error)
}

// Target is one (channel ID, alias) pair to harvest
type Target struct {
	ChannelID string
	Alias     string
}

// FetchStats summarises a FetchVideos pass
type FetchStats struct {
	Total   int // references read from the uploads file
	Fetched int // records written during this pass
	Skipped int // references whose record was already cached
	Invalid int // references without a video ID
}

// ExportResult describes a written dataset
type ExportResult struct {
	Path    string
	Rows    []*model.ExportRow
	Dropped int // records left out because a required field was missing
}

// Result is the outcome of a full pipeline run
type Result struct {
	Channel    *model.Channel
	References int
	Fetch      *FetchStats
	Export     *ExportResult
	Elapsed    time.Duration
}

// Options configures a HarvestService
type Options struct {
	Layout storage.Layout
	Retry  retry.Config
	Logger zerolog.Logger
}

// harvestService implements HarvestService
type harvestService struct {
	api     youtube.API
	backend repository.Backend
	layout  storage.Layout
	retry   retry.Config
	logger  zerolog.Logger
}

// NewHarvestService creates a HarvestService on top of the given API client and cache backend
func NewHarvestService(api youtube.API, backend repository.Backend, opts Options) HarvestService {
	return &harvestService{
		api:     api,
		backend: backend,
		layout:  opts.Layout,
		retry:   opts.Retry,
		logger:  opts.Logger,
	}
}

// wrapAPIError classifies a failed API call: retries that ran out are TRANSIENT_ERROR,
// anything else EXTERNAL_ERROR
func wrapAPIError(err error, message string) error {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return apperrors.Wrap(err, apperrors.CodeTransient, message)
	}
	return apperrors.Wrap(err, apperrors.CodeExternal, message)
}

// retryConfig returns the configured policy with retries logged against subject
func (s *harvestService) retryConfig(subject string) retry.Config {
	cfg := s.retry
	cfg.OnRetry = func(err error, next time.Duration) {
		s.logger.Warn().Err(err).Str("subject", subject).Dur("backoff", next).Msg("transient API error, retrying")
	}
	return cfg
}
