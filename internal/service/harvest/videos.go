package harvest

import (
	"context"
	"errors"
	"io/fs"

	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/repository"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
)

const progressEvery = 50

// FetchVideos fetches full details for every upload reference that has no cached
// record yet. Records written before a failure stay in the cache, so the next
// run resumes where this one stopped.
func (s *harvestService) FetchVideos(ctx context.Context, alias string) (*FetchStats, error) {
	var refs []*ytapi.PlaylistItem
	if err := storage.ReadJSON(s.layout.UploadsPath(alias), &refs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "upload references not found for alias "+alias+" (list uploads first)")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeCorrupt, "failed to read upload references")
	}

	records := s.backend.Records(alias)
	stats := &FetchStats{Total: len(refs)}

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		videoID := model.ReferenceVideoID(ref)
		if videoID == "" {
			s.logger.Warn().Str("alias", alias).Int("position", i).Msg("upload reference has no video ID, skipping")
			stats.Invalid++
			continue
		}

		exists, err := records.Exists(ctx, videoID)
		if err != nil {
			return stats, err
		}
		if exists {
			s.logger.Debug().Str("video_id", videoID).Msg("video already cached")
			stats.Skipped++
			continue
		}

		if err := s.fetchVideo(ctx, records, ref, videoID); err != nil {
			if apperrors.HasCode(err, apperrors.CodeConflict) {
				stats.Skipped++
				continue
			}
			s.logger.Error().Err(err).Str("video_id", videoID).Msg("video fetch failed")
			return stats, err
		}
		stats.Fetched++

		if done := i + 1; done%progressEvery == 0 {
			s.logger.Info().Str("alias", alias).Int("done", done).Int("total", stats.Total).Msg("fetching videos")
		}
	}

	s.logger.Info().
		Str("alias", alias).
		Int("fetched", stats.Fetched).
		Int("cached", stats.Skipped).
		Int("invalid", stats.Invalid).
		Msg("video fetch complete")

	return stats, nil
}

// fetchVideo retrieves one video, retrying transient failures, and stores the combined record
func (s *harvestService) fetchVideo(ctx context.Context, records repository.VideoRecordRepository, ref *ytapi.PlaylistItem, videoID string) error {
	info, err := retry.Do(ctx, s.retryConfig(videoID), func(ctx context.Context) (*ytapi.VideoListResponse, error) {
		return s.api.Video(ctx, videoID)
	})
	if err != nil {
		return wrapAPIError(err, "failed to fetch video "+videoID)
	}

	document, err := storage.MarshalDocument(&model.VideoRecord{Basic: ref, Info: info})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode video record")
	}

	return records.Put(ctx, videoID, document)
}
