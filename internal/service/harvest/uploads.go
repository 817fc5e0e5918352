package harvest

import (
	"context"

	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
	"github.com/Taichi-iskw/yt-harvest/internal/youtube"
)

// ListUploads pages through the channel's uploads collection and writes every
// reference, in collection order, to <alias>-playlistItems.json.
// The file is written once after the last page; an interrupted listing leaves no file behind.
func (s *harvestService) ListUploads(ctx context.Context, alias string) ([]*ytapi.PlaylistItem, error) {
	channel, err := s.loadChannel(alias)
	if err != nil {
		return nil, err
	}

	items := []*ytapi.PlaylistItem{}
	pageToken := ""
	for {
		page, err := retry.Do(ctx, s.retryConfig(channel.UploadsPlaylistID), func(ctx context.Context) (*ytapi.PlaylistItemListResponse, error) {
			return s.api.PlaylistItems(ctx, channel.UploadsPlaylistID, pageToken, youtube.MaxPageSize)
		})
		if err != nil {
			return nil, wrapAPIError(err, "failed to list uploads")
		}

		items = append(items, page.Items...)
		s.logger.Info().Str("alias", alias).Int("total", len(items)).Msg("uploads page fetched")

		if page.NextPageToken == "" {
			break
		}
		if page.NextPageToken == pageToken {
			return nil, apperrors.New(apperrors.CodeExternal, "uploads listing returned the same page token twice: "+pageToken)
		}
		pageToken = page.NextPageToken
	}

	if err := storage.WriteJSON(s.layout.UploadsPath(alias), items); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save upload references")
	}

	return items, nil
}
