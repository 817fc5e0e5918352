package harvest

import (
	"context"
	"errors"
	"io/fs"

	ytapi "google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/yt-harvest/internal/config"
	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
)

// ResolveChannel looks up the channel and persists the raw response as <alias>-info.json.
// The document is written even when the channel does not exist, so the
// response can be inspected; the caller still gets a NOT_FOUND error.
func (s *harvestService) ResolveChannel(ctx context.Context, target Target) (*model.Channel, error) {
	if target.ChannelID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "channel ID is required")
	}
	if err := config.ValidateAlias(target.Alias); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid alias")
	}

	resp, err := retry.Do(ctx, s.retryConfig(target.ChannelID), func(ctx context.Context) (*ytapi.ChannelListResponse, error) {
		return s.api.Channel(ctx, target.ChannelID)
	})
	if err != nil {
		return nil, wrapAPIError(err, "failed to fetch channel info")
	}

	path := s.layout.ChannelInfoPath(target.Alias)
	if err := storage.WriteJSON(path, resp); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save channel info")
	}

	channel, err := channelFromResponse(resp, target.Alias)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alias", channel.Alias).
		Str("channel_id", channel.ID).
		Str("title", channel.Title).
		Str("uploads", channel.UploadsPlaylistID).
		Msg("channel resolved")

	return channel, nil
}

// loadChannel reads the channel document written by ResolveChannel back from disk
func (s *harvestService) loadChannel(alias string) (*model.Channel, error) {
	var resp ytapi.ChannelListResponse
	if err := storage.ReadJSON(s.layout.ChannelInfoPath(alias), &resp); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel info not found for alias "+alias+" (resolve the channel first)")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeCorrupt, "failed to read channel info")
	}
	return channelFromResponse(&resp, alias)
}

// channelFromResponse extracts the channel and its uploads collection from a channels.list response
func channelFromResponse(resp *ytapi.ChannelListResponse, alias string) (*model.Channel, error) {
	if resp == nil || len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel not found for alias "+alias)
	}

	item := resp.Items[0]
	channel := &model.Channel{
		ID:    item.Id,
		Alias: alias,
	}
	if item.Snippet != nil {
		channel.Title = item.Snippet.Title
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		channel.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}

	if channel.UploadsPlaylistID == "" {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel "+channel.ID+" has no uploads collection")
	}

	return channel, nil
}
