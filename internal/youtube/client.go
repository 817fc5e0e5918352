// Package youtube wraps the YouTube Data API v3 calls used by the harvester.
package youtube

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// MaxPageSize is the largest page the playlistItems endpoint returns
const MaxPageSize = 50

var (
	channelParts      = []string{"snippet", "statistics", "contentDetails"}
	playlistItemParts = []string{"contentDetails"}
	videoParts        = []string{"snippet", "statistics", "contentDetails"}
)

// API is the subset of the YouTube Data API the harvester depends on.
// Responses are the raw API documents; errors from the service are *googleapi.Error.
type API interface {
	Channel(ctx context.Context, channelID string) (*ytapi.ChannelListResponse, error)
	PlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*ytapi.PlaylistItemListResponse, error)
	Video(ctx context.Context, videoID string) (*ytapi.VideoListResponse, error)
}

// Client implements API on top of the generated Data API service
type Client struct {
	svc     *ytapi.Service
	limiter *rate.Limiter
}

// NewClient creates a Client authenticated with apiKey.
// requestsPerSecond <= 0 disables client-side rate limiting.
// Extra options are appended after the API key (tests use them to redirect the endpoint).
func NewClient(ctx context.Context, apiKey string, requestsPerSecond float64, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" && len(opts) == 0 {
		return nil, fmt.Errorf("youtube api key is required")
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := ytapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Channel looks up a channel's snippet, statistics and content details
func (c *Client) Channel(ctx context.Context, channelID string) (*ytapi.ChannelListResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.svc.Channels.List(channelParts).Id(channelID).Context(ctx).Do()
}

// PlaylistItems fetches one page of a playlist. An empty pageToken requests the first page.
func (c *Client) PlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*ytapi.PlaylistItemListResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.PlaylistItems.List(playlistItemParts).
		PlaylistId(playlistID).
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// Video fetches the full details of a single video
func (c *Client) Video(ctx context.Context, videoID string) (*ytapi.VideoListResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.svc.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
}
