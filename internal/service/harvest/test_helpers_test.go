package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/repository"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
)

const (
	testChannelID = "UC_test_channel"
	testUploadsID = "UU_test_channel"
	testAlias     = "TEST"
)

// mockAPI is a mock implementation of youtube.API for testing
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Channel(ctx context.Context, channelID string) (*ytapi.ChannelListResponse, error) {
	args := m.Called(ctx, channelID)
	resp, _ := args.Get(0).(*ytapi.ChannelListResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) PlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*ytapi.PlaylistItemListResponse, error) {
	args := m.Called(ctx, playlistID, pageToken, maxResults)
	resp, _ := args.Get(0).(*ytapi.PlaylistItemListResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) Video(ctx context.Context, videoID string) (*ytapi.VideoListResponse, error) {
	args := m.Called(ctx, videoID)
	resp, _ := args.Get(0).(*ytapi.VideoListResponse)
	return resp, args.Error(1)
}

// newTestService returns a service backed by the file cache in a temp directory
func newTestService(t *testing.T) (*harvestService, *mockAPI, storage.Layout) {
	t.Helper()

	layout := storage.Layout{Root: t.TempDir()}
	api := &mockAPI{}
	svc := NewHarvestService(api, repository.NewFileBackend(layout), Options{
		Layout: layout,
		Retry: retry.Config{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
		Logger: zerolog.Nop(),
	})
	return svc.(*harvestService), api, layout
}

func channelResponse(channelID, uploadsID string) *ytapi.ChannelListResponse {
	return &ytapi.ChannelListResponse{
		Items: []*ytapi.Channel{{
			Id:      channelID,
			Snippet: &ytapi.ChannelSnippet{Title: "Test Channel"},
			ContentDetails: &ytapi.ChannelContentDetails{
				RelatedPlaylists: &ytapi.ChannelContentDetailsRelatedPlaylists{Uploads: uploadsID},
			},
		}},
	}
}

func reference(videoID, publishedAt string) *ytapi.PlaylistItem {
	return &ytapi.PlaylistItem{
		Id: "item-" + videoID,
		ContentDetails: &ytapi.PlaylistItemContentDetails{
			VideoId:          videoID,
			VideoPublishedAt: publishedAt,
		},
	}
}

func videoResponse(videoID string, modify ...func(*ytapi.Video)) *ytapi.VideoListResponse {
	video := &ytapi.Video{
		Id: videoID,
		Snippet: &ytapi.VideoSnippet{
			ChannelId:            testChannelID,
			ChannelTitle:         "Test Channel",
			Title:                "Video " + videoID,
			Description:          "About " + videoID,
			CategoryId:           "10",
			Tags:                 []string{"music", "live"},
			DefaultAudioLanguage: "en",
		},
		ContentDetails: &ytapi.VideoContentDetails{Duration: "PT1M30S"},
		Statistics: &ytapi.VideoStatistics{
			LikeCount:    5,
			ViewCount:    100,
			CommentCount: 2,
		},
	}
	for _, fn := range modify {
		fn(video)
	}
	return &ytapi.VideoListResponse{Items: []*ytapi.Video{video}}
}

func recordDocument(t *testing.T, ref *ytapi.PlaylistItem, info *ytapi.VideoListResponse) []byte {
	t.Helper()
	document, err := storage.MarshalDocument(&model.VideoRecord{Basic: ref, Info: info})
	require.NoError(t, err)
	return document
}

func seedChannel(t *testing.T, layout storage.Layout, alias string) {
	t.Helper()
	require.NoError(t, storage.WriteJSON(layout.ChannelInfoPath(alias), channelResponse(testChannelID, testUploadsID)))
}

func seedUploads(t *testing.T, layout storage.Layout, alias string, refs ...*ytapi.PlaylistItem) {
	t.Helper()
	if refs == nil {
		refs = []*ytapi.PlaylistItem{}
	}
	require.NoError(t, storage.WriteJSON(layout.UploadsPath(alias), refs))
}
