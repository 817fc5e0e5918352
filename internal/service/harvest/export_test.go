package harvest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/repository"
	"github.com/Taichi-iskw/yt-harvest/internal/youtube"
)

func readDataset(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(datasetSheet)
	require.NoError(t, err)
	return rows
}

func TestWriteDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	rows := []*model.ExportRow{{
		VideoID:              "abc123",
		VideoLink:            "https://www.youtube.com/watch?v=abc123",
		PublishedAt:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		ChannelID:            testChannelID,
		ChannelTitle:         "Test Channel",
		Title:                "Title",
		Description:          "Description",
		DurationSeconds:      90,
		Likes:                5,
		Views:                100,
		Comments:             2,
		CategoryID:           "10",
		Tags:                 NoTags,
		DefaultAudioLanguage: NoData,
	}}

	require.NoError(t, WriteDataset(path, rows))

	got := readDataset(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, model.ExportColumns, got[0])
	assert.Equal(t, "abc123", got[1][0])
	assert.Equal(t, "90", got[1][7])
	assert.Equal(t, "5", got[1][8])
	assert.Equal(t, "100", got[1][9])
	assert.Equal(t, "2", got[1][10])
	assert.Equal(t, NoTags, got[1][12])
	assert.Equal(t, NoData, got[1][13])
	assert.Equal(t, "2024-01-02 03:04:05", got[1][2])
}

func TestHarvestService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("rows are ordered by video ID and incomplete records dropped", func(t *testing.T) {
		svc, _, layout := newTestService(t)
		records := repository.NewFileVideoRecordRepository(layout.VideoDir(testAlias))
		require.NoError(t, records.Put(ctx, "b", recordDocument(t, reference("b", "2024-01-02T00:00:00Z"), videoResponse("b"))))
		require.NoError(t, records.Put(ctx, "a", recordDocument(t, reference("a", "2024-01-01T00:00:00Z"), videoResponse("a"))))
		require.NoError(t, records.Put(ctx, "c", recordDocument(t, reference("c", ""), videoResponse("c"))))

		result, err := svc.Export(ctx, testAlias)

		require.NoError(t, err)
		assert.Equal(t, layout.DatasetPath(testAlias), result.Path)
		assert.Equal(t, 1, result.Dropped)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, "a", result.Rows[0].VideoID)
		assert.Equal(t, "b", result.Rows[1].VideoID)

		got := readDataset(t, result.Path)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[1][0])
		assert.Equal(t, "b", got[2][0])
	})

	t.Run("no cached records exports only the header", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		result, err := svc.Export(ctx, testAlias)

		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.Equal(t, [][]string{model.ExportColumns}, readDataset(t, result.Path))
	})
}

func TestHarvestService_Run(t *testing.T) {
	ctx := context.Background()
	target := Target{ChannelID: testChannelID, Alias: testAlias}
	pageSize := int64(youtube.MaxPageSize)

	t.Run("three videos with one missing publish timestamp", func(t *testing.T) {
		svc, api, layout := newTestService(t)
		api.On("Channel", mock.Anything, testChannelID).Return(channelResponse(testChannelID, testUploadsID), nil)
		api.On("PlaylistItems", mock.Anything, testUploadsID, "", pageSize).Return(&ytapi.PlaylistItemListResponse{
			Items: []*ytapi.PlaylistItem{
				reference("v1", "2024-01-01T00:00:00Z"),
				reference("v2", ""),
				reference("v3", "2024-01-03T00:00:00Z"),
			},
		}, nil)
		for _, id := range []string{"v1", "v2", "v3"} {
			api.On("Video", mock.Anything, id).Return(videoResponse(id), nil)
		}

		result, err := svc.Run(ctx, target)

		require.NoError(t, err)
		assert.Equal(t, testUploadsID, result.Channel.UploadsPlaylistID)
		assert.Equal(t, 3, result.References)
		assert.Equal(t, 3, result.Fetch.Fetched)
		assert.Len(t, result.Export.Rows, 2)
		assert.Equal(t, 1, result.Export.Dropped)
		assert.FileExists(t, layout.ChannelInfoPath(testAlias))
		assert.FileExists(t, layout.UploadsPath(testAlias))
		assert.Len(t, readDataset(t, layout.DatasetPath(testAlias)), 3)
	})

	t.Run("re-run is served from the cache", func(t *testing.T) {
		svc, api, layout := newTestService(t)
		api.On("Channel", mock.Anything, testChannelID).Return(channelResponse(testChannelID, testUploadsID), nil)
		api.On("PlaylistItems", mock.Anything, testUploadsID, "", pageSize).Return(&ytapi.PlaylistItemListResponse{
			Items: []*ytapi.PlaylistItem{
				reference("v1", "2024-01-01T00:00:00Z"),
				reference("v2", "2024-01-02T00:00:00Z"),
			},
		}, nil)
		api.On("Video", mock.Anything, "v1").Return(videoResponse("v1"), nil)
		api.On("Video", mock.Anything, "v2").Return(videoResponse("v2"), nil)

		_, err := svc.Run(ctx, target)
		require.NoError(t, err)
		first := readDataset(t, layout.DatasetPath(testAlias))

		result, err := svc.Run(ctx, target)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Fetch.Fetched)
		assert.Equal(t, 2, result.Fetch.Skipped)
		api.AssertNumberOfCalls(t, "Video", 2)
		assert.Equal(t, first, readDataset(t, layout.DatasetPath(testAlias)))
	})

	t.Run("empty uploads collection", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		api.On("Channel", mock.Anything, testChannelID).Return(channelResponse(testChannelID, testUploadsID), nil)
		api.On("PlaylistItems", mock.Anything, testUploadsID, "", pageSize).Return(&ytapi.PlaylistItemListResponse{}, nil)

		result, err := svc.Run(ctx, target)

		require.NoError(t, err)
		assert.Equal(t, 0, result.References)
		assert.Empty(t, result.Export.Rows)
		api.AssertNotCalled(t, "Video", mock.Anything, mock.Anything)
	})

	t.Run("stops at the first failing stage", func(t *testing.T) {
		svc, api, layout := newTestService(t)
		api.On("Channel", mock.Anything, testChannelID).Return(&ytapi.ChannelListResponse{}, nil)

		_, err := svc.Run(ctx, target)

		require.Error(t, err)
		api.AssertNotCalled(t, "PlaylistItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoFileExists(t, layout.DatasetPath(testAlias))
	})
}
