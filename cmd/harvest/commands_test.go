package harvest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/yt-harvest/internal/model"
	harvestSvc "github.com/Taichi-iskw/yt-harvest/internal/service/harvest"
)

// Mock harvest service
type mockHarvestService struct {
	ResolveChannelFunc func(ctx context.Context, target harvestSvc.Target) (*model.Channel, error)
	ListUploadsFunc    func(ctx context.Context, alias string) ([]*ytapi.PlaylistItem, error)
	FetchVideosFunc    func(ctx context.Context, alias string) (*harvestSvc.FetchStats, error)
	ExportFunc         func(ctx context.Context, alias string) (*harvestSvc.ExportResult, error)
	RunFunc            func(ctx context.Context, target harvestSvc.Target) (*harvestSvc.Result, error)
}

func (m *mockHarvestService) ResolveChannel(ctx context.Context, target harvestSvc.Target) (*model.Channel, error) {
	if m.ResolveChannelFunc != nil {
		return m.ResolveChannelFunc(ctx, target)
	}
	return nil, nil
}

func (m *mockHarvestService) ListUploads(ctx context.Context, alias string) ([]*ytapi.PlaylistItem, error) {
	if m.ListUploadsFunc != nil {
		return m.ListUploadsFunc(ctx, alias)
	}
	return nil, nil
}

func (m *mockHarvestService) FetchVideos(ctx context.Context, alias string) (*harvestSvc.FetchStats, error) {
	if m.FetchVideosFunc != nil {
		return m.FetchVideosFunc(ctx, alias)
	}
	return nil, nil
}

func (m *mockHarvestService) Export(ctx context.Context, alias string) (*harvestSvc.ExportResult, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, alias)
	}
	return nil, nil
}

func (m *mockHarvestService) Run(ctx context.Context, target harvestSvc.Target) (*harvestSvc.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, target)
	}
	return nil, nil
}

// Mock provider
type mockProvider struct {
	service    *mockHarvestService
	serviceErr error
	targets    []harvestSvc.Target
	cleanedUp  bool
}

func (p *mockProvider) Service(ctx context.Context) (harvestSvc.HarvestService, func(), error) {
	if p.serviceErr != nil {
		return nil, nil, p.serviceErr
	}
	return p.service, func() { p.cleanedUp = true }, nil
}

func (p *mockProvider) Targets() ([]harvestSvc.Target, error) {
	return p.targets, nil
}

func testResult(target harvestSvc.Target) *harvestSvc.Result {
	return &harvestSvc.Result{
		Channel:    &model.Channel{ID: target.ChannelID, Alias: target.Alias, Title: "NPR Music"},
		References: 3,
		Fetch:      &harvestSvc.FetchStats{Total: 3, Fetched: 2, Skipped: 1},
		Export: &harvestSvc.ExportResult{
			Path:    "outputs/" + target.Alias + "/" + target.Alias + "-dataset.xlsx",
			Rows:    make([]*model.ExportRow, 2),
			Dropped: 1,
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	if args == nil {
		args = []string{}
	}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHarvestCommand(t *testing.T) {
	configured := []harvestSvc.Target{
		{ChannelID: "UC1", Alias: "ONE"},
		{ChannelID: "UC2", Alias: "TWO"},
	}

	tests := []struct {
		name           string
		args           []string
		serviceErr     error
		runErr         error
		expectedRuns   []string
		expectedOutput []string
		wantErr        bool
	}{
		{
			name:           "harvests every configured channel",
			args:           []string{},
			expectedRuns:   []string{"ONE", "TWO"},
			expectedOutput: []string{"Channel: NPR Music (UC1) as ONE", "Channel: NPR Music (UC2) as TWO", "2 fetched, 1 cached", "(2 rows, 1 dropped)"},
		},
		{
			name:           "ad-hoc channel",
			args:           []string{"--channel", "UC9", "--alias", "NINE"},
			expectedRuns:   []string{"NINE"},
			expectedOutput: []string{"as NINE"},
		},
		{
			name:           "json output",
			args:           []string{"--channel", "UC9", "--alias", "NINE", "--format", "json"},
			expectedRuns:   []string{"NINE"},
			expectedOutput: []string{`"alias": "NINE"`, `"rows": 2`},
		},
		{
			name:           "dry run",
			args:           []string{"--dry-run"},
			expectedOutput: []string{"DRY RUN: Would harvest channel UC1 as ONE", "DRY RUN: Would harvest channel UC2 as TWO"},
		},
		{
			name:    "alias without channel",
			args:    []string{"--alias", "NINE"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			args:    []string{"--format", "xml"},
			wantErr: true,
		},
		{
			name:       "service creation fails",
			args:       []string{},
			serviceErr: errors.New("invalid configuration"),
			wantErr:    true,
		},
		{
			name:         "first failure aborts",
			args:         []string{},
			runErr:       errors.New("quota exceeded"),
			expectedRuns: []string{"ONE"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var runs []string
			service := &mockHarvestService{
				RunFunc: func(ctx context.Context, target harvestSvc.Target) (*harvestSvc.Result, error) {
					runs = append(runs, target.Alias)
					if tt.runErr != nil {
						return nil, tt.runErr
					}
					return testResult(target), nil
				},
			}
			provider := &mockProvider{service: service, serviceErr: tt.serviceErr, targets: configured}

			output, err := execute(t, NewHarvestCommand(provider), tt.args...)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedRuns, runs)
			for _, expected := range tt.expectedOutput {
				assert.Contains(t, output, expected)
			}
		})
	}
}

func TestHarvestCommand_NoTargets(t *testing.T) {
	provider := &mockProvider{service: &mockHarvestService{}}

	_, err := execute(t, NewHarvestCommand(provider))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no channels configured")
}

func TestStageCommands(t *testing.T) {
	service := &mockHarvestService{
		ResolveChannelFunc: func(ctx context.Context, target harvestSvc.Target) (*model.Channel, error) {
			return &model.Channel{ID: target.ChannelID, Alias: target.Alias, Title: "NPR Music", UploadsPlaylistID: "UU1"}, nil
		},
		ListUploadsFunc: func(ctx context.Context, alias string) ([]*ytapi.PlaylistItem, error) {
			return make([]*ytapi.PlaylistItem, 7), nil
		},
		FetchVideosFunc: func(ctx context.Context, alias string) (*harvestSvc.FetchStats, error) {
			return &harvestSvc.FetchStats{Total: 7, Fetched: 4, Skipped: 3}, nil
		},
		ExportFunc: func(ctx context.Context, alias string) (*harvestSvc.ExportResult, error) {
			return &harvestSvc.ExportResult{Path: "outputs/NPR/NPR-dataset.xlsx", Rows: make([]*model.ExportRow, 6), Dropped: 1}, nil
		},
	}

	tests := []struct {
		name           string
		newCommand     func(Provider) *cobra.Command
		args           []string
		expectedOutput string
		wantErr        bool
	}{
		{
			name:           "channel resolve",
			newCommand:     NewChannelCommand,
			args:           []string{"resolve", "UC1", "NPR"},
			expectedOutput: "Resolved NPR Music (UC1), uploads collection UU1",
		},
		{
			name:       "channel resolve needs alias",
			newCommand: NewChannelCommand,
			args:       []string{"resolve", "UC1"},
			wantErr:    true,
		},
		{
			name:           "uploads list",
			newCommand:     NewUploadsCommand,
			args:           []string{"list", "NPR"},
			expectedOutput: "Listed 7 uploads for NPR",
		},
		{
			name:           "videos fetch",
			newCommand:     NewVideosCommand,
			args:           []string{"fetch", "NPR"},
			expectedOutput: "Fetched 4 of 7 videos (3 cached, 0 invalid)",
		},
		{
			name:           "export",
			newCommand:     NewExportCommand,
			args:           []string{"NPR"},
			expectedOutput: "Exported 6 rows (1 dropped) to outputs/NPR/NPR-dataset.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{service: service}

			output, err := execute(t, tt.newCommand(provider), tt.args...)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output, tt.expectedOutput)
			assert.True(t, provider.cleanedUp)
		})
	}
}

func TestVideosFetchCommand_ReportsPartialProgress(t *testing.T) {
	service := &mockHarvestService{
		FetchVideosFunc: func(ctx context.Context, alias string) (*harvestSvc.FetchStats, error) {
			return &harvestSvc.FetchStats{Total: 10, Fetched: 2}, errors.New("quota exceeded")
		},
	}

	output, err := execute(t, NewVideosCommand(&mockProvider{service: service}), "fetch", "NPR")

	require.Error(t, err)
	assert.Contains(t, output, "Fetched 2 of 10 videos")
}
