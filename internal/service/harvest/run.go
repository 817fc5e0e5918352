package harvest

import (
	"context"
	"time"
)

// Run executes resolve, list, fetch and export for one target in order,
// stopping at the first stage that fails.
func (s *harvestService) Run(ctx context.Context, target Target) (*Result, error) {
	start := time.Now()
	logger := s.logger.With().Str("alias", target.Alias).Logger()
	logger.Info().Str("channel_id", target.ChannelID).Msg("harvest started")

	channel, err := s.ResolveChannel(ctx, target)
	if err != nil {
		return nil, err
	}

	refs, err := s.ListUploads(ctx, target.Alias)
	if err != nil {
		return nil, err
	}

	stats, err := s.FetchVideos(ctx, target.Alias)
	if err != nil {
		return nil, err
	}

	export, err := s.Export(ctx, target.Alias)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Channel:    channel,
		References: len(refs),
		Fetch:      stats,
		Export:     export,
		Elapsed:    time.Since(start),
	}
	logger.Info().Dur("elapsed", result.Elapsed).Int("rows", len(export.Rows)).Msg("harvest finished")
	return result, nil
}
