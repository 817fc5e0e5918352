package harvest

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	harvestSvc "github.com/Taichi-iskw/yt-harvest/internal/service/harvest"
)

// NewHarvestCommand creates the command that runs every stage for each target
func NewHarvestCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest video metadata for the configured channels",
		Long: `Resolve each channel, list its uploads, fetch details for every video not
cached yet and export the channel's dataset spreadsheet.

Channels come from the configuration file unless --channel and --alias name one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, _ := cmd.Flags().GetString("channel")
			alias, _ := cmd.Flags().GetString("alias")
			format, _ := cmd.Flags().GetString("format")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			formatter, err := NewFormatter(format)
			if err != nil {
				return err
			}

			targets, err := selectTargets(provider, channelID, alias)
			if err != nil {
				return err
			}

			if dryRun {
				for _, target := range targets {
					fmt.Fprintf(cmd.OutOrStdout(), "DRY RUN: Would harvest channel %s as %s\n", target.ChannelID, target.Alias)
				}
				return nil
			}

			service, cleanup, err := provider.Service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			for _, target := range targets {
				result, err := service.Run(cmd.Context(), target)
				if err != nil {
					return fmt.Errorf("failed to harvest %s: %w", target.Alias, err)
				}

				output, err := formatter.Format(result)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
			}
			return nil
		},
	}

	cmd.Flags().String("channel", "", "Channel ID to harvest instead of the configured channels")
	cmd.Flags().String("alias", "", "Alias for --channel, used to name the output files")
	cmd.Flags().String("format", "text", "Output format (text or json)")
	cmd.Flags().Bool("dry-run", false, "List the channels that would be harvested and exit")

	return cmd
}

// selectTargets returns the ad-hoc target from the flags, or the configured ones
func selectTargets(provider Provider, channelID, alias string) ([]harvestSvc.Target, error) {
	if channelID != "" || alias != "" {
		if channelID == "" || alias == "" {
			return nil, errors.New("--channel and --alias must be used together")
		}
		return []harvestSvc.Target{{ChannelID: channelID, Alias: alias}}, nil
	}

	targets, err := provider.Targets()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errors.New("no channels configured; add them to the config file or use --channel and --alias")
	}
	return targets, nil
}

// NewChannelCommand creates the channel command group
func NewChannelCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "YouTube channel operations",
	}
	cmd.AddCommand(NewResolveCommand(provider))
	return cmd
}

// NewResolveCommand creates the command that resolves a channel and saves its info document
func NewResolveCommand(provider Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [CHANNEL_ID] [ALIAS]",
		Short: "Resolve a channel and save its info document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := provider.Service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			channel, err := service.ResolveChannel(cmd.Context(), harvestSvc.Target{ChannelID: args[0], Alias: args[1]})
			if err != nil {
				return fmt.Errorf("failed to resolve channel: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s (%s), uploads collection %s\n", channel.Title, channel.ID, channel.UploadsPlaylistID)
			return nil
		},
	}
}

// NewUploadsCommand creates the uploads command group
func NewUploadsCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Uploads collection operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list [ALIAS]",
		Short: "List every upload of a resolved channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := provider.Service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := service.ListUploads(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list uploads: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Listed %d uploads for %s\n", len(items), args[0])
			return nil
		},
	})
	return cmd
}

// NewVideosCommand creates the videos command group
func NewVideosCommand(provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Video detail operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "fetch [ALIAS]",
		Short: "Fetch details for every listed upload not cached yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := provider.Service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := service.FetchVideos(cmd.Context(), args[0])
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d of %d videos (%d cached, %d invalid)\n", stats.Fetched, stats.Total, stats.Skipped, stats.Invalid)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch videos: %w", err)
			}
			return nil
		},
	})
	return cmd
}

// NewExportCommand creates the command that writes the dataset spreadsheet
func NewExportCommand(provider Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "export [ALIAS]",
		Short: "Export cached video records to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := provider.Service(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := service.Export(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to export dataset: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows (%d dropped) to %s\n", len(result.Rows), result.Dropped, result.Path)
			return nil
		},
	}
}
