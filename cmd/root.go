package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-harvest/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	outputDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytharvest",
	Short: "Harvest YouTube channel video metadata into spreadsheets",
	Long: `ytharvest collects metadata for every public upload of the configured YouTube
channels through the Data API v3, caches one record per video, and exports a
spreadsheet per channel.

Interrupted runs can be restarted; cached videos are never fetched again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads the configuration file and applies the global flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(config.Overrides{
		OutputDir: outputDir,
		LogLevel:  logLevel,
	})
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.yt-harvest/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory that receives the per-channel outputs")
}
