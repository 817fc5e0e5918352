package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-harvest/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for ytharvest.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [API_KEY]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with the YouTube Data API key and an example channel.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var apiKey string
		if len(args) > 0 {
			apiKey = args[0]
		}

		if err := config.InitConfig(cfgFile, apiKey); err != nil {
			return err
		}

		configPath := cfgFile
		if configPath == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			configPath = p
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", configPath)
		if apiKey == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Please set api_key in this file or export YOUTUBE_API_KEY.")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Edit the channels list to choose what to harvest.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration with the API key masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "API key:       %s\n", cfg.MaskedAPIKey())
		fmt.Fprintf(out, "Output dir:    %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "Log level:     %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "Requests/sec:  %g\n", cfg.RequestsPerSecond)
		fmt.Fprintf(out, "Retry:         %d attempts, %s initial, %s max\n",
			cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoff, cfg.Retry.MaxBackoff)
		fmt.Fprintf(out, "Cache backend: %s\n", cfg.Cache.Backend)
		fmt.Fprintf(out, "Channels:      %d\n", len(cfg.Channels))
		for _, ch := range cfg.Channels {
			fmt.Fprintf(out, "  %s  %s\n", ch.Alias, ch.ID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
