package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-harvest/migrations"
)

// migrateCmd applies the postgres cache schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the postgres cache",
	Long:  `Create or upgrade the video_records table used by the postgres cache backend.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Cache.DatabaseURL == "" {
			return errors.New("cache.database_url is not set (or export DATABASE_URL)")
		}

		if err := migrations.Up(cfg.Cache.DatabaseURL); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
