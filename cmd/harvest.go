package cmd

import (
	harvestcmd "github.com/Taichi-iskw/yt-harvest/cmd/harvest"
)

func init() {
	factory := harvestcmd.NewServiceFactory(loadConfig)

	rootCmd.AddCommand(harvestcmd.NewHarvestCommand(factory))
	rootCmd.AddCommand(harvestcmd.NewChannelCommand(factory))
	rootCmd.AddCommand(harvestcmd.NewUploadsCommand(factory))
	rootCmd.AddCommand(harvestcmd.NewVideosCommand(factory))
	rootCmd.AddCommand(harvestcmd.NewExportCommand(factory))
}
