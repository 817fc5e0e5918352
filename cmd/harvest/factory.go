package harvest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Taichi-iskw/yt-harvest/internal/config"
	"github.com/Taichi-iskw/yt-harvest/internal/logging"
	"github.com/Taichi-iskw/yt-harvest/internal/repository"
	"github.com/Taichi-iskw/yt-harvest/internal/retry"
	harvestSvc "github.com/Taichi-iskw/yt-harvest/internal/service/harvest"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
	"github.com/Taichi-iskw/yt-harvest/internal/youtube"
)

// Provider supplies the harvest service and the configured channel targets to the commands
type Provider interface {
	Service(ctx context.Context) (harvestSvc.HarvestService, func(), error)
	Targets() ([]harvestSvc.Target, error)
}

// ServiceFactory builds harvest services from the loaded configuration
type ServiceFactory struct {
	loadConfig func() (*config.Config, error)
	logOutput  io.Writer
}

// NewServiceFactory creates a new service factory; loadConfig is called on every use
func NewServiceFactory(loadConfig func() (*config.Config, error)) *ServiceFactory {
	return &ServiceFactory{
		loadConfig: loadConfig,
		logOutput:  os.Stderr,
	}
}

// Service creates a harvest service with all dependencies.
// The returned cleanup function releases the cache backend.
func (f *ServiceFactory) Service(ctx context.Context) (harvestSvc.HarvestService, func(), error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.LogLevel, f.logOutput)

	client, err := youtube.NewClient(ctx, cfg.APIKey, cfg.RequestsPerSecond)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	backend, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	service := harvestSvc.NewHarvestService(client, backend, harvestSvc.Options{
		Layout: storage.Layout{Root: cfg.OutputDir},
		Retry: retry.Config{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.Retry.InitialBackoff,
			MaxBackoff:     cfg.Retry.MaxBackoff,
		},
		Logger: logger,
	})

	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close cache backend")
		}
	}

	return service, cleanup, nil
}

// Targets returns the channels listed in the configuration file
func (f *ServiceFactory) Targets() ([]harvestSvc.Target, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}

	targets := make([]harvestSvc.Target, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		targets = append(targets, harvestSvc.Target{ChannelID: ch.ID, Alias: ch.Alias})
	}
	return targets, nil
}

func (f *ServiceFactory) config() (*config.Config, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
