package container

import (
	"fmt"
	"net/http"

	"cloth-auth-go/internal/config"
	"cloth-auth-go/internal/extractor"
	"cloth-auth-go/internal/factory"
	"cloth-auth-go/internal/hashing"
	"cloth-auth-go/internal/logger"
	"cloth-auth-go/internal/observer"
	"cloth-auth-go/internal/registry"
	"cloth-auth-go/internal/storage"
	"cloth-auth-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	recordStore      storage.RecordStore
	imageSource      storage.ImageSource
	featureExtractor extractor.FeatureExtractor
	hasher           *hashing.Generator
	metrics          *observer.MetricsObserver
	items            registry.ItemRegistry
	handler          http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// The hash generator is validated first: an unavailable algorithm is
	// fatal at startup, not per-call.
	hasher, err := hashing.NewGenerator(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	recordStore, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	imageSource, err := factory.NewImageSourceFactory(cfg).CreateImageSource(factory.SourceType(cfg.ImageSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create image source: %w", err)
	}

	featureExtractor, err := extractor.NewFeatureExtractor(extractor.DefaultParams())
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	items := registry.NewItemRegistry(recordStore, imageSource, featureExtractor, hasher, events)
	handler := transport.NewHandler(items, cfg)

	return &Container{
		config:           cfg,
		recordStore:      recordStore,
		imageSource:      imageSource,
		featureExtractor: featureExtractor,
		hasher:           hasher,
		metrics:          metrics,
		items:            items,
		handler:          handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Items returns the item registry
func (c *Container) Items() registry.ItemRegistry {
	return c.items
}

// Metrics returns the metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close releases extractor resources
func (c *Container) Close() error {
	return c.featureExtractor.Close()
}
