package factory

import (
	"fmt"

	"cloth-auth-go/internal/config"
	"cloth-auth-go/internal/storage"
)

// SourceType represents the available image source backends
type SourceType string

const (
	// LocalSource reads images from the local filesystem
	LocalSource SourceType = "local"
	// HTTPSource fetches images over HTTP
	HTTPSource SourceType = "http"
	// AzureSource fetches images from Azure blob storage
	AzureSource SourceType = "azure"
)

// ImageSourceFactory creates image source implementations
type ImageSourceFactory interface {
	CreateImageSource(sourceType SourceType) (storage.ImageSource, error)
}

type imageSourceFactory struct {
	cfg *config.Config
}

// NewImageSourceFactory creates a factory bound to the service configuration
func NewImageSourceFactory(cfg *config.Config) ImageSourceFactory {
	return &imageSourceFactory{cfg: cfg}
}

// CreateImageSource creates the image source for the given backend type
func (f *imageSourceFactory) CreateImageSource(sourceType SourceType) (storage.ImageSource, error) {
	switch sourceType {
	case LocalSource:
		return storage.NewLocalImageSource(), nil
	case HTTPSource:
		return storage.NewHTTPImageSource(f.cfg.ImageFetchTimeout), nil
	case AzureSource:
		return storage.NewAzureImageSource(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	default:
		return nil, fmt.Errorf("unsupported image source type: %s", sourceType)
	}
}
