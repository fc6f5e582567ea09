package extractor

import (
	"image"

	"cloth-auth-go/pkg/models"
)

// Degraded-signal categories reported when an analyzer fell back to an
// all-zero sub-descriptor instead of aborting the extraction.
const (
	DegradedTexture   = "fabric_texture"
	DegradedHistogram = "color_histogram"
	DegradedEdges     = "edge_features"
	DegradedPattern   = "pattern_features"
)

// FeatureExtractor defines the main interface for descriptor extraction
type FeatureExtractor interface {
	// Extract computes the full descriptor set of a decoded image
	Extract(img image.Image) (*models.ExtractionReport, error)

	// ExtractBytes decodes raw image bytes and extracts
	ExtractBytes(data []byte) (*models.ExtractionReport, error)

	// ExtractFile decodes the image at path and extracts
	ExtractFile(path string) (*models.ExtractionReport, error)

	// Params returns the pinned parameter set this extractor runs under
	Params() Params

	// Lifecycle management
	Close() error
}
