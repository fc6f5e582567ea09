package extractor

import (
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cloth-auth-go/internal/canonical"
	"cloth-auth-go/internal/logger"
	"cloth-auth-go/pkg/models"
)

// featureExtractor implements FeatureExtractor and orchestrates the
// analyzers. The texture, edge, histogram and dimension analyzers have no
// data dependency on each other and run concurrently on the worker pool;
// the pattern scorer joins on the texture and dimension results.
type featureExtractor struct {
	params Params
	pool   *WorkerPool
}

// NewFeatureExtractor validates the parameter set and starts the analyzer
// worker pool.
func NewFeatureExtractor(params Params) (FeatureExtractor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	pool := NewWorkerPool(0) // Use default CPU count
	pool.Start()

	return &featureExtractor{
		params: params,
		pool:   pool,
	}, nil
}

// Params returns the pinned parameter set this extractor runs under.
func (fe *featureExtractor) Params() Params {
	return fe.params
}

// Close shuts down the worker pool.
func (fe *featureExtractor) Close() error {
	fe.pool.Close()
	return nil
}

// ExtractBytes decodes raw image bytes and extracts.
func (fe *featureExtractor) ExtractBytes(data []byte) (*models.ExtractionReport, error) {
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return fe.Extract(img)
}

// ExtractFile decodes the image at path and extracts.
func (fe *featureExtractor) ExtractFile(path string) (*models.ExtractionReport, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return fe.Extract(img)
}

// Extract computes the full descriptor set of a decoded image. Decode and
// geometry failures abort the extraction; an internal failure in the
// texture, edge or histogram analyzer degrades that category to an all-zero
// sub-descriptor and is reported in the degraded signals so callers know a
// later similarity score may be biased.
func (fe *featureExtractor) Extract(img image.Image) (*models.ExtractionReport, error) {
	pre, err := Preprocess(img, fe.params)
	if err != nil {
		return nil, err
	}

	dimensions, err := analyzeDimensions(pre.Width, pre.Height)
	if err != nil {
		return nil, err
	}

	var (
		texture      map[string]float64
		histogram    []float64
		edges        []float64
		textureErr   error
		histogramErr error
		edgesErr     error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	fe.pool.Submit(func() {
		defer wg.Done()
		texture, textureErr = analyzeTexture(pre.Smoothed, fe.params)
	})
	fe.pool.Submit(func() {
		defer wg.Done()
		histogram, histogramErr = analyzeHistogram(pre.Color, fe.params)
	})
	fe.pool.Submit(func() {
		defer wg.Done()
		edges, edgesErr = analyzeEdges(pre.Smoothed, fe.params)
	})
	wg.Wait()

	var degraded []string
	if textureErr != nil {
		logger.WithError(textureErr).Warn("texture analysis degraded to zero descriptor")
		texture = zeroTexture()
		degraded = append(degraded, DegradedTexture)
	}
	if histogramErr != nil {
		logger.WithError(histogramErr).Warn("histogram analysis degraded to zero descriptor")
		histogram = make([]float64, fe.params.HistogramBins*3)
		degraded = append(degraded, DegradedHistogram)
	}
	if edgesErr != nil {
		logger.WithError(edgesErr).Warn("edge analysis degraded to zero descriptor")
		edges = make([]float64, models.EdgeFeatureCount)
		degraded = append(degraded, DegradedEdges)
	}

	// Pattern scoring joins on the texture and dimension results.
	pattern, symmetryFallback := analyzePattern(texture, dimensions, pre.Smoothed)
	if symmetryFallback {
		logger.WithFields(logrus.Fields{
			"score": pattern[models.PatternSymmetryScore],
		}).Warn("symmetry computed from aspect-ratio fallback, not pixel comparison")
		degraded = append(degraded, DegradedPattern)
	}

	set := &models.DescriptorSet{
		FabricTexture:    texture,
		ColorHistogram:   histogram,
		Dimensions:       dimensions,
		EdgeFeatures:     edges,
		PatternFeatures:  pattern,
		CapturedAt:       time.Now().UTC(),
		AlgorithmVersion: AlgorithmVersion,
	}

	// Round at the pinned precision before the set leaves the extractor so
	// the stored form and the canonical form agree byte-for-byte.
	rounded := canonical.RoundDescriptors(set, fe.params.Precision)
	rounded.CapturedAt = set.CapturedAt
	rounded.AlgorithmVersion = set.AlgorithmVersion

	return &models.ExtractionReport{
		Descriptors: rounded,
		Degraded:    degraded,
	}, nil
}

func zeroTexture() map[string]float64 {
	return map[string]float64{
		models.TextureMeanIntensity: 0,
		models.TextureStdDeviation:  0,
		models.TextureContrast:      0,
		models.TextureHomogeneity:   0,
	}
}
