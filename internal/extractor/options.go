package extractor

import "fmt"

// AlgorithmVersion tags every stored hash with the parameter set that
// produced it. Any change to a default below invalidates previously computed
// hashes, so defaults and version are bumped together.
const AlgorithmVersion = "v1"

// Channel order for histogram concatenation. This order is part of the
// canonical format and must never change within an algorithm version.
const ChannelOrder = "rgb"

// Params is the immutable configuration threaded through extraction,
// canonicalization and comparison. Values are pinned and versioned together;
// two descriptor sets are only comparable when produced under the same
// parameter set.
type Params struct {
	// Preprocessing
	SmoothingKernelSize int
	SmoothingSigma      float64

	// Texture (local binary pattern + co-occurrence)
	LBPRadius      float64
	LBPNeighbors   int
	CooccurrLevels int

	// Edges
	EdgeLowThreshold     float64
	EdgeHighThreshold    float64
	GradientMagThreshold float64

	// Histogram
	HistogramBins int

	// Canonicalization
	Precision int

	// Similarity
	TextureWeight         float64
	PatternWeight         float64
	DimensionWeight       float64
	AuthenticityThreshold float64
}

// DefaultParams returns the pinned v1 parameter set.
func DefaultParams() Params {
	return Params{
		SmoothingKernelSize:   5,
		SmoothingSigma:        1.0,
		LBPRadius:             1.0,
		LBPNeighbors:          8,
		CooccurrLevels:        8,
		EdgeLowThreshold:      50.0,
		EdgeHighThreshold:     150.0,
		GradientMagThreshold:  10.0,
		HistogramBins:         256,
		Precision:             4,
		TextureWeight:         0.4,
		PatternWeight:         0.4,
		DimensionWeight:       0.2,
		AuthenticityThreshold: 0.80,
	}
}

// WithPrecision returns a copy with a different rounding precision
func (p Params) WithPrecision(precision int) Params {
	p.Precision = precision
	return p
}

// WithHistogramBins returns a copy with a different histogram bin count
func (p Params) WithHistogramBins(bins int) Params {
	p.HistogramBins = bins
	return p
}

// WithThreshold returns a copy with a different authenticity threshold
func (p Params) WithThreshold(threshold float64) Params {
	p.AuthenticityThreshold = threshold
	return p
}

// WithSmoothing returns a copy with a different Gaussian kernel size and sigma
func (p Params) WithSmoothing(kernelSize int, sigma float64) Params {
	p.SmoothingKernelSize = kernelSize
	p.SmoothingSigma = sigma
	return p
}

// WithLBP returns a copy with different neighborhood sampling parameters
func (p Params) WithLBP(radius float64, neighbors int) Params {
	p.LBPRadius = radius
	p.LBPNeighbors = neighbors
	return p
}

// Validate rejects parameter sets that cannot produce well-formed
// descriptors.
func (p Params) Validate() error {
	if p.SmoothingKernelSize < 3 || p.SmoothingKernelSize%2 == 0 {
		return fmt.Errorf("smoothing kernel size must be an odd number >= 3 (got %d)", p.SmoothingKernelSize)
	}
	if p.SmoothingSigma <= 0 {
		return fmt.Errorf("smoothing sigma must be > 0 (got %g)", p.SmoothingSigma)
	}
	if p.LBPRadius <= 0 || p.LBPNeighbors < 4 {
		return fmt.Errorf("LBP needs radius > 0 and at least 4 neighbors (got radius=%g neighbors=%d)", p.LBPRadius, p.LBPNeighbors)
	}
	if p.LBPNeighbors > 32 {
		return fmt.Errorf("LBP codes are limited to 32 neighbor bits (got %d)", p.LBPNeighbors)
	}
	if p.CooccurrLevels < 2 || p.CooccurrLevels > 256 {
		return fmt.Errorf("co-occurrence quantization must be in [2,256] (got %d)", p.CooccurrLevels)
	}
	if p.EdgeLowThreshold < 0 || p.EdgeHighThreshold <= p.EdgeLowThreshold {
		return fmt.Errorf("edge thresholds must satisfy 0 <= low < high (got low=%g high=%g)", p.EdgeLowThreshold, p.EdgeHighThreshold)
	}
	if p.GradientMagThreshold < 0 {
		return fmt.Errorf("gradient magnitude threshold must be >= 0 (got %g)", p.GradientMagThreshold)
	}
	if p.HistogramBins < 2 || p.HistogramBins > 256 {
		return fmt.Errorf("histogram bins must be in [2,256] (got %d)", p.HistogramBins)
	}
	if p.Precision < 0 || p.Precision > 12 {
		return fmt.Errorf("precision must be in [0,12] (got %d)", p.Precision)
	}
	weightSum := p.TextureWeight + p.PatternWeight + p.DimensionWeight
	if weightSum <= 0 {
		return fmt.Errorf("similarity weights must sum to a positive value (got %g)", weightSum)
	}
	if p.AuthenticityThreshold < 0 || p.AuthenticityThreshold > 1 {
		return fmt.Errorf("authenticity threshold must be in [0,1] (got %g)", p.AuthenticityThreshold)
	}
	return nil
}
