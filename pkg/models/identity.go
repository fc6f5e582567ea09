package models

import "time"

// Identity is the stored digital identity of a registered textile item.
// It is created once at registration and never updated; the only record
// operations are create, read and delete.
type Identity struct {
	ItemID           string    `json:"item_id"`
	FeaturesHash     string    `json:"features_hash"`
	TimestampHash    string    `json:"timestamp_hash"`
	CombinedHash     string    `json:"combined_hash"`
	AlgorithmVersion string    `json:"algorithm_version"`
	CreationTime     time.Time `json:"creation_time"`
	ImageRef         string    `json:"image_ref,omitempty"`
}

// VerificationResult is the outcome of comparing a candidate descriptor set
// against a stored reference.
type VerificationResult struct {
	ItemID              string  `json:"item_id,omitempty"`
	TextureSimilarity   float64 `json:"texture_similarity"`
	PatternSimilarity   float64 `json:"pattern_similarity"`
	DimensionSimilarity float64 `json:"dimension_similarity"`
	TotalSimilarity     float64 `json:"total_similarity"`
	Authentic           bool    `json:"authentic"`
}

// ExtractionReport pairs an extracted descriptor set with the per-category
// degraded signals emitted when an analyzer fell back to an all-zero
// sub-descriptor instead of aborting the extraction.
type ExtractionReport struct {
	Descriptors *DescriptorSet `json:"descriptors"`
	Degraded    []string       `json:"degraded,omitempty"`
}

// IsDegraded reports whether the named category was zeroed during extraction.
func (r *ExtractionReport) IsDegraded(category string) bool {
	for _, c := range r.Degraded {
		if c == category {
			return true
		}
	}
	return false
}
