package models

import "time"

// Texture descriptor keys. Every DescriptorSet carries exactly this key set.
const (
	TextureMeanIntensity = "mean_intensity"
	TextureStdDeviation  = "std_deviation"
	TextureContrast      = "contrast"
	TextureHomogeneity   = "homogeneity"
)

// Dimension descriptor keys.
const (
	DimensionWidth       = "width"
	DimensionHeight      = "height"
	DimensionAspectRatio = "aspect_ratio"
	DimensionArea        = "area"
)

// Pattern descriptor keys.
const (
	PatternComplexityScore = "complexity_score"
	PatternSymmetryScore   = "symmetry_score"
)

// EdgeFeatureCount is the fixed length of the edge feature sequence:
// [density, orientation].
const EdgeFeatureCount = 2

// DescriptorSet holds the complete set of extracted numeric characteristics
// of one textile image. All mappings carry their full fixed key set and all
// sequences have their configured length; a set is never partially populated.
//
// CapturedAt is record metadata only and is excluded from canonicalization
// and hashing.
type DescriptorSet struct {
	FabricTexture   map[string]float64 `json:"fabric_texture"`
	ColorHistogram  []float64          `json:"color_histogram"`
	Dimensions      map[string]float64 `json:"dimensions"`
	EdgeFeatures    []float64          `json:"edge_features"`
	PatternFeatures map[string]float64 `json:"pattern_features"`

	CapturedAt       time.Time `json:"captured_at,omitempty"`
	AlgorithmVersion string    `json:"algorithm_version,omitempty"`
}

// TextureKeys lists the texture mapping's fixed key set in ascending order.
func TextureKeys() []string {
	return []string{TextureContrast, TextureHomogeneity, TextureMeanIntensity, TextureStdDeviation}
}

// DimensionKeys lists the dimension mapping's fixed key set in ascending order.
func DimensionKeys() []string {
	return []string{DimensionArea, DimensionAspectRatio, DimensionHeight, DimensionWidth}
}

// PatternKeys lists the pattern mapping's fixed key set in ascending order.
func PatternKeys() []string {
	return []string{PatternComplexityScore, PatternSymmetryScore}
}

// Clone returns a deep copy so callers can hold a DescriptorSet without
// aliasing the maps and slices used for hashing.
func (d *DescriptorSet) Clone() *DescriptorSet {
	if d == nil {
		return nil
	}
	out := &DescriptorSet{
		FabricTexture:    make(map[string]float64, len(d.FabricTexture)),
		ColorHistogram:   append([]float64(nil), d.ColorHistogram...),
		Dimensions:       make(map[string]float64, len(d.Dimensions)),
		EdgeFeatures:     append([]float64(nil), d.EdgeFeatures...),
		PatternFeatures:  make(map[string]float64, len(d.PatternFeatures)),
		CapturedAt:       d.CapturedAt,
		AlgorithmVersion: d.AlgorithmVersion,
	}
	for k, v := range d.FabricTexture {
		out.FabricTexture[k] = v
	}
	for k, v := range d.Dimensions {
		out.Dimensions[k] = v
	}
	for k, v := range d.PatternFeatures {
		out.PatternFeatures[k] = v
	}
	return out
}
