// Package similarity scores a candidate descriptor set against a stored
// reference and renders the authenticity verdict. Compare is a pure function
// of its inputs: no state, no I/O, and both descriptor sets are borrowed
// read-only.
package similarity

import (
	"fmt"

	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/internal/extractor"
	"cloth-auth-go/pkg/models"
)

// Compare computes the per-category similarities and the weighted total.
// A missing required key fails with a missing_feature error rather than
// defaulting: a silently zeroed term would bias the averages unpredictably.
func Compare(reference, candidate *models.DescriptorSet, params extractor.Params) (*models.VerificationResult, error) {
	textureSim, err := compareTexture(reference, candidate)
	if err != nil {
		return nil, err
	}
	patternSim, err := comparePattern(reference, candidate)
	if err != nil {
		return nil, err
	}
	dimensionSim, err := compareDimensions(reference, candidate)
	if err != nil {
		return nil, err
	}

	total := params.TextureWeight*textureSim +
		params.PatternWeight*patternSim +
		params.DimensionWeight*dimensionSim

	return &models.VerificationResult{
		TextureSimilarity:   textureSim,
		PatternSimilarity:   patternSim,
		DimensionSimilarity: dimensionSim,
		TotalSimilarity:     total,
		Authentic:           total >= params.AuthenticityThreshold,
	}, nil
}

func compareTexture(reference, candidate *models.DescriptorSet) (float64, error) {
	keys := []string{models.TextureMeanIntensity, models.TextureContrast, models.TextureHomogeneity}
	ref, err := requireKeys("fabric_texture", reference.FabricTexture, keys)
	if err != nil {
		return 0, err
	}
	cand, err := requireKeys("fabric_texture", candidate.FabricTexture, keys)
	if err != nil {
		return 0, err
	}

	meanDiff := abs(ref[models.TextureMeanIntensity]-cand[models.TextureMeanIntensity]) / 255.0
	contrastDiff := abs(ref[models.TextureContrast] - cand[models.TextureContrast])
	homogeneityDiff := abs(ref[models.TextureHomogeneity] - cand[models.TextureHomogeneity])

	return clamp01(1.0 - (meanDiff+contrastDiff+homogeneityDiff)/3.0), nil
}

func comparePattern(reference, candidate *models.DescriptorSet) (float64, error) {
	keys := models.PatternKeys()
	ref, err := requireKeys("pattern_features", reference.PatternFeatures, keys)
	if err != nil {
		return 0, err
	}
	cand, err := requireKeys("pattern_features", candidate.PatternFeatures, keys)
	if err != nil {
		return 0, err
	}

	complexityDiff := abs(ref[models.PatternComplexityScore]-cand[models.PatternComplexityScore]) / 100.0
	symmetryDiff := abs(ref[models.PatternSymmetryScore]-cand[models.PatternSymmetryScore]) / 100.0

	return clamp01(1.0 - (complexityDiff+symmetryDiff)/2.0), nil
}

func compareDimensions(reference, candidate *models.DescriptorSet) (float64, error) {
	keys := []string{models.DimensionAspectRatio, models.DimensionArea}
	ref, err := requireKeys("dimensions", reference.Dimensions, keys)
	if err != nil {
		return 0, err
	}
	cand, err := requireKeys("dimensions", candidate.Dimensions, keys)
	if err != nil {
		return 0, err
	}

	if ref[models.DimensionArea] == 0 {
		return 0, apperrors.NewGeometryError("reference area is zero", nil)
	}

	aspectDiff := abs(ref[models.DimensionAspectRatio] - cand[models.DimensionAspectRatio])
	areaDiff := abs(ref[models.DimensionArea]-cand[models.DimensionArea]) / ref[models.DimensionArea]

	return clamp01(1.0 - (aspectDiff+areaDiff)/2.0), nil
}

func requireKeys(category string, m map[string]float64, keys []string) (map[string]float64, error) {
	if m == nil {
		return nil, apperrors.NewMissingFeatureError(
			fmt.Sprintf("descriptor set has no %s features", category), nil)
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return nil, apperrors.NewMissingFeatureError(
				fmt.Sprintf("descriptor set is missing %s key %q", category, k), nil)
		}
	}
	return m, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
