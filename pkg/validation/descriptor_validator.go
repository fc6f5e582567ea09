package validation

import (
	"fmt"
	"math"

	"cloth-auth-go/pkg/models"
)

// Issue describes one way a descriptor set fails its invariants.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DescriptorValidator checks the structural invariants of a descriptor set:
// every mapping carries exactly its fixed key set, every sequence has its
// configured length, and all values are finite. Stored records are validated
// on load so a corrupt or truncated record is rejected before it can bias a
// similarity score.
type DescriptorValidator struct {
	histogramLength int
}

// NewDescriptorValidator creates a validator for descriptor sets produced
// with the given histogram bin count.
func NewDescriptorValidator(histogramBins int) *DescriptorValidator {
	return &DescriptorValidator{histogramLength: histogramBins * 3}
}

// Validate returns all invariant violations found in the set.
func (v *DescriptorValidator) Validate(set *models.DescriptorSet) []Issue {
	if set == nil {
		return []Issue{{Code: "nil_set", Message: "descriptor set is nil"}}
	}

	var issues []Issue
	issues = append(issues, checkMapping("fabric_texture", set.FabricTexture, models.TextureKeys())...)
	issues = append(issues, checkMapping("dimensions", set.Dimensions, models.DimensionKeys())...)
	issues = append(issues, checkMapping("pattern_features", set.PatternFeatures, models.PatternKeys())...)
	issues = append(issues, checkSequence("color_histogram", set.ColorHistogram, v.histogramLength)...)
	issues = append(issues, checkSequence("edge_features", set.EdgeFeatures, models.EdgeFeatureCount)...)
	return issues
}

// IsValid reports whether the set satisfies every invariant.
func (v *DescriptorValidator) IsValid(set *models.DescriptorSet) bool {
	return len(v.Validate(set)) == 0
}

// ConvertIssuesToMessages flattens issues into log-friendly strings.
func (v *DescriptorValidator) ConvertIssuesToMessages(issues []Issue) []string {
	messages := make([]string, len(issues))
	for i, issue := range issues {
		messages[i] = issue.Message
	}
	return messages
}

func checkMapping(category string, m map[string]float64, keys []string) []Issue {
	var issues []Issue
	if m == nil {
		return []Issue{{
			Code:    "missing_mapping",
			Message: fmt.Sprintf("%s mapping is absent", category),
		}}
	}
	for _, k := range keys {
		val, ok := m[k]
		if !ok {
			issues = append(issues, Issue{
				Code:    "missing_key",
				Message: fmt.Sprintf("%s is missing key %q", category, k),
			})
			continue
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			issues = append(issues, Issue{
				Code:    "non_finite",
				Message: fmt.Sprintf("%s key %q is not finite", category, k),
			})
		}
	}
	if len(m) != len(keys) {
		issues = append(issues, Issue{
			Code:    "extra_keys",
			Message: fmt.Sprintf("%s has %d keys, want exactly %d", category, len(m), len(keys)),
		})
	}
	return issues
}

func checkSequence(category string, seq []float64, wantLen int) []Issue {
	var issues []Issue
	if len(seq) != wantLen {
		issues = append(issues, Issue{
			Code:    "bad_length",
			Message: fmt.Sprintf("%s has length %d, want %d", category, len(seq), wantLen),
		})
	}
	for i, val := range seq {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			issues = append(issues, Issue{
				Code:    "non_finite",
				Message: fmt.Sprintf("%s[%d] is not finite", category, i),
			})
		}
	}
	return issues
}
