package validation

import (
	"math"
	"testing"

	"cloth-auth-go/pkg/models"
)

func validSet(bins int) *models.DescriptorSet {
	return &models.DescriptorSet{
		FabricTexture: map[string]float64{
			models.TextureMeanIntensity: 128,
			models.TextureStdDeviation:  10,
			models.TextureContrast:      0.4,
			models.TextureHomogeneity:   0.8,
		},
		Dimensions: map[string]float64{
			models.DimensionWidth:       100,
			models.DimensionHeight:      200,
			models.DimensionAspectRatio: 0.5,
			models.DimensionArea:        20000,
		},
		PatternFeatures: map[string]float64{
			models.PatternComplexityScore: 5,
			models.PatternSymmetryScore:   90,
		},
		ColorHistogram: make([]float64, bins*3),
		EdgeFeatures:   make([]float64, models.EdgeFeatureCount),
	}
}

func TestValidateAcceptsCompleteSet(t *testing.T) {
	v := NewDescriptorValidator(16)
	if issues := v.Validate(validSet(16)); len(issues) != 0 {
		t.Errorf("complete set reported issues: %v", v.ConvertIssuesToMessages(issues))
	}
	if !v.IsValid(validSet(16)) {
		t.Error("IsValid must accept a complete set")
	}
}

func TestValidateNilSet(t *testing.T) {
	v := NewDescriptorValidator(16)
	issues := v.Validate(nil)
	if len(issues) != 1 || issues[0].Code != "nil_set" {
		t.Errorf("nil set issues = %v", issues)
	}
}

func TestValidateFindsViolations(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*models.DescriptorSet)
		wantCode string
	}{
		{"Missing Texture Mapping", func(s *models.DescriptorSet) {
			s.FabricTexture = nil
		}, "missing_mapping"},
		{"Missing Homogeneity Key", func(s *models.DescriptorSet) {
			delete(s.FabricTexture, models.TextureHomogeneity)
		}, "missing_key"},
		{"Unexpected Extra Key", func(s *models.DescriptorSet) {
			s.Dimensions["depth"] = 3
		}, "extra_keys"},
		{"NaN Value", func(s *models.DescriptorSet) {
			s.PatternFeatures[models.PatternSymmetryScore] = math.NaN()
		}, "non_finite"},
		{"Truncated Histogram", func(s *models.DescriptorSet) {
			s.ColorHistogram = s.ColorHistogram[:10]
		}, "bad_length"},
		{"Infinite Edge Value", func(s *models.DescriptorSet) {
			s.EdgeFeatures[0] = math.Inf(1)
		}, "non_finite"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewDescriptorValidator(16)
			set := validSet(16)
			tc.mutate(set)

			issues := v.Validate(set)
			if len(issues) == 0 {
				t.Fatal("expected at least one issue")
			}
			found := false
			for _, issue := range issues {
				if issue.Code == tc.wantCode {
					found = true
				}
			}
			if !found {
				t.Errorf("expected issue code %q, got %v", tc.wantCode, issues)
			}
		})
	}
}

func TestConvertIssuesToMessages(t *testing.T) {
	v := NewDescriptorValidator(16)
	messages := v.ConvertIssuesToMessages([]Issue{
		{Code: "a", Message: "first"},
		{Code: "b", Message: "second"},
	})
	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Errorf("messages = %v", messages)
	}
}
