package extractor

import (
	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/pkg/models"
)

// analyzeDimensions computes the raw geometric descriptors. A zero height
// fails with a geometry error; an infinite aspect ratio is never silently
// returned.
func analyzeDimensions(width, height int) (map[string]float64, error) {
	if height == 0 {
		return nil, apperrors.NewGeometryError("image height is zero", nil)
	}

	w := float64(width)
	h := float64(height)
	return map[string]float64{
		models.DimensionWidth:       w,
		models.DimensionHeight:      h,
		models.DimensionAspectRatio: w / h,
		models.DimensionArea:        w * h,
	}, nil
}
