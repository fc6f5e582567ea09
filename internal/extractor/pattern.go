package extractor

import (
	"image"
	"math"

	"cloth-auth-go/pkg/models"
)

// analyzePattern derives the pattern sub-descriptor. It runs only after the
// texture and dimension analyzers have produced their outputs.
//
// The symmetry score is the canonical pixel-mirror form: the left half of
// the smoothed grayscale matrix is compared against the horizontally
// mirrored right half, accumulating 1-|left-right|/255 per pixel pair and
// averaging over all compared pairs, scaled to [0,100]. When no pixel data
// is available (a descriptor rebuilt without its image) the lower-fidelity
// aspect-ratio stand-in is used instead and fallback=true is reported; the
// two formulas produce different score distributions and are never silently
// interchanged.
func analyzePattern(texture, dimensions map[string]float64, smoothed *image.Gray) (scores map[string]float64, fallback bool) {
	complexity := (texture[models.TextureStdDeviation] + texture[models.TextureContrast]) / 2.0

	var symmetry float64
	if smoothed != nil && smoothed.Bounds().Dx() >= 2 {
		symmetry = mirrorSymmetry(smoothed)
	} else {
		symmetry = aspectSymmetry(dimensions[models.DimensionAspectRatio])
		fallback = true
	}

	return map[string]float64{
		models.PatternComplexityScore: complexity,
		models.PatternSymmetryScore:   symmetry,
	}, fallback
}

func mirrorSymmetry(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	half := width / 2

	var acc float64
	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < half; x++ {
			left := float64(gray.GrayAt(x, y).Y)
			right := float64(gray.GrayAt(width-1-x, y).Y)
			acc += 1.0 - math.Abs(left-right)/255.0
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return acc / float64(count) * 100.0
}

func aspectSymmetry(aspectRatio float64) float64 {
	return math.Min(math.Abs(1.0-aspectRatio)*100.0, 100.0)
}
