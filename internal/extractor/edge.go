package extractor

import (
	"fmt"
	"image"
	"math"
)

// analyzeEdges computes the fixed-length edge descriptor [density,
// orientation] from the smoothed grayscale matrix. Density is the fraction
// of edge pixels under double-threshold detection; orientation is the
// circular mean of gradient angles over pixels whose gradient magnitude
// exceeds the configured threshold, folded into [0,180) degrees and
// normalized to [0,1].
func analyzeEdges(smoothed *image.Gray, params Params) ([]float64, error) {
	bounds := smoothed.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("image %dx%d too small for gradient operator", width, height)
	}

	magnitude := make([]float64, width*height)
	var sumSin, sumCos float64

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := float64(gradientX(smoothed, x, y))
			gy := float64(gradientY(smoothed, x, y))
			mag := math.Sqrt(gx*gx + gy*gy)
			magnitude[y*width+x] = mag

			// Pixels below the magnitude threshold are noise, not
			// edges; they are excluded from the orientation average.
			if mag > params.GradientMagThreshold {
				angle := math.Atan2(gy, gx)
				sumSin += math.Sin(angle)
				sumCos += math.Cos(angle)
			}
		}
	}

	edgeCount := 0
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if isEdge(magnitude, width, x, y, params.EdgeLowThreshold, params.EdgeHighThreshold) {
				edgeCount++
			}
		}
	}

	density := float64(edgeCount) / float64(width*height)
	orientation := meanOrientation(sumSin, sumCos)

	return []float64{density, orientation}, nil
}

// isEdge applies double-threshold hysteresis: strong pixels always count,
// weak pixels count only when an 8-neighbor is strong.
func isEdge(magnitude []float64, width, x, y int, low, high float64) bool {
	mag := magnitude[y*width+x]
	if mag >= high {
		return true
	}
	if mag < low {
		return false
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if magnitude[(y+dy)*width+(x+dx)] >= high {
				return true
			}
		}
	}
	return false
}

// meanOrientation folds the circular mean of gradient angles into [0,180)
// degrees and normalizes to [0,1].
func meanOrientation(sumSin, sumCos float64) float64 {
	if sumSin == 0 && sumCos == 0 {
		return 0
	}
	degrees := math.Atan2(sumSin, sumCos) * 180 / math.Pi
	degrees = math.Mod(degrees, 180)
	if degrees < 0 {
		degrees += 180
	}
	return degrees / 180
}

// gradientX computes the horizontal Sobel gradient
func gradientX(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
		-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
		-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

// gradientY computes the vertical Sobel gradient
func gradientY(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
		1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}
