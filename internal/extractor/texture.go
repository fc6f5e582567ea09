package extractor

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"cloth-auth-go/pkg/models"
)

// analyzeTexture computes the texture sub-descriptor from the smoothed
// grayscale matrix: mean and standard deviation of the local binary pattern
// transform, plus contrast and homogeneity of a horizontal distance-1
// co-occurrence matrix.
func analyzeTexture(smoothed *image.Gray, params Params) (map[string]float64, error) {
	codes, err := localBinaryPattern(smoothed, params.LBPRadius, params.LBPNeighbors)
	if err != nil {
		return nil, err
	}

	contrast, homogeneity, err := cooccurrenceStats(smoothed, params.CooccurrLevels)
	if err != nil {
		return nil, err
	}

	return map[string]float64{
		models.TextureMeanIntensity: stat.Mean(codes, nil),
		models.TextureStdDeviation:  stat.StdDev(codes, nil),
		models.TextureContrast:      contrast,
		models.TextureHomogeneity:   homogeneity,
	}, nil
}

// localBinaryPattern computes the per-pixel neighborhood code for every
// interior pixel: neighbors are sampled at the configured radius with
// bilinear interpolation, and a bit is set per neighbor whose value is >=
// the center value. Neighbor enumeration order is fixed, so code generation
// is deterministic.
func localBinaryPattern(gray *image.Gray, radius float64, neighbors int) ([]float64, error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	margin := int(math.Ceil(radius))
	if width <= 2*margin || height <= 2*margin {
		return nil, fmt.Errorf("image %dx%d too small for LBP radius %g", width, height, radius)
	}

	// Precompute sampling offsets for the fixed neighbor order.
	dx := make([]float64, neighbors)
	dy := make([]float64, neighbors)
	for k := 0; k < neighbors; k++ {
		angle := 2 * math.Pi * float64(k) / float64(neighbors)
		dx[k] = radius * math.Cos(angle)
		dy[k] = -radius * math.Sin(angle)
	}

	codes := make([]float64, 0, (width-2*margin)*(height-2*margin))
	for y := margin; y < height-margin; y++ {
		for x := margin; x < width-margin; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			code := 0
			for k := 0; k < neighbors; k++ {
				if sampleBilinear(gray, float64(x)+dx[k], float64(y)+dy[k]) >= center {
					code |= 1 << uint(k)
				}
			}
			codes = append(codes, float64(code))
		}
	}
	return codes, nil
}

// sampleBilinear interpolates the grayscale value at a fractional position.
func sampleBilinear(gray *image.Gray, fx, fy float64) float64 {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	v00 := float64(gray.GrayAt(x0, y0).Y)
	v10 := float64(gray.GrayAt(x0+1, y0).Y)
	v01 := float64(gray.GrayAt(x0, y0+1).Y)
	v11 := float64(gray.GrayAt(x0+1, y0+1).Y)

	top := v00*(1-tx) + v10*tx
	bottom := v01*(1-tx) + v11*tx
	return top*(1-ty) + bottom*ty
}

// cooccurrenceStats quantizes the image to a small number of gray levels,
// builds the horizontal distance-1 co-occurrence matrix, normalizes it to a
// probability distribution and derives contrast and homogeneity.
func cooccurrenceStats(gray *image.Gray, levels int) (contrast, homogeneity float64, err error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 2 || height < 1 {
		return 0, 0, fmt.Errorf("image %dx%d too small for co-occurrence pairs", width, height)
	}

	matrix := make([][]float64, levels)
	for i := range matrix {
		matrix[i] = make([]float64, levels)
	}

	total := 0.0
	for y := 0; y < height; y++ {
		for x := 0; x < width-1; x++ {
			i := quantize(gray.GrayAt(x, y).Y, levels)
			j := quantize(gray.GrayAt(x+1, y).Y, levels)
			matrix[i][j]++
			total++
		}
	}

	for i := 0; i < levels; i++ {
		for j := 0; j < levels; j++ {
			p := matrix[i][j] / total
			d := float64(i - j)
			contrast += p * d * d
			homogeneity += p / (1 + d*d)
		}
	}
	return contrast, homogeneity, nil
}

func quantize(v uint8, levels int) int {
	return int(v) * levels / 256
}
