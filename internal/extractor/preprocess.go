package extractor

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"

	apperrors "cloth-auth-go/internal/errors"
)

// Preprocessed holds the decoded matrices every analyzer works from. The
// same conversion and smoothing parameters are applied at registration and
// verification time; any divergence would silently change descriptor values.
type Preprocessed struct {
	Color    image.Image
	Gray     *image.Gray
	Smoothed *image.Gray
	Width    int
	Height   int
}

// DecodeBytes decodes raw image bytes, failing with a decode error on empty
// or undecodable input.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError("image data is empty", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("could not decode image", err)
	}
	return img, nil
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDecodeError("could not read image file: "+path, err)
	}
	return DecodeBytes(data)
}

// Preprocess converts the decoded image to grayscale and produces the
// smoothed matrix used by the texture, edge and pattern analyzers. No
// resizing is performed: dimension descriptors reflect native pixel size, so
// cross-resolution comparisons are penalized rather than normalized away.
func Preprocess(img image.Image, params Params) (*Preprocessed, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, apperrors.NewDecodeError("decoded image has no pixels", nil)
	}

	gray := toGray(img)
	smoothed := gaussianSmooth(gray, params.SmoothingKernelSize, params.SmoothingSigma)

	return &Preprocessed{
		Color:    img,
		Gray:     gray,
		Smoothed: smoothed,
		Width:    width,
		Height:   height,
	}, nil
}

// toGray converts any image to a zero-origin grayscale matrix using the
// standard luminance weighting.
func toGray(img image.Image) *image.Gray {
	flat := imaging.Grayscale(img)
	bounds := flat.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), flat, bounds.Min, draw.Src)
	return gray
}

// gaussianSmooth applies a separable Gaussian of exactly kernelSize taps per
// axis. Both the kernel size and sigma are part of the pinned parameter set:
// truncating the same sigma at a different size produces a different smoothed
// matrix and therefore different descriptors.
func gaussianSmooth(gray *image.Gray, kernelSize int, sigma float64) *image.Gray {
	radius := kernelSize / 2
	kernel := make([]float64, kernelSize)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tmp := image.NewGray(image.Rect(0, 0, width, height))
	out := image.NewGray(image.Rect(0, 0, width, height))

	// Horizontal pass, clamping samples at the image border.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * float64(gray.GrayAt(clampIndex(x+k, width), y).Y)
			}
			tmp.SetGray(x, y, color.Gray{Y: uint8(acc + 0.5)})
		}
	}

	// Vertical pass.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * float64(tmp.GrayAt(x, clampIndex(y+k, height)).Y)
			}
			out.SetGray(x, y, color.Gray{Y: uint8(acc + 0.5)})
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
