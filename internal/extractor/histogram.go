package extractor

import (
	"fmt"
	"image"
)

// analyzeHistogram builds the concatenated per-channel intensity histogram.
// Channels are split per ChannelOrder, each channel histogram is
// independently min-max normalized to [0,1], and the per-channel histograms
// are concatenated in that order into one sequence of length bins*3.
func analyzeHistogram(img image.Image, params Params) ([]float64, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	bins := params.HistogramBins
	red := make([]float64, bins)
	green := make([]float64, bins)
	blue := make([]float64, bins)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[binFor(r, bins)]++
			green[binFor(g, bins)]++
			blue[binFor(b, bins)]++
		}
	}

	channels := map[byte][]float64{'r': red, 'g': green, 'b': blue}
	out := make([]float64, 0, bins*len(ChannelOrder))
	for i := 0; i < len(ChannelOrder); i++ {
		out = append(out, minMaxNormalize(channels[ChannelOrder[i]])...)
	}
	return out, nil
}

// binFor maps a 16-bit channel sample onto a bin index.
func binFor(sample uint32, bins int) int {
	idx := int(sample>>8) * bins / 256
	if idx >= bins {
		idx = bins - 1
	}
	return idx
}

// minMaxNormalize rescales counts into [0,1]. A flat histogram (max == min)
// normalizes to all zeros.
func minMaxNormalize(hist []float64) []float64 {
	min, max := hist[0], hist[0]
	for _, v := range hist[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(hist))
	if max == min {
		return out
	}
	for i, v := range hist {
		out[i] = (v - min) / (max - min)
	}
	return out
}
