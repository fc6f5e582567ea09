package extractor

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func solidNRGBA(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAnalyzeHistogramLength(t *testing.T) {
	params := DefaultParams()
	hist, err := analyzeHistogram(solidNRGBA(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), params)
	if err != nil {
		t.Fatalf("analyzeHistogram returned error: %v", err)
	}
	if want := params.HistogramBins * 3; len(hist) != want {
		t.Errorf("histogram length = %d, want %d", len(hist), want)
	}
}

func TestAnalyzeHistogramSolidColor(t *testing.T) {
	params := DefaultParams().WithHistogramBins(16)
	hist, err := analyzeHistogram(solidNRGBA(8, 8, color.NRGBA{R: 255, G: 128, B: 0, A: 255}), params)
	if err != nil {
		t.Fatalf("analyzeHistogram returned error: %v", err)
	}

	// Exactly one bin per channel holds every count, normalizing to 1; the
	// rest normalize to 0.
	ones := 0
	for _, v := range hist {
		switch v {
		case 0:
		case 1:
			ones++
		default:
			t.Fatalf("solid color histogram contains %v, want only 0 and 1", v)
		}
	}
	if ones != 3 {
		t.Errorf("got %d saturated bins, want one per channel", ones)
	}

	bins := params.HistogramBins
	if hist[bins-1] != 1 {
		t.Error("full-intensity red sample should land in the last red bin")
	}
	if hist[bins+8] != 1 {
		t.Error("mid-intensity green sample should land in the middle green bin")
	}
	if hist[2*bins] != 1 {
		t.Error("zero blue sample should land in the first blue bin")
	}
}

func TestAnalyzeHistogramChannelOrder(t *testing.T) {
	params := DefaultParams().WithHistogramBins(4)

	red, err := analyzeHistogram(solidNRGBA(4, 4, color.NRGBA{R: 255, A: 255}), params)
	if err != nil {
		t.Fatalf("analyzeHistogram returned error: %v", err)
	}
	blue, err := analyzeHistogram(solidNRGBA(4, 4, color.NRGBA{B: 255, A: 255}), params)
	if err != nil {
		t.Fatalf("analyzeHistogram returned error: %v", err)
	}

	// The saturated bin lands in the segment ChannelOrder assigns to each
	// channel: the last bin of a full-intensity channel's segment.
	bins := params.HistogramBins
	redTop := strings.IndexByte(ChannelOrder, 'r')*bins + bins - 1
	blueTop := strings.IndexByte(ChannelOrder, 'b')*bins + bins - 1
	if red[redTop] != 1 || blue[redTop] == 1 {
		t.Errorf("red channel must occupy histogram segment %d", strings.IndexByte(ChannelOrder, 'r'))
	}
	if blue[blueTop] != 1 || red[blueTop] == 1 {
		t.Errorf("blue channel must occupy histogram segment %d", strings.IndexByte(ChannelOrder, 'b'))
	}
}

func TestBinFor(t *testing.T) {
	testCases := []struct {
		name     string
		sample   uint32
		bins     int
		expected int
	}{
		{"Zero Sample", 0, 256, 0},
		{"Full Sample", 0xFFFF, 256, 255},
		{"Mid Sample", 128 * 257, 256, 128},
		{"Full Sample Few Bins", 0xFFFF, 16, 15},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := binFor(tc.sample, tc.bins); got != tc.expected {
				t.Errorf("binFor(%d, %d) = %d, want %d", tc.sample, tc.bins, got, tc.expected)
			}
		})
	}
}
