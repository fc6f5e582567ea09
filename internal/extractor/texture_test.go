package extractor

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// uniformGray builds a grayscale matrix with every pixel at the same value.
func uniformGray(width, height int, value uint8) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i := range gray.Pix {
		gray.Pix[i] = value
	}
	return gray
}

func TestAnalyzeTextureUniformImage(t *testing.T) {
	params := DefaultParams()
	texture, err := analyzeTexture(uniformGray(32, 32, 120), params)
	if err != nil {
		t.Fatalf("analyzeTexture returned error: %v", err)
	}

	// Every pixel produces the same code, and the four axis-aligned
	// neighbors sample exactly on the pixel grid, so those bits are set.
	code := int(texture["mean_intensity"])
	if float64(code) != texture["mean_intensity"] {
		t.Errorf("uniform image mean code %v is not a single repeated code", texture["mean_intensity"])
	}
	for _, bit := range []int{0, 2, 4, 6} {
		if code&(1<<uint(bit)) == 0 {
			t.Errorf("axis-aligned neighbor bit %d not set in code %08b", bit, code)
		}
	}
	if got := texture["std_deviation"]; got != 0 {
		t.Errorf("uniform image code deviation = %v, want 0", got)
	}
	if got := texture["contrast"]; got != 0 {
		t.Errorf("uniform image contrast = %v, want 0", got)
	}
	if got := texture["homogeneity"]; math.Abs(got-1) > 1e-9 {
		t.Errorf("uniform image homogeneity = %v, want 1", got)
	}
}

func TestAnalyzeTextureCheckerboard(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(0)
			if (x+y)%2 == 1 {
				v = 255
			}
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}

	texture, err := analyzeTexture(gray, DefaultParams())
	if err != nil {
		t.Fatalf("analyzeTexture returned error: %v", err)
	}
	if texture["contrast"] <= 0 {
		t.Errorf("checkerboard contrast = %v, want > 0", texture["contrast"])
	}
	if texture["homogeneity"] >= 1 {
		t.Errorf("checkerboard homogeneity = %v, want < 1", texture["homogeneity"])
	}
}

func TestLocalBinaryPatternTooSmall(t *testing.T) {
	if _, err := localBinaryPattern(uniformGray(2, 2, 0), 1.0, 8); err == nil {
		t.Error("expected an error for an image smaller than the sampling neighborhood")
	}
}

func TestLocalBinaryPatternCodeCount(t *testing.T) {
	codes, err := localBinaryPattern(uniformGray(10, 8, 50), 1.0, 8)
	if err != nil {
		t.Fatalf("localBinaryPattern returned error: %v", err)
	}
	// One code per interior pixel at margin 1.
	if want := 8 * 6; len(codes) != want {
		t.Errorf("got %d codes, want %d", len(codes), want)
	}
}

func TestCooccurrenceStatsTwoLevelStripes(t *testing.T) {
	// Vertical stripes alternate quantization levels on every horizontal
	// pair, so contrast is maximal for the two levels involved.
	gray := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(0)
			if x%2 == 1 {
				v = 255
			}
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}

	contrast, homogeneity, err := cooccurrenceStats(gray, 8)
	if err != nil {
		t.Fatalf("cooccurrenceStats returned error: %v", err)
	}
	// Levels 0 and 7 alternate: every pair contributes (0-7)^2 = 49.
	if math.Abs(contrast-49) > 1e-9 {
		t.Errorf("stripe contrast = %v, want 49", contrast)
	}
	if math.Abs(homogeneity-1.0/50.0) > 1e-9 {
		t.Errorf("stripe homogeneity = %v, want %v", homogeneity, 1.0/50.0)
	}
}

func TestQuantize(t *testing.T) {
	testCases := []struct {
		value    uint8
		levels   int
		expected int
	}{
		{0, 8, 0},
		{31, 8, 0},
		{32, 8, 1},
		{255, 8, 7},
		{128, 2, 1},
		{127, 2, 0},
	}
	for _, tc := range testCases {
		if got := quantize(tc.value, tc.levels); got != tc.expected {
			t.Errorf("quantize(%d, %d) = %d, want %d", tc.value, tc.levels, got, tc.expected)
		}
	}
}
