package enhance

import (
	"image"
	"image/color"
	"testing"
)

func grayImage(width, height int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestEnhance_NoOpOptions(t *testing.T) {
	img := grayImage(50, 50, 128)
	out := Enhance(img, Options{})

	// With every pass disabled the input must come back untouched.
	if out != image.Image(img) {
		t.Error("no-op options did not return the input image")
	}
}

func TestEnhance_ContrastSpreadsValues(t *testing.T) {
	// Two halves near mid-gray; a contrast boost must push them apart.
	img := grayImage(60, 60, 110)
	for y := 0; y < 60; y++ {
		for x := 30; x < 60; x++ {
			img.Set(x, y, color.RGBA{150, 150, 150, 255})
		}
	}

	out := Enhance(img, Options{Contrast: 0.5})

	r1, _, _, _ := out.At(10, 30).RGBA()
	r2, _, _, _ := out.At(50, 30).RGBA()
	before := 150 - 110
	after := int(r2>>8) - int(r1>>8)
	if after <= before {
		t.Errorf("contrast boost narrowed the value gap: before %d, after %d", before, after)
	}
}

func TestEnhance_PreservesDimensions(t *testing.T) {
	img := grayImage(80, 40, 200)
	out := Enhance(img, Options{Contrast: 0.3, Sharpen: true, DenoiseRadius: 1.5})

	if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 40 {
		t.Errorf("output is %dx%d, want 80x40", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestEstimateSkew_AxisAlignedContent(t *testing.T) {
	// Horizontal black bars on white: no skew to report.
	img := grayImage(200, 200, 255)
	for _, y := range []int{50, 100, 150} {
		for x := 20; x < 180; x++ {
			img.Set(x, y, color.Black)
		}
	}

	angle := EstimateSkew(img)
	if angle < -1 || angle > 1 {
		t.Errorf("axis-aligned bars estimated at %.2f degrees, want ~0", angle)
	}
}

func TestDeskew_SmallSkewIsNoOp(t *testing.T) {
	img := grayImage(200, 200, 255)
	for x := 20; x < 180; x++ {
		img.Set(x, 100, color.Black)
	}

	out := Deskew(img)
	if out != image.Image(img) {
		t.Error("sub-threshold skew triggered a rotation")
	}
}

func TestEstimateSkew_BlankImage(t *testing.T) {
	if angle := EstimateSkew(grayImage(100, 100, 255)); angle != 0 {
		t.Errorf("blank image estimated at %.2f degrees, want 0", angle)
	}
}

func TestAxisDeviation(t *testing.T) {
	cases := []struct {
		theta float64
		want  float64
	}{
		{0, 0},
		{2, 2},
		{45, 45},
		{90, 0},
		{92, 2},
		{88, -2},
		{178, -2},
		{135, -45},
	}
	for _, tc := range cases {
		if got := axisDeviation(tc.theta); got != tc.want {
			t.Errorf("axisDeviation(%v) = %v, want %v", tc.theta, got, tc.want)
		}
	}
}
