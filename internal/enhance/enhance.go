// Package enhance provides optional raster cleanup applied before
// recognition: contrast and sharpness boosting for washed-out scans, light
// denoising, and best-effort skew correction for sheets fed slightly
// rotated through a scanner.
//
// Enhancement is strictly optional; the recognition pipeline accepts raw
// images. It improves candidate detection on low-contrast captures but is
// not a substitute for rescanning a bad photograph.
package enhance

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Options selects which cleanup passes run and how strongly.
type Options struct {
	// Contrast is the contrast change in [-1, 1]; 0 disables the pass.
	// Washed-out scans benefit from 0.2-0.4.
	Contrast float64 `json:"contrast"`

	// Sharpen applies one sharpening convolution after the contrast pass.
	Sharpen bool `json:"sharpen"`

	// DenoiseRadius is the Gaussian blur radius for noise suppression;
	// 0 disables the pass. Values above ~2 start softening bubble edges.
	DenoiseRadius float64 `json:"denoise_radius"`

	// Deskew estimates the dominant line angle and rotates the image
	// upright when the skew exceeds half a degree.
	Deskew bool `json:"deskew"`
}

// DefaultOptions mirrors the preprocessing the system historically applied
// to hackathon scan batches: moderate contrast and a sharpening pass.
func DefaultOptions() Options {
	return Options{
		Contrast: 0.25,
		Sharpen:  true,
	}
}

// Enhance applies the configured cleanup passes in a fixed order: deskew,
// denoise, contrast, sharpen. The input image is not modified.
func Enhance(img image.Image, opts Options) image.Image {
	out := img

	if opts.Deskew {
		out = Deskew(out)
	}
	if opts.DenoiseRadius > 0 {
		out = blur.Gaussian(out, opts.DenoiseRadius)
	}
	if opts.Contrast != 0 {
		out = adjust.Contrast(out, opts.Contrast)
	}
	if opts.Sharpen {
		out = effect.Sharpen(out)
	}

	return out
}

// Deskew rotates the image so its dominant printed lines run horizontal
// and vertical. Skews of half a degree or less are left alone: rotation
// resampling costs more fidelity than such a tilt does.
func Deskew(img image.Image) image.Image {
	angle := EstimateSkew(img)
	if math.Abs(angle) <= 0.5 {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}

// EstimateSkew estimates the sheet's rotation in degrees using a Hough
// line transform over the edge map. Each detected line votes with its
// deviation from the nearest axis; the median deviation is the skew.
// Returns 0 when no lines are found.
func EstimateSkew(img image.Image) float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := edgeMap(img, width, height)

	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	const numAngles = 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y*width+x] {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				angle := float64(theta) * math.Pi / 180.0
				rho := float64(x)*math.Cos(angle) + float64(y)*math.Sin(angle)
				rhoIdx := int(rho) + maxDist
				if rhoIdx >= 0 && rhoIdx < maxDist*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	// Lines shorter than a tenth of the smaller image side carry no
	// reliable angle information.
	threshold := width
	if height < threshold {
		threshold = height
	}
	threshold /= 10
	if threshold < 20 {
		threshold = 20
	}

	deviations := make([]float64, 0, 32)
	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			if accumulator[rhoIdx][theta] < threshold {
				continue
			}
			deviations = append(deviations, axisDeviation(float64(theta)))
		}
	}
	if len(deviations) == 0 {
		return 0
	}

	return median(deviations)
}

// axisDeviation maps a Hough normal angle to the line's deviation from the
// nearest image axis, in (-45, 45] degrees.
func axisDeviation(theta float64) float64 {
	switch {
	case theta <= 45:
		return theta
	case theta >= 135:
		return theta - 180
	default:
		return theta - 90
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// edgeMap performs simple gradient-based edge detection: pixels whose
// luminance differs from a horizontal or vertical neighbour by more than
// 30 are edges. Border pixels are never edges.
func edgeMap(img image.Image, width, height int) []bool {
	bounds := img.Bounds()
	edges := make([]bool, width*height)
	const threshold = 30.0

	lum := func(x, y int) float64 {
		r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
		return float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			c := lum(x, y)
			if math.Abs(c-lum(x+1, y)) > threshold || math.Abs(c-lum(x, y+1)) > threshold {
				edges[y*width+x] = true
			}
		}
	}

	return edges
}
