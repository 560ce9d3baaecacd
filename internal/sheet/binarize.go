package sheet

import "image"

// Grayscale is a single 8-bit luminance plane. It is produced once per
// pipeline run and never mutated afterwards.
type Grayscale struct {
	Width  int
	Height int
	Pix    []uint8 // row-major, len = Width*Height
}

// At returns the luminance at (x, y). No bounds checking is performed.
func (g *Grayscale) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// NewGrayscale converts an image to a luminance plane using ITU-R BT.601
// weights: Y = 0.299*R + 0.587*G + 0.114*B.
func NewGrayscale(img image.Image) *Grayscale {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	g := &Grayscale{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, gc, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			g.Pix[y*width+x] = uint8(float64(r>>8)*0.299 + float64(gc>>8)*0.587 + float64(b>>8)*0.114)
		}
	}

	return g
}

// Mask is a binary ink mask with the same dimensions as the Grayscale it
// was derived from. True cells are ink (dark marks on the original sheet).
type Mask struct {
	Width  int
	Height int
	Ink    []bool // row-major, len = Width*Height
}

// At reports whether (x, y) is an ink cell. No bounds checking is performed.
func (m *Mask) At(x, y int) bool {
	return m.Ink[y*m.Width+x]
}

// Binarize converts a luminance plane into an ink mask using a locally
// adaptive mean threshold.
//
// For each pixel the mean luminance of the surrounding window-by-window
// neighbourhood is computed (clipped at the image edges), bias is
// subtracted, and the pixel is classified as ink when it is darker than
// that local reference. Comparing against a local mean instead of one
// global threshold keeps uneven scan lighting from uniformly biasing every
// bubble toward filled or empty.
//
// Parameters:
//   - gray: the luminance plane to threshold.
//   - window: neighbourhood side length in pixels. Must be odd. Typical: 21.
//   - bias: constant subtracted from the local mean. Typical: 10.
//
// Binarize is a pure function of its inputs; the plane is not modified.
func Binarize(gray *Grayscale, window, bias int) *Mask {
	width := gray.Width
	height := gray.Height

	mask := &Mask{
		Width:  width,
		Height: height,
		Ink:    make([]bool, width*height),
	}
	if width == 0 || height == 0 {
		return mask
	}

	// Summed-area table over the plane so each window mean is O(1). The
	// table is one cell wider and taller than the image; row 0 and column 0
	// stay zero.
	integral := make([]uint64, (width+1)*(height+1))
	stride := width + 1
	for y := 0; y < height; y++ {
		var rowSum uint64
		for x := 0; x < width; x++ {
			rowSum += uint64(gray.Pix[y*width+x])
			integral[(y+1)*stride+(x+1)] = integral[y*stride+(x+1)] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < height; y++ {
		y1 := y - half
		if y1 < 0 {
			y1 = 0
		}
		y2 := y + half + 1
		if y2 > height {
			y2 = height
		}
		for x := 0; x < width; x++ {
			x1 := x - half
			if x1 < 0 {
				x1 = 0
			}
			x2 := x + half + 1
			if x2 > width {
				x2 = width
			}

			sum := integral[y2*stride+x2] - integral[y1*stride+x2] -
				integral[y2*stride+x1] + integral[y1*stride+x1]
			count := uint64((x2 - x1) * (y2 - y1))
			mean := int(sum / count)

			// Inverted threshold: dark marks become ink cells.
			if int(gray.Pix[y*width+x]) < mean-bias {
				mask.Ink[y*width+x] = true
			}
		}
	}

	return mask
}
