package sheet

import (
	"image"
	"image/color"
)

// Synthetic sheet geometry shared by the tests. Bubbles are drawn on a
// regular grid with generous spacing so row membership under the vertical
// sort is unambiguous.
const (
	testBubbleRadius = 7
	testOptionPitch  = 40
	testBlockGap     = 40
	testRowPitch     = 40
	testMarginX      = 60
	testMarginY      = 60
)

// newWhiteImage creates a solid white test image.
func newWhiteImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// drawRing draws a one-pixel black circle outline using the midpoint
// algorithm.
func drawRing(img *image.RGBA, cx, cy, radius int) {
	x := radius
	y := 0
	err := 0

	for x >= y {
		img.Set(cx+x, cy+y, color.Black)
		img.Set(cx+y, cy+x, color.Black)
		img.Set(cx-y, cy+x, color.Black)
		img.Set(cx-x, cy+y, color.Black)
		img.Set(cx-x, cy-y, color.Black)
		img.Set(cx-y, cy-x, color.Black)
		img.Set(cx+y, cy-x, color.Black)
		img.Set(cx+x, cy-y, color.Black)

		if err <= 0 {
			y++
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

// drawDisc draws a filled black circle.
func drawDisc(img *image.RGBA, cx, cy, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, color.Black)
			}
		}
	}
}

// sheetSize returns the pixel dimensions of a synthetic sheet for a layout.
func sheetSize(layout Layout) (int, int) {
	width := 2*testMarginX + layout.Blocks*layout.Options*testOptionPitch + (layout.Blocks-1)*testBlockGap
	height := 2*testMarginY + layout.RowsPerBlock*testRowPitch
	return width, height
}

// bubbleCenter returns the center of the bubble at (row, block, option).
func bubbleCenter(layout Layout, row, block, option int) (int, int) {
	cx := testMarginX + block*(layout.Options*testOptionPitch+testBlockGap) + option*testOptionPitch
	cy := testMarginY + row*testRowPitch
	return cx, cy
}

// questionPosition inverts the layout's numbering policy: given a 1-based
// question number it returns the (row, block) printing position.
func questionPosition(layout Layout, question int) (int, int) {
	n := question - 1
	if layout.Numbering == NumberingRowMajor {
		return n / layout.Blocks, n % layout.Blocks
	}
	return n % layout.RowsPerBlock, n / layout.RowsPerBlock
}

// drawSheet renders a complete synthetic sheet. marks maps question number
// to the option indices drawn as filled; every other bubble is drawn as an
// empty outline.
func drawSheet(layout Layout, marks map[int][]int) *image.RGBA {
	width, height := sheetSize(layout)
	img := newWhiteImage(width, height)

	for q := 1; q <= layout.Questions; q++ {
		row, block := questionPosition(layout, q)
		for opt := 0; opt < layout.Options; opt++ {
			cx, cy := bubbleCenter(layout, row, block, opt)

			filled := false
			for _, m := range marks[q] {
				if m == opt {
					filled = true
					break
				}
			}

			if filled {
				drawDisc(img, cx, cy, testBubbleRadius)
			} else {
				drawRing(img, cx, cy, testBubbleRadius)
			}
		}
	}

	return img
}

// maskFromImage runs the first pipeline stage with default parameters.
func maskFromImage(img image.Image) *Mask {
	p := DefaultParams()
	return Binarize(NewGrayscale(img), p.Window, p.Bias)
}

// denseKey builds an answer key covering questions 1..n with answer
// (q-1) % options.
func denseKey(n, options int) AnswerKey {
	key := make(AnswerKey, n)
	for q := 1; q <= n; q++ {
		key[q] = (q - 1) % options
	}
	return key
}
