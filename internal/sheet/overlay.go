package sheet

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
)

// OverlayResult contains the annotated debug raster encoded as base64 PNG,
// ready to hand to a UI or store alongside a report.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Overlay colors, picked in HSV so the hues stay evenly separated:
// green for the winning mark, amber for ambiguous ties, red for empty
// bubbles.
var (
	overlaySelected  = colorful.Hsv(130, 0.9, 0.75)
	overlayAmbiguous = colorful.Hsv(40, 0.95, 0.9)
	overlayEmpty     = colorful.Hsv(0, 0.85, 0.85)
)

// RenderOverlay draws the resolved grid over the original image: every
// bubble's bounding box is outlined in its status color and labeled with
// the measured fill percentage. The input image is not modified.
func RenderOverlay(img image.Image, cells []GridCell, responses map[int]Response) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelBg := color.RGBA{0, 0, 0, 180}

	for _, cell := range cells {
		resp := responses[cell.Question]

		c := overlayEmpty
		for _, opt := range resp.Options {
			if opt == cell.Option {
				if resp.Ambiguous() {
					c = overlayAmbiguous
				} else {
					c = overlaySelected
				}
				break
			}
		}
		r, g, b := c.RGB255()
		lineColor := color.RGBA{r, g, b, 255}

		drawBox(result, cell.Candidate.Bounds.Add(bounds.Min), lineColor)

		fill := 0.0
		if cell.Option < len(resp.Fills) {
			fill = resp.Fills[cell.Option]
		}
		label := fmt.Sprintf("%.0f%%", fill*100)
		b2 := cell.Candidate.Bounds.Add(bounds.Min)
		drawLabel(result, b2.Min.X, b2.Max.Y+2, label, lineColor, labelBg)
	}

	return result
}

// EncodeOverlay encodes an overlay raster as a base64 PNG result.
func EncodeOverlay(img *image.RGBA) (*OverlayResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// drawBox draws a one-pixel rectangle outline clipped to the image bounds.
func drawBox(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	bounds := img.Bounds()
	for x := r.Min.X; x < r.Max.X; x++ {
		setIfInside(img, bounds, x, r.Min.Y, c)
		setIfInside(img, bounds, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setIfInside(img, bounds, r.Min.X, y, c)
		setIfInside(img, bounds, r.Max.X-1, y, c)
	}
}

func setIfInside(img *image.RGBA, bounds image.Rectangle, x, y int, c color.RGBA) {
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.Set(x, y, c)
	}
}

// drawLabel draws a small text label at the given position using a 3x5
// bitmap font. Only the characters fill-percentage labels need are mapped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'.': {"000", "000", "000", "000", "010"},
		'%': {"101", "001", "010", "100", "101"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Background panel
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setIfInside(img, bounds, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setIfInside(img, bounds, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
