package sheet

import (
	"fmt"
	"image"
	"math"
)

// Candidate is a connected ink region hypothesized to be a bubble before
// grid assignment.
//
// The region is stored as per-row horizontal spans covering the area the
// region encloses: for a bubble outline the spans cover the interior too,
// so the same region serves both the area filter and the fill measure.
type Candidate struct {
	// Bounds is the region's bounding box.
	Bounds image.Rectangle `json:"bounds"`

	// Area is the enclosed region size in pixels (the sum of span widths),
	// not just the count of ink pixels on the boundary.
	Area int `json:"area"`

	// Center is the centroid of the enclosed region, rounded to pixels.
	Center image.Point `json:"center"`

	spans []span
}

// span is the horizontal extent of a region on one row, inclusive on both
// ends.
type span struct {
	y, x1, x2 int
}

// DetectCandidates extracts bubble-shaped regions from an ink mask.
//
// Maximal 8-connected ink components are found with an iterative flood
// fill; only the outer extent of each component is kept, so nested holes
// (the empty interior of an unfilled bubble outline) are not tracked as
// separate regions. Each component is then reduced to its per-row
// horizontal spans, which fill the outline's interior the way a drawn
// contour would be filled.
//
// A component survives filtering only if all of the following hold:
//   - bounding-box width >= p.MinWidth and height >= p.MinHeight,
//   - width/height within [p.MinAspect, p.MaxAspect],
//   - enclosed area >= p.MinArea.
//
// Returns an error wrapping ErrInsufficientCandidates when fewer than
// ceil(layout.ExpectedCells()*p.CandidateTolerance) components survive. That
// signals the photographed sheet's geometry does not match the configured
// layout; the caller must not proceed to scoring with a partial grid.
func DetectCandidates(mask *Mask, layout Layout, p Params) ([]Candidate, error) {
	width := mask.Width
	height := mask.Height

	visited := make([]bool, width*height)
	candidates := make([]Candidate, 0, layout.ExpectedCells())

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask.Ink[y*width+x] || visited[y*width+x] {
				continue
			}

			region := floodRegion(mask, visited, x, y)
			if c, ok := buildCandidate(region, p); ok {
				candidates = append(candidates, c)
			}
		}
	}

	expected := int(math.Ceil(float64(layout.ExpectedCells()) * p.CandidateTolerance))
	if len(candidates) < expected {
		return nil, fmt.Errorf("%w: found %d bubble-like regions, need %d for a %dx%d option grid",
			ErrInsufficientCandidates, len(candidates), expected, layout.Questions, layout.Options)
	}

	return candidates, nil
}

// floodRegion collects one 8-connected ink component starting at (startX,
// startY), using a stack instead of recursion to avoid blowing the stack on
// large regions.
func floodRegion(mask *Mask, visited []bool, startX, startY int) []image.Point {
	width := mask.Width
	height := mask.Height

	region := make([]image.Point, 0, 64)
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if pt.X < 0 || pt.X >= width || pt.Y < 0 || pt.Y >= height {
			continue
		}
		idx := pt.Y*width + pt.X
		if visited[idx] || !mask.Ink[idx] {
			continue
		}

		visited[idx] = true
		region = append(region, pt)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: pt.X + dx, Y: pt.Y + dy})
			}
		}
	}

	return region
}

// buildCandidate reduces an ink component to its row spans and applies the
// bubble shape filters. Returns ok=false when the component is rejected.
func buildCandidate(region []image.Point, p Params) (Candidate, bool) {
	minX, minY := region[0].X, region[0].Y
	maxX, maxY := minX, minY
	for _, pt := range region {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}

	width := maxX - minX + 1
	height := maxY - minY + 1
	if width < p.MinWidth || height < p.MinHeight {
		return Candidate{}, false
	}

	aspect := float64(width) / float64(height)
	if aspect < p.MinAspect || aspect > p.MaxAspect {
		return Candidate{}, false
	}

	// Row spans: leftmost to rightmost ink per row, filling the outline's
	// interior.
	rowMin := make([]int, height)
	rowMax := make([]int, height)
	rowSeen := make([]bool, height)
	for _, pt := range region {
		r := pt.Y - minY
		if !rowSeen[r] {
			rowSeen[r] = true
			rowMin[r] = pt.X
			rowMax[r] = pt.X
			continue
		}
		if pt.X < rowMin[r] {
			rowMin[r] = pt.X
		}
		if pt.X > rowMax[r] {
			rowMax[r] = pt.X
		}
	}

	spans := make([]span, 0, height)
	area := 0
	var sumX, sumY int64
	for r := 0; r < height; r++ {
		if !rowSeen[r] {
			continue
		}
		w := rowMax[r] - rowMin[r] + 1
		area += w
		sumX += int64(w) * int64(rowMin[r]+rowMax[r]) / 2
		sumY += int64(w) * int64(r+minY)
		spans = append(spans, span{y: r + minY, x1: rowMin[r], x2: rowMax[r]})
	}

	if area < p.MinArea {
		return Candidate{}, false
	}

	return Candidate{
		Bounds: image.Rect(minX, minY, maxX+1, maxY+1),
		Area:   area,
		Center: image.Point{
			X: int(sumX / int64(area)),
			Y: int(sumY / int64(area)),
		},
		spans: spans,
	}, true
}

// fillMeasure counts ink mask cells inside the candidate's enclosed region.
// This is a masked intersection with the region itself, not the bounding
// box, so neighbouring marks that overlap the box do not inflate the count.
func (c Candidate) fillMeasure(mask *Mask) int {
	count := 0
	for _, s := range c.spans {
		row := s.y * mask.Width
		for x := s.x1; x <= s.x2; x++ {
			if mask.Ink[row+x] {
				count++
			}
		}
	}
	return count
}
