// Package layout computes the tile grid of a collage.
package layout

import "fmt"

// Tile is a grid of Width columns by Height rows.
type Tile struct {
	Width  int
	Height int
}

// Cells returns the number of cells in the grid.
func (t Tile) Cells() int {
	return t.Width * t.Height
}

// String formats the tile as "WxH", the form montage expects.
func (t Tile) String() string {
	return fmt.Sprintf("%dx%d", t.Width, t.Height)
}

// Solve finds a near-square grid holding n items.
//
// Starting from one column, the row count is recomputed as n/columns while the
// column count grows, until there are no more rows than columns. The result
// leans slightly wider than tall. n = 0 yields a grid with zero rows.
func Solve(n int) Tile {
	n = max(n, 0)

	width, height := 1, 2
	for {
		height = n / width
		width++
		if height <= width {
			break
		}
	}

	for width*height < n {
		height++
	}

	return Tile{Width: width, Height: height}
}

// Geometry returns the pixel edge length of one square tile for a canvas of
// the given height. Returns 0 for a grid without rows or a non-positive height.
func Geometry(t Tile, canvasHeight int) int {
	if t.Height <= 0 || canvasHeight <= 0 {
		return 0
	}
	return canvasHeight / t.Height
}

// Plan is the full pixel layout of a collage.
type Plan struct {
	Tile         Tile
	Geometry     int
	CanvasWidth  int
	CanvasHeight int
	Items        int
}

// NewPlan lays out n items on a canvas canvasHeight pixels tall.
func NewPlan(n, canvasHeight int) Plan {
	t := Solve(n)
	g := Geometry(t, canvasHeight)
	return Plan{
		Tile:         t,
		Geometry:     g,
		CanvasWidth:  t.Width * g,
		CanvasHeight: t.Height * g,
		Items:        max(n, 0),
	}
}

// Empty reports whether the plan has nothing to draw.
func (p Plan) Empty() bool {
	return p.Items == 0 || p.Geometry == 0
}
