package walk

// Grid accumulates per-cell visit counts for the walker. Counts saturate at
// 255 instead of wrapping so long-running walks keep a stable heat picture.
// Cells are stored row-major.
type Grid struct {
	width, height int
	visits        []uint8
}

// NewGrid creates a zeroed visit grid. Dimensions below one cell are raised
// to one.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Grid{
		width:  width,
		height: height,
		visits: make([]uint8, width*height),
	}
}

// Width returns the grid width in cells.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in cells.
func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether p names a cell of the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Visit increments the count at p, saturating at 255. Out-of-bounds points
// are ignored.
func (g *Grid) Visit(p Point) {
	if !g.InBounds(p) {
		return
	}
	i := p.Y*g.width + p.X
	if g.visits[i] < 255 {
		g.visits[i]++
	}
}

// Visits returns the count at p, or zero for out-of-bounds points.
func (g *Grid) Visits(p Point) uint8 {
	if !g.InBounds(p) {
		return 0
	}
	return g.visits[p.Y*g.width+p.X]
}

// Reset zeroes every cell.
func (g *Grid) Reset() {
	clear(g.visits)
}

// Resize reallocates the grid at the new dimensions and zeroes it. Counts
// from the old grid cannot be mapped meaningfully across a cell-size
// change, so history starts over.
func (g *Grid) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == g.width && height == g.height {
		g.Reset()
		return
	}
	g.width = width
	g.height = height
	g.visits = make([]uint8, width*height)
}
