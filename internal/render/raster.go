// Package render provides the dot-grid frame renderer for walkbg.
package render

import (
	"image/color"

	"github.com/opd-ai/go-walkbg/internal/walk"
)

// Renderer rasterizes walk state into pixel buffers as a lattice of dots,
// one per grid cell. Every call redraws the whole frame from the visit
// grid, so frames carry no history of their own and a redraw after a lost
// buffer is exact.
type Renderer struct {
	cfg     Config
	palette Palette
	trail   Palette
}

// NewRenderer creates a renderer for the given configuration. The caller
// validates the configuration first.
func NewRenderer(cfg Config) *Renderer {
	// Trail dots reuse the palette machinery with a blend of foreground
	// and active as their base, so they read as a faded wake.
	trailBase := Blend(cfg.Foreground, cfg.Active, 0.5)
	return &Renderer{
		cfg:     cfg,
		palette: NewPalette(cfg.Palette, cfg.Foreground, cfg.PaletteSeed),
		trail:   NewPalette(PaletteMono, trailBase, 0),
	}
}

// GridSize returns the walk grid dimensions for an output of the given
// pixel size. The +1 keeps a dot column and row on the far edges.
func (r *Renderer) GridSize(width, height int) (gw, gh int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return width/r.cfg.CellSize + 1, height/r.cfg.CellSize + 1
}

// Draw renders a complete frame: background, one dot per grid cell colored
// by its visit count, the trail overlay, then the walker's dot on top.
// A nil trail skips the overlay. The active point may lie outside the
// grid; its dot is clipped like any other.
func (r *Renderer) Draw(buf *PixelBuffer, grid *walk.Grid, trail *walk.Trail, active walk.Point) {
	buf.Fill(r.cfg.Background)

	for gy := 0; gy < grid.Height(); gy++ {
		for gx := 0; gx < grid.Width(); gx++ {
			c := r.palette.Dot(gx, gy, grid.Visits(walk.Point{X: gx, Y: gy}))
			r.drawDot(buf, gx, gy, c)
		}
	}

	if trail != nil {
		trail.Each(func(p walk.Point) {
			r.drawDot(buf, p.X, p.Y, r.trail.Dot(p.X, p.Y, 1))
		})
	}

	r.drawDot(buf, active.X, active.Y, r.cfg.Active)
}

// drawDot fills a disc of the configured radius centered on the cell's
// pixel position. PixelBuffer clips, so edge dots render as partial discs.
func (r *Renderer) drawDot(buf *PixelBuffer, gx, gy int, c color.RGBA) {
	cx := gx * r.cfg.CellSize
	cy := gy * r.cfg.CellSize
	radius := r.cfg.DotRadius

	if radius == 0 {
		buf.SetPixel(cx, cy, c)
		return
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				buf.SetPixel(cx+dx, cy+dy, c)
			}
		}
	}
}
