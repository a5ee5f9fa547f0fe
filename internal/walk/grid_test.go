package walk

import "testing"

func TestGridVisit(t *testing.T) {
	g := NewGrid(4, 3)

	p := Point{X: 2, Y: 1}
	if got := g.Visits(p); got != 0 {
		t.Fatalf("fresh grid Visits(%v) = %d, want 0", p, got)
	}

	g.Visit(p)
	g.Visit(p)
	g.Visit(Point{X: 0, Y: 0})

	if got := g.Visits(p); got != 2 {
		t.Errorf("Visits(%v) = %d, want 2", p, got)
	}
	if got := g.Visits(Point{X: 0, Y: 0}); got != 1 {
		t.Errorf("Visits({0 0}) = %d, want 1", got)
	}
	if got := g.Visits(Point{X: 3, Y: 2}); got != 0 {
		t.Errorf("Visits({3 2}) = %d, want 0", got)
	}
}

func TestGridSaturation(t *testing.T) {
	g := NewGrid(2, 2)
	p := Point{X: 1, Y: 1}

	for i := 0; i < 300; i++ {
		g.Visit(p)
	}
	if got := g.Visits(p); got != 255 {
		t.Errorf("visit count after 300 visits = %d, want saturation at 255", got)
	}
}

func TestGridOutOfBounds(t *testing.T) {
	g := NewGrid(3, 3)

	outside := []Point{
		{X: -1, Y: 0},
		{X: 0, Y: -1},
		{X: 3, Y: 0},
		{X: 0, Y: 3},
		{X: 100, Y: 100},
	}
	for _, p := range outside {
		g.Visit(p) // must not panic
		if got := g.Visits(p); got != 0 {
			t.Errorf("Visits(%v) = %d, want 0", p, got)
		}
	}
}

func TestGridReset(t *testing.T) {
	g := NewGrid(3, 3)
	g.Visit(Point{X: 1, Y: 1})
	g.Reset()
	if got := g.Visits(Point{X: 1, Y: 1}); got != 0 {
		t.Errorf("Visits after Reset = %d, want 0", got)
	}
}

func TestGridResize(t *testing.T) {
	g := NewGrid(3, 3)
	g.Visit(Point{X: 2, Y: 2})

	g.Resize(5, 4)
	if g.Width() != 5 || g.Height() != 4 {
		t.Fatalf("size after resize = %dx%d, want 5x4", g.Width(), g.Height())
	}
	if got := g.Visits(Point{X: 2, Y: 2}); got != 0 {
		t.Errorf("resize kept stale count %d", got)
	}

	// Same-size resize still clears history.
	g.Visit(Point{X: 1, Y: 1})
	g.Resize(5, 4)
	if got := g.Visits(Point{X: 1, Y: 1}); got != 0 {
		t.Errorf("same-size resize kept stale count %d", got)
	}
}

func TestGridMinimumSize(t *testing.T) {
	g := NewGrid(0, -3)
	if g.Width() != 1 || g.Height() != 1 {
		t.Errorf("degenerate grid = %dx%d, want 1x1", g.Width(), g.Height())
	}
	g.Visit(Point{X: 0, Y: 0})
	if got := g.Visits(Point{X: 0, Y: 0}); got != 1 {
		t.Errorf("Visits on 1x1 grid = %d, want 1", got)
	}
}
