package walk

// Trail is a fixed-capacity ring of the walker's most recent positions,
// oldest first. Once full, each push evicts the oldest entry, so memory
// stays constant however long the walk runs. A zero-capacity trail accepts
// pushes and stays empty.
type Trail struct {
	points []Point
	head   int // index of the oldest entry
	size   int
}

// NewTrail creates a trail that remembers up to capacity positions.
func NewTrail(capacity int) *Trail {
	if capacity < 0 {
		capacity = 0
	}
	return &Trail{points: make([]Point, capacity)}
}

// Cap returns the trail's fixed capacity.
func (t *Trail) Cap() int {
	return len(t.points)
}

// Len returns the number of positions currently held.
func (t *Trail) Len() int {
	return t.size
}

// Push appends p as the newest position, evicting the oldest when full.
func (t *Trail) Push(p Point) {
	if len(t.points) == 0 {
		return
	}
	if t.size < len(t.points) {
		t.points[(t.head+t.size)%len(t.points)] = p
		t.size++
		return
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
}

// At returns the i-th position, with 0 the oldest and Len()-1 the newest.
// It panics if i is out of range, like a slice index.
func (t *Trail) At(i int) Point {
	if i < 0 || i >= t.size {
		panic("walk: trail index out of range")
	}
	return t.points[(t.head+i)%len(t.points)]
}

// Newest returns the most recently pushed position, if any.
func (t *Trail) Newest() (Point, bool) {
	if t.size == 0 {
		return Point{}, false
	}
	return t.At(t.size - 1), true
}

// Each calls fn for every held position, oldest first.
func (t *Trail) Each(fn func(p Point)) {
	for i := 0; i < t.size; i++ {
		fn(t.points[(t.head+i)%len(t.points)])
	}
}

// Reset drops all positions, keeping the capacity.
func (t *Trail) Reset() {
	t.head = 0
	t.size = 0
}
