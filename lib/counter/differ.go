// Package counter turns cumulative server counters into per interval deltas.
package counter

// Differ keeps the previous value of every cumulative counter by name
type Differ struct {
	prev map[string]int64
}

// NewDiffer creates an empty Differ
func NewDiffer() *Differ {
	return &Differ{prev: make(map[string]int64)}
}

// Seed stores a baseline without producing a delta. Used for the extra read
// right after connecting, so the first displayed delta is a real interval.
func (d *Differ) Seed(name string, cur int64) {
	d.prev[name] = cur
}

// Sample returns the change since the previous value of name and keeps cur as
// the new baseline. The first sample of a name returns 0.
func (d *Differ) Sample(name string, cur int64) int64 {
	prev, ok := d.prev[name]
	d.prev[name] = cur
	if !ok {
		return 0
	}
	return Clamp(cur, prev)
}

// Has reports whether name has a baseline
func (d *Differ) Has(name string) bool {
	_, ok := d.prev[name]
	return ok
}

// Reset forgets every baseline
func (d *Differ) Reset() {
	d.prev = make(map[string]int64)
}

// Clamp is cur - prev, or 0 when the counter went backwards (FLUSH STATUS or
// a restart).
func Clamp(cur, prev int64) int64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}
