package led

// Runner advances a per-beacon offset by one pixel on every call to Advance,
// so beacons with a static telemetry position still travel along the strip.
// It is not safe for concurrent use; the animation loop owns it.
type Runner struct {
	ledCount int
	offsets  map[string]int
}

// NewRunner creates a Runner for a strip of ledCount pixels.
func NewRunner(ledCount int) *Runner {
	return &Runner{
		ledCount: ledCount,
		offsets:  make(map[string]int),
	}
}

// Advance moves the beacon one pixel forward and returns its new offset.
// A beacon seen for the first time starts at offset 0.
func (r *Runner) Advance(id string) int {
	off, ok := r.offsets[id]
	if ok {
		off = (off + 1) % r.ledCount
	}
	r.offsets[id] = off
	return off
}

// Retain forgets every beacon not present in keep.
func (r *Runner) Retain(keep map[string]struct{}) {
	for id := range r.offsets {
		if _, ok := keep[id]; !ok {
			delete(r.offsets, id)
		}
	}
}

// Len returns the number of beacons with a tracked offset.
func (r *Runner) Len() int {
	return len(r.offsets)
}
