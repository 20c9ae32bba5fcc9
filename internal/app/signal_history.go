package app

// SignalHistory is a circular buffer of recent signal readings for one beacon.
type SignalHistory struct {
	buf   []float64
	pos   int
	count int
}

// NewSignalHistory creates a buffer holding up to capacity readings.
func NewSignalHistory(capacity int) *SignalHistory {
	return &SignalHistory{
		buf: make([]float64, capacity),
	}
}

// Push adds a reading, overwriting the oldest when full.
func (h *SignalHistory) Push(val float64) {
	h.buf[h.pos] = val
	h.pos = (h.pos + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Values returns the readings oldest first.
func (h *SignalHistory) Values() []float64 {
	if h.count == 0 {
		return nil
	}
	result := make([]float64, h.count)
	if h.count < len(h.buf) {
		copy(result, h.buf[:h.count])
	} else {
		n := copy(result, h.buf[h.pos:])
		copy(result[n:], h.buf[:h.pos])
	}
	return result
}

// Last returns the most recent reading, or 0 if empty.
func (h *SignalHistory) Last() float64 {
	if h.count == 0 {
		return 0
	}
	return h.buf[(h.pos-1+len(h.buf))%len(h.buf)]
}

// Len returns the number of stored readings.
func (h *SignalHistory) Len() int {
	return h.count
}
