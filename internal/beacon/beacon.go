package beacon

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"
)

// Beacon is the stored record for one tracked transmitter.
type Beacon struct {
	ID       string
	Position float64 // Strip coordinate in [0, led count)
	Signal   int     // RSSI in dBm, stronger is closer
	LastSeen time.Time
}

// InTimeout reports whether the beacon has gone quiet for at least timeout.
func (b *Beacon) InTimeout(now time.Time, timeout time.Duration) bool {
	return now.Sub(b.LastSeen) >= timeout
}

// Life returns the fade factor in [0, 1]: 1 until the timeout elapses, then a
// linear ramp down to 0 over fadeOut.
func (b *Beacon) Life(now time.Time, timeout, fadeOut time.Duration) float64 {
	age := now.Sub(b.LastSeen)
	if age < timeout {
		return 1
	}
	if fadeOut <= 0 {
		return 0
	}
	life := 1 - float64(age-timeout)/float64(fadeOut)
	return math.Max(0, math.Min(1, life))
}

// Entry is a read-only view of a beacon for one animation tick.
type Entry struct {
	ID       string
	Position float64
	Signal   int
	Life     float64
	LastSeen time.Time
}

// IDToPosition derives a consistent strip position from a beacon ID using a
// hash. Returns a value in [0, ledCount).
func IDToPosition(id string, ledCount int) float64 {
	h := sha256.Sum256([]byte(id))
	val := binary.BigEndian.Uint32(h[4:8])
	pos := float64(val) / (float64(math.MaxUint32) + 1) * float64(ledCount)
	return pos
}
