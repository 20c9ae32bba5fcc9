package beacon

import (
	"sort"
	"sync"
	"time"
)

// Updater is the single entry point telemetry sources use to report a
// beacon observation.
type Updater interface {
	Update(id string, position float64, signal int, now time.Time)
}

// Store is a thread-safe registry of tracked beacons with timeout and fade-out.
type Store struct {
	mu      sync.RWMutex
	beacons map[string]*Beacon
	timeout time.Duration
	fadeOut time.Duration
}

// NewStore creates an empty Store. A beacon starts fading once it has not
// been updated for timeout and is gone after a further fadeOut.
func NewStore(timeout, fadeOut time.Duration) *Store {
	return &Store{
		beacons: make(map[string]*Beacon),
		timeout: timeout,
		fadeOut: fadeOut,
	}
}

// Update adds a beacon or refreshes an existing one. A fading beacon is
// revived: its last-seen time moves to now.
func (s *Store) Update(id string, position float64, signal int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.beacons[id]; ok {
		existing.Position = position
		existing.Signal = signal
		existing.LastSeen = now
		return
	}

	s.beacons[id] = &Beacon{
		ID:       id,
		Position: position,
		Signal:   signal,
		LastSeen: now,
	}
}

// Snapshot returns a copy of every beacon with its life computed against the
// same now. Sorted strongest signal first, then by ID.
func (s *Store) Snapshot(now time.Time) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, 0, len(s.beacons))
	for _, b := range s.beacons {
		result = append(result, Entry{
			ID:       b.ID,
			Position: b.Position,
			Signal:   b.Signal,
			Life:     b.Life(now, s.timeout, s.fadeOut),
			LastSeen: b.LastSeen,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Signal != result[j].Signal {
			return result[i].Signal > result[j].Signal
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Cleanup removes every beacon that has fully faded at now.
// Returns the number of removed beacons.
func (s *Store) Cleanup(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, b := range s.beacons {
		if b.Life(now, s.timeout, s.fadeOut) <= 0 {
			delete(s.beacons, id)
			count++
		}
	}
	return count
}

// Clear removes all beacons.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beacons = make(map[string]*Beacon)
}

// Count returns the number of tracked beacons.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.beacons)
}
