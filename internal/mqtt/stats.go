package mqtt

import (
	"sync"
	"time"
)

// Stats counts accepted messages for status displays.
type Stats struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	total    int
	byBeacon map[string]int
	last     time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Total         int            `json:"total"`
	Rate          float64        `json:"rate"`
	Elapsed       time.Duration  `json:"elapsed"`
	ByBeacon      map[string]int `json:"by_beacon"`
	UniqueBeacons int            `json:"unique_beacons"`
	LastMessage   time.Time      `json:"last_message"`
}

// NewStats starts the rate clock at now(). A nil now uses time.Now.
func NewStats(now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{
		now:      now,
		start:    now(),
		byBeacon: make(map[string]int),
	}
}

// Record counts one message for id.
func (s *Stats) Record(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byBeacon[id]++
	s.last = s.now()
}

// Snapshot returns the totals and the average rate since NewStats.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.now().Sub(s.start)
	var rate float64
	if elapsed > 0 {
		rate = float64(s.total) / elapsed.Seconds()
	}
	by := make(map[string]int, len(s.byBeacon))
	for k, v := range s.byBeacon {
		by[k] = v
	}
	return StatsSnapshot{
		Total:         s.total,
		Rate:          rate,
		Elapsed:       elapsed,
		ByBeacon:      by,
		UniqueBeacons: len(by),
		LastMessage:   s.last,
	}
}
