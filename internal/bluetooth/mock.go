package bluetooth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/metrics"
)

// MockReading is one synthetic observation.
type MockReading struct {
	ID       string
	Position float64
	Signal   int
}

// MockGenerator moves a few fake beacons around a circle. Signal strength
// follows the position with a small wobble, so beacons drift between the
// near and far colors.
type MockGenerator struct {
	ids      []string
	ledCount int
	rssiMin  float64
	rssiMax  float64
	interval time.Duration
	now      func() time.Time
	log      logrus.FieldLogger

	t float64
}

// NewMockGenerator creates count beacons named beacon_0..beacon_{count-1}
// with signals spread over [rssiMin, rssiMax].
func NewMockGenerator(count, ledCount, rssiMin, rssiMax int, interval time.Duration, logger logrus.FieldLogger) *MockGenerator {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fmt.Sprintf("beacon_%d", i)
	}
	return &MockGenerator{
		ids:      ids,
		ledCount: ledCount,
		rssiMin:  float64(rssiMin),
		rssiMax:  float64(rssiMax),
		interval: interval,
		now:      time.Now,
		log:      logger.WithField("component", "mock"),
	}
}

// Step advances the simulation clock by dt seconds and returns one reading
// per beacon.
func (g *MockGenerator) Step(dt float64) []MockReading {
	g.t += dt
	n := float64(len(g.ids))

	out := make([]MockReading, len(g.ids))
	for i, id := range g.ids {
		angle := 2 * math.Pi * (g.t/10 + float64(i)/n)
		pos := 0.5 + 0.4*math.Cos(angle)

		noise := 3 * math.Sin(g.t*2+float64(i))
		rssi := g.rssiMin + pos*(g.rssiMax-g.rssiMin) + noise

		out[i] = MockReading{
			ID:       id,
			Position: pos * float64(g.ledCount),
			Signal:   int(rssi),
		}
	}
	return out
}

// Run feeds readings into store every interval until ctx is cancelled.
func (g *MockGenerator) Run(ctx context.Context, store beacon.Updater) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.log.WithField("beacons", len(g.ids)).Info("mock beacons started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := g.now()
			for _, r := range g.Step(g.interval.Seconds()) {
				store.Update(r.ID, r.Position, r.Signal, now)
				metrics.IncTelemetry("mock")
			}
		}
	}
}
