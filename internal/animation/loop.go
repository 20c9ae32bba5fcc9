// Package animation runs the fixed-cadence render loop: snapshot the beacon
// store, paint every beacon into a fresh frame, hand the frame to the output
// sink and prune fully faded beacons.
package animation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/color"
	"ble2wled.klederson.com/internal/led"
	"ble2wled.klederson.com/internal/metrics"
)

// ErrAlreadyRunning is returned by Run when the loop is already running.
var ErrAlreadyRunning = errors.New("animation loop already running")

// State is the loop's run state.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Options configures the loop. Values are assumed validated.
type Options struct {
	LEDCount    int
	TrailLength int
	TrailFade   float64
	Interval    time.Duration
	Motion      bool             // advance each beacon one pixel per tick
	Now         func() time.Time // defaults to time.Now
}

// Stats is the loop's observability surface.
type Stats struct {
	State        string    `json:"state"`
	Beacons      int       `json:"beacons"`
	LastTick     time.Time `json:"last_tick"`
	Frames       uint64    `json:"frames"`
	SinkFailures uint64    `json:"sink_failures"`
	SkippedTicks uint64    `json:"skipped_ticks"`
}

// Loop is the animation orchestrator.
type Loop struct {
	store  *beacon.Store
	model  color.Model
	sink   Sink
	opts   Options
	runner *led.Runner
	log    logrus.FieldLogger

	state atomic.Int32

	mu       sync.Mutex
	stop     chan struct{} // closed by Stop, replaced once a run consumes it
	lastTick time.Time
	frames   uint64
	failures uint64
	skipped  uint64
	failing  bool
}

// New creates a stopped Loop.
func New(store *beacon.Store, model color.Model, sink Sink, opts Options, logger logrus.FieldLogger) *Loop {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loop{
		store:  store,
		model:  model,
		sink:   sink,
		opts:   opts,
		runner: led.NewRunner(opts.LEDCount),
		log:    logger.WithField("component", "animation"),
		stop:   make(chan struct{}),
	}
}

// Render builds a fresh frame from a store snapshot.
func (l *Loop) Render(entries []beacon.Entry) led.Frame {
	frame := led.NewFrame(l.opts.LEDCount)

	var seen map[string]struct{}
	if l.opts.Motion {
		seen = make(map[string]struct{}, len(entries))
	}

	for _, e := range entries {
		pos := e.Position
		if l.opts.Motion {
			pos += float64(l.runner.Advance(e.ID))
			seen[e.ID] = struct{}{}
		}
		c := l.model.BeaconColor(e.ID, e.Signal, e.Life)
		led.PaintTrail(frame, pos, c, l.opts.TrailLength, l.opts.TrailFade)
	}

	if l.opts.Motion {
		l.runner.Retain(seen)
	}
	return frame
}

// Tick runs one iteration: snapshot, render, deliver, cleanup.
// The sink's error is returned after it has been logged and counted.
func (l *Loop) Tick(ctx context.Context) error {
	now := l.opts.Now()
	entries := l.store.Snapshot(now)
	frame := l.Render(entries)

	err := l.sink.Update(ctx, frame)
	l.store.Cleanup(now)

	l.record(now, err)
	return err
}

func (l *Loop) record(now time.Time, err error) {
	took := l.opts.Now().Sub(now)

	l.mu.Lock()
	l.lastTick = now
	l.frames++
	switch {
	case err != nil && !l.failing:
		l.failures++
		l.failing = true
		l.log.WithError(err).Warn("frame delivery failed")
	case err != nil:
		l.failures++
		l.log.WithError(err).Debug("frame delivery still failing")
	case l.failing:
		l.failing = false
		l.log.Info("frame delivery recovered")
	}
	l.mu.Unlock()

	metrics.ObserveTick(now, l.store.Count(), took, err == nil)
}

// Run ticks on the configured interval until ctx is cancelled, Stop is
// called, or the sink reports ErrSinkClosed. Overrun ticks are skipped so
// the cadence does not drift.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(Stopped), int32(Running)) {
		return ErrAlreadyRunning
	}
	defer l.state.Store(int32(Stopped))

	l.mu.Lock()
	stop := l.stop
	l.mu.Unlock()
	defer l.rearm(stop)

	l.log.WithFields(logrus.Fields{
		"interval":  l.opts.Interval,
		"led_count": l.opts.LEDCount,
		"motion":    l.opts.Motion,
	}).Info("animation loop started")
	defer l.log.Info("animation loop stopped")

	interval := l.opts.Interval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	next := l.opts.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		default:
		}

		if err := l.Tick(ctx); errors.Is(err, ErrSinkClosed) {
			l.log.WithError(err).Error("output sink closed, stopping")
			return err
		}

		next = next.Add(interval)
		now := l.opts.Now()
		if behind := now.Sub(next); behind > 0 {
			missed := int(behind/interval) + 1
			next = next.Add(time.Duration(missed) * interval)
			l.mu.Lock()
			l.skipped += uint64(missed)
			l.mu.Unlock()
			metrics.AddSkippedTicks(missed)
		}

		timer.Reset(next.Sub(now))
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-timer.C:
		}
	}
}

// Stop asks the loop to return. It is observed within one interval. A Stop
// issued before Run, or while Run is still starting, ends that run at its
// first check.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
}

// rearm installs a fresh stop channel once stop has been closed, so the loop
// can be started again.
func (l *Loop) rearm(stop chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-stop:
		if l.stop == stop {
			l.stop = make(chan struct{})
		}
	default:
	}
}

// State reports whether the loop is running.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Stats returns the current beacon count and tick counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		State:        l.State().String(),
		Beacons:      l.store.Count(),
		LastTick:     l.lastTick,
		Frames:       l.frames,
		SinkFailures: l.failures,
		SkippedTicks: l.skipped,
	}
}
