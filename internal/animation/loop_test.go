package animation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/color"
	"ble2wled.klederson.com/internal/led"
	"ble2wled.klederson.com/internal/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testOptions(now func() time.Time) Options {
	return Options{
		LEDCount:    30,
		TrailLength: 4,
		TrailFade:   0.5,
		Interval:    5 * time.Millisecond,
		Now:         now,
	}
}

func peak(c led.RGB) uint8 {
	return max(c.R, c.G, c.B)
}

func newTestLoop(sink Sink, opts Options) (*Loop, *beacon.Store) {
	store := beacon.NewStore(6*time.Second, 4*time.Second)
	return New(store, color.DefaultModel(), sink, opts, logging.Discard()), store
}

func TestTickPaintsBeaconTrail(t *testing.T) {
	clock := newFakeClock()
	sink := &RecordingSink{}
	loop, store := newTestLoop(sink, testOptions(clock.Now))

	store.Update("a", 10, -59, clock.Now())
	require.NoError(t, loop.Tick(context.Background()))

	frame := sink.Last()
	require.Len(t, frame, 30)
	head := frame[10]
	assert.NotEqual(t, led.Black, head)
	assert.Equal(t, head.Scale(0.5), frame[9])
	assert.Equal(t, head.Scale(0.25), frame[8])
	assert.Equal(t, led.Black, frame[11])
	assert.Equal(t, led.Black, frame[6])
}

func TestTickEmptyStoreRendersBlack(t *testing.T) {
	clock := newFakeClock()
	sink := &RecordingSink{}
	loop, _ := newTestLoop(sink, testOptions(clock.Now))

	require.NoError(t, loop.Tick(context.Background()))
	assert.Equal(t, led.NewFrame(30), sink.Last())
}

func TestTickFadesThenRemoves(t *testing.T) {
	clock := newFakeClock()
	sink := &RecordingSink{}
	loop, store := newTestLoop(sink, testOptions(clock.Now))

	store.Update("a", 3, -59, clock.Now())
	require.NoError(t, loop.Tick(context.Background()))
	full := sink.Last()[3]

	clock.Advance(8 * time.Second)
	require.NoError(t, loop.Tick(context.Background()))
	half := sink.Last()[3]
	assert.InDelta(t, float64(peak(full))/2, float64(peak(half)), 1)
	assert.Equal(t, 1, store.Count())

	clock.Advance(2 * time.Second)
	require.NoError(t, loop.Tick(context.Background()))
	assert.Equal(t, led.NewFrame(30), sink.Last())
	assert.Equal(t, 0, store.Count())
}

func TestTickReturnsSinkErrorAndStillCleansUp(t *testing.T) {
	clock := newFakeClock()
	boom := errors.New("boom")
	sink := &RecordingSink{Err: boom}
	loop, store := newTestLoop(sink, testOptions(clock.Now))

	store.Update("a", 3, -59, clock.Now())
	clock.Advance(11 * time.Second)

	err := loop.Tick(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Count())

	stats := loop.Stats()
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, uint64(1), stats.SinkFailures)
	assert.Equal(t, clock.Now(), stats.LastTick)
}

func TestTickMotionAdvancesOnePixel(t *testing.T) {
	clock := newFakeClock()
	sink := &RecordingSink{}
	opts := testOptions(clock.Now)
	opts.Motion = true
	opts.TrailLength = 1
	loop, store := newTestLoop(sink, opts)

	store.Update("a", 29, -59, clock.Now())
	for i := 0; i < 3; i++ {
		require.NoError(t, loop.Tick(context.Background()))
	}

	frames := sink.Frames()
	require.Len(t, frames, 3)
	assert.NotEqual(t, led.Black, frames[0][29])
	assert.NotEqual(t, led.Black, frames[1][0])
	assert.Equal(t, led.Black, frames[1][29])
	assert.NotEqual(t, led.Black, frames[2][1])
}

func TestRunKeepsGoingAfterSinkErrors(t *testing.T) {
	var calls atomic.Int32
	sink := SinkFunc(func(context.Context, led.Frame) error {
		calls.Add(1)
		return errors.New("unreachable")
	})
	loop, _ := newTestLoop(sink, testOptions(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, Running, loop.State())
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Equal(t, Stopped, loop.State())
	assert.GreaterOrEqual(t, loop.Stats().SinkFailures, uint64(3))
}

func TestRunStopsOnClosedSink(t *testing.T) {
	sink := SinkFunc(func(context.Context, led.Frame) error {
		return fmt.Errorf("udp: %w", ErrSinkClosed)
	})
	loop, _ := newTestLoop(sink, testOptions(nil))

	err := loop.Run(context.Background())
	assert.ErrorIs(t, err, ErrSinkClosed)
	assert.Equal(t, Stopped, loop.State())
	assert.Equal(t, uint64(1), loop.Stats().Frames)
}

func TestStopEndsRun(t *testing.T) {
	sink := &RecordingSink{}
	loop, _ := newTestLoop(sink, testOptions(nil))

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	require.Eventually(t, func() bool { return len(sink.Frames()) >= 2 }, time.Second, time.Millisecond)
	loop.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRunRejectsSecondCaller(t *testing.T) {
	sink := &RecordingSink{}
	loop, _ := newTestLoop(sink, testOptions(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	require.Eventually(t, func() bool { return loop.State() == Running }, time.Second, time.Millisecond)
	assert.ErrorIs(t, loop.Run(ctx), ErrAlreadyRunning)
}

func TestStopRightAfterStartEndsRun(t *testing.T) {
	for i := 0; i < 20; i++ {
		loop, _ := newTestLoop(&RecordingSink{}, testOptions(nil))

		done := make(chan error, 1)
		go func() { done <- loop.Run(context.Background()) }()
		loop.Stop()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatalf("run %d: loop still running after Stop", i)
		}
		assert.Equal(t, Stopped, loop.State())
	}
}

func TestStopBeforeRunEndsThatRunOnly(t *testing.T) {
	sink := &RecordingSink{}
	loop, _ := newTestLoop(sink, testOptions(nil))
	loop.Stop()
	loop.Stop()
	assert.Equal(t, Stopped, loop.State())

	require.NoError(t, loop.Run(context.Background()))
	assert.Empty(t, sink.Frames())

	// the stop was consumed; the next run ticks until stopped again
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()
	require.Eventually(t, func() bool { return len(sink.Frames()) >= 2 }, time.Second, time.Millisecond)
	loop.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRunSkipsOverrunTicks(t *testing.T) {
	var calls atomic.Int32
	sink := SinkFunc(func(context.Context, led.Frame) error {
		if calls.Add(1) == 1 {
			time.Sleep(30 * time.Millisecond)
		}
		return nil
	})
	loop, _ := newTestLoop(sink, testOptions(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, loop.Stats().SkippedTicks, uint64(5))
}
