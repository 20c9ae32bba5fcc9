package animation

import (
	"context"
	"errors"
	"sync"

	"ble2wled.klederson.com/internal/led"
)

// ErrSinkClosed is returned (possibly wrapped) by a sink that can no longer
// deliver frames. It is the only sink error that stops the loop.
var ErrSinkClosed = errors.New("output sink closed")

// Sink receives one finished frame per tick. Implementations own their
// retry policy; the loop never retries.
type Sink interface {
	Update(ctx context.Context, frame led.Frame) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, frame led.Frame) error

// Update calls f.
func (f SinkFunc) Update(ctx context.Context, frame led.Frame) error {
	return f(ctx, frame)
}

// Discard is a sink that drops every frame.
var Discard Sink = SinkFunc(func(context.Context, led.Frame) error { return nil })

// RecordingSink keeps every delivered frame. Used by tests and dry runs.
type RecordingSink struct {
	mu     sync.Mutex
	frames []led.Frame
	Err    error
}

// Update stores a copy of frame and returns r.Err.
func (r *RecordingSink) Update(_ context.Context, frame led.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame.Clone())
	return r.Err
}

// Frames returns the recorded frames.
func (r *RecordingSink) Frames() []led.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]led.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Last returns the most recent frame, or nil.
func (r *RecordingSink) Last() led.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}
