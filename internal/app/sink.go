package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ble2wled.klederson.com/internal/led"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramSink delivers frames to a running tea program.
type ProgramSink struct {
	to  Sender
	now func() time.Time
}

// NewProgramSink wraps a tea program (or any Sender).
func NewProgramSink(to Sender) *ProgramSink {
	return &ProgramSink{to: to, now: time.Now}
}

// Update copies frame into a FrameMsg. The copy keeps the view independent
// of the loop's next frame.
func (s *ProgramSink) Update(_ context.Context, frame led.Frame) error {
	s.to.Send(FrameMsg{Frame: frame.Clone(), At: s.now()})
	return nil
}
