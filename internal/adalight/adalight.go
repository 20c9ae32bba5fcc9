// Package adalight writes frames to a microcontroller-driven LED strip
// over a serial port using the Adalight framing.
package adalight

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"ble2wled.klederson.com/internal/animation"
	"ble2wled.klederson.com/internal/led"
)

// DefaultBaud is the rate most Adalight sketches are built with.
const DefaultBaud = 115200

// Header builds the 6-byte Adalight header for n pixels.
func Header(n int) []byte {
	count := n - 1
	if count < 0 {
		count = 0
	}
	hi, lo := byte(count>>8), byte(count)
	return []byte{'A', 'd', 'a', hi, lo, hi ^ lo ^ 0x55}
}

// Encode returns the header followed by the frame's RGB bytes.
func Encode(frame led.Frame) []byte {
	buf := make([]byte, 0, 6+3*len(frame))
	buf = append(buf, Header(len(frame))...)
	for _, c := range frame {
		buf = append(buf, c.R, c.G, c.B)
	}
	return buf
}

// Opener opens the serial device. Replaced in tests.
type Opener func(path string, mode *serial.Mode) (io.WriteCloser, error)

// OpenPort opens a real serial port.
func OpenPort(path string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(path, mode)
}

// Sink streams frames to an Adalight device. The port is opened lazily and
// reopened on the next frame after a write failure.
type Sink struct {
	path string
	mode *serial.Mode
	open Opener
	log  logrus.FieldLogger

	mu     sync.Mutex
	port   io.WriteCloser
	closed bool
}

// NewSink prepares a sink for the device at path, 8N1 at baud.
func NewSink(path string, baud int, open Opener, logger logrus.FieldLogger) *Sink {
	if open == nil {
		open = OpenPort
	}
	return &Sink{
		path: path,
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: open,
		log:  logger.WithField("component", "adalight"),
	}
}

// Update implements animation.Sink.
func (s *Sink) Update(_ context.Context, frame led.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("adalight %s: %w", s.path, animation.ErrSinkClosed)
	}
	if s.port == nil {
		port, err := s.open(s.path, s.mode)
		if err != nil {
			return fmt.Errorf("failed to open serial port %s: %w", s.path, err)
		}
		s.log.WithFields(logrus.Fields{"port": s.path, "baud": s.mode.BaudRate}).Info("serial port opened")
		s.port = port
	}

	if _, err := s.port.Write(Encode(frame)); err != nil {
		_ = s.port.Close()
		s.port = nil
		return fmt.Errorf("adalight write %s: %w", s.path, err)
	}
	return nil
}

// Close closes the port; later updates fail with animation.ErrSinkClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
