// Package wled drives WLED controllers: realtime UDP frames, the JSON HTTP
// API, and mDNS discovery of controllers on the local network.
package wled

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"ble2wled.klederson.com/internal/animation"
	"ble2wled.klederson.com/internal/led"
)

// WLED realtime UDP protocol constants.
const (
	DefaultPort            = 21324
	DefaultRealtimeTimeout = 2

	protocolDRGB  = 2
	protocolDNRGB = 4

	maxDRGBPixels  = 490
	maxDNRGBPixels = 489
)

// Packets encodes a frame as realtime UDP datagrams. Frames up to 490 pixels
// fit a single DRGB packet; longer frames are split into DNRGB packets that
// carry their start index. timeout is the number of seconds WLED stays in
// realtime mode after the last packet.
func Packets(frame led.Frame, timeout uint8) [][]byte {
	if len(frame) <= maxDRGBPixels {
		pkt := make([]byte, 0, 2+3*len(frame))
		pkt = append(pkt, protocolDRGB, timeout)
		return [][]byte{appendPixels(pkt, frame)}
	}

	var out [][]byte
	for start := 0; start < len(frame); start += maxDNRGBPixels {
		end := min(start+maxDNRGBPixels, len(frame))
		pkt := make([]byte, 0, 4+3*(end-start))
		pkt = append(pkt, protocolDNRGB, timeout, byte(start>>8), byte(start))
		out = append(out, appendPixels(pkt, frame[start:end]))
	}
	return out
}

func appendPixels(pkt []byte, pixels led.Frame) []byte {
	for _, c := range pixels {
		pkt = append(pkt, c.R, c.G, c.B)
	}
	return pkt
}

// UDPSink sends frames to a WLED controller over the realtime UDP protocol.
// Delivery is fire-and-forget; only local socket errors are reported.
type UDPSink struct {
	addr    string
	timeout uint8

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewUDPSink dials host:port. timeout is the realtime-mode hold in seconds.
func NewUDPSink(host string, port int, timeout uint8) (*UDPSink, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket to %s: %w", addr, err)
	}
	return &UDPSink{addr: addr, timeout: timeout, conn: conn}, nil
}

// Update implements animation.Sink.
func (s *UDPSink) Update(_ context.Context, frame led.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("udp %s: %w", s.addr, animation.ErrSinkClosed)
	}
	for _, pkt := range Packets(frame, s.timeout) {
		if _, err := s.conn.Write(pkt); err != nil {
			return fmt.Errorf("udp %s: %w", s.addr, err)
		}
	}
	return nil
}

// Addr returns the controller address.
func (s *UDPSink) Addr() string {
	return s.addr
}

// Close releases the socket. Later updates fail with animation.ErrSinkClosed.
func (s *UDPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
