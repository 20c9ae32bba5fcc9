package app

import (
	"time"

	"ble2wled.klederson.com/internal/led"
)

// FrameMsg carries one rendered frame from the animation loop.
type FrameMsg struct {
	Frame led.Frame
	At    time.Time
}

// TickMsg refreshes the beacon list and frame rate.
type TickMsg time.Time

// LoopDoneMsg reports that the animation loop returned.
type LoopDoneMsg struct {
	Err error
}
