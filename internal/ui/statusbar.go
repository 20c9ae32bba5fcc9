package ui

import (
	"fmt"
	"time"
)

// Status is what the bottom bar shows.
type Status struct {
	Paused   bool
	Beacons  int
	FPS      float64
	Level    float64 // mean frame brightness in [0, 255]
	Elapsed  time.Duration
	ShowMQTT bool
	MQTTMsgs int
	MQTTRate float64
}

// StatusText formats the status fields without styling.
func StatusText(s Status) string {
	text := fmt.Sprintf(" Beacons: %d  FPS: %.1f  Level: %.0f%%", s.Beacons, s.FPS, s.Level/255*100)
	if s.ShowMQTT {
		text += fmt.Sprintf("  MQTT: %d msgs (%.1f/s)", s.MQTTMsgs, s.MQTTRate)
	}
	text += "  Elapsed: " + s.Elapsed.Truncate(time.Second).String()
	return text
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	state := StyleStatusRunning.Render("[RUNNING]")
	if s.Paused {
		state = StyleStatusPaused.Render("[PAUSED]")
	}
	content := state + StyleStatusBar.Render(StatusText(s))
	return StyleStatusBar.Width(width).Render(padRight(content, "", width-2))
}
