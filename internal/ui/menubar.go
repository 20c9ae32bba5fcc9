package ui

import (
	"fmt"

	"ble2wled.klederson.com/internal/config"
)

// RenderMenuBar renders the top bar: app name, telemetry source and view.
func RenderMenuBar(width int, source, view string, paused bool) string {
	title := StyleMenuKey.Render(fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion))
	info := StyleMenuLabel.Render(fmt.Sprintf("  source: %s  view: %s", source, view))

	status := StyleStatusRunning.Render("LIVE")
	if paused {
		status = StyleStatusPaused.Render("PAUSED")
	}

	return StyleMenuBar.Width(width).Render(padRight(title+info, status+" ", width-2))
}
