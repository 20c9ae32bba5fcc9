package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderStripPanel wraps the LED view with a titled border.
// The strip drawing is done externally to keep ui free of led types.
func RenderStripPanel(width, height int, title, content string) string {
	body := StylePanelTitle.Render(title) + "\n" + content
	return clampLines(StylePanelBorder.Width(width-2).Height(height-2).Render(body), height)
}

// clampLines pads or truncates s to exactly n lines; lipgloss Height only
// sets a minimum.
func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// padRight fills the gap between left and right to width cells.
func padRight(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}
