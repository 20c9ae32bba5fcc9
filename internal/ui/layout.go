package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the strip panel and beacon list horizontally,
// with menu bar on top and status bar and help line at the bottom.
func ComposeLayout(menuBar, stripPanel, beaconList, statusBar, help string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, stripPanel, beaconList)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar, help)
}
