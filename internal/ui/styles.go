package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorAccent     = lipgloss.Color("#FFB000")
	ColorText       = lipgloss.Color("#E0E0E0")
	ColorMuted      = lipgloss.Color("#8A8A8A")
	ColorDim        = lipgloss.Color("#444444")
	ColorBar        = lipgloss.Color("#1E1A12")
	ColorBorderNorm = lipgloss.Color("#6B5A2E")
	ColorOK         = lipgloss.Color("#7CFC00")
	ColorWarning    = lipgloss.Color("#FFAA00")
	ColorError      = lipgloss.Color("#FF3300")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(ColorBar).
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorText)

	StyleStatusBar = lipgloss.NewStyle().
			Background(ColorBar).
			Foreground(ColorText).
			Padding(0, 1)

	StyleStatusRunning = lipgloss.NewStyle().
				Foreground(ColorOK).
				Bold(true)

	StyleStatusPaused = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderNorm)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 1)

	StyleBeaconID = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleBeaconInfo = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleSeparator = lipgloss.NewStyle().
			Foreground(ColorDim)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
