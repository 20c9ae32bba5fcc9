package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BeaconRow is one line group in the beacon list.
type BeaconRow struct {
	ID       string
	Signal   int
	Distance float64
	Life     float64
	Color    string    // #rrggbb of the beacon's head pixel
	History  []float64 // recent signal readings, oldest first
}

// RenderBeaconList renders the beacon panel: id, signal, estimated distance,
// a life bar and a signal sparkline per beacon.
func RenderBeaconList(rows []BeaconRow, width, height int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}
	innerH := height - 2
	if innerH < 3 {
		innerH = 3
	}

	lines := []string{
		StylePanelTitle.Render(fmt.Sprintf("BEACONS [%d]", len(rows))),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}

	if len(rows) == 0 {
		lines = append(lines, "", StyleHelp.Render(" Waiting for telemetry..."))
	}
	for _, r := range rows {
		if len(lines)+3 > innerH {
			break
		}
		lines = append(lines, renderBeaconEntry(r, innerW)...)
	}

	content := strings.Join(clampSlice(lines, innerH), "\n")
	return clampLines(StylePanelBorder.Width(width-2).Height(innerH).Render(content), height)
}

func renderBeaconEntry(r BeaconRow, maxW int) []string {
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render("●")
	id := truncate(r.ID, maxW-3)
	line1 := " " + swatch + " " + StyleBeaconID.Render(id)

	info := fmt.Sprintf("   %4ddBm  ~%.1fm", r.Signal, r.Distance)
	barW := maxW - lipgloss.Width(info) - 3
	if barW < 4 {
		barW = 4
	}
	line2 := StyleBeaconInfo.Render(info) + " " + RenderLifeBar(r.Life, barW)

	sparkW := maxW - 3
	line3 := "   " + StyleHelp.Render(Sparkline(r.History, sparkW))

	return []string{line1, line2, line3}
}

// RenderLifeBar draws life in [0,1] as a bracketed bar of width cells.
func RenderLifeBar(life float64, width int) string {
	filled := LifeBarFill(life, width)
	full := lipgloss.NewStyle().Foreground(ColorAccent).Render(strings.Repeat("|", filled))
	empty := StyleSeparator.Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + full + empty + StyleHelp.Render("]")
}

// LifeBarFill returns how many of width cells are filled for life.
func LifeBarFill(life float64, width int) int {
	if life < 0 {
		life = 0
	}
	if life > 1 {
		life = 1
	}
	return int(math.Round(life * float64(width)))
}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	if len(values) > width {
		values = values[len(values)-width:]
	}
	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func truncate(s string, w int) string {
	if w < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func clampSlice(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
