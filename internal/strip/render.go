// Package strip draws LED frames in the terminal, either as the row-major
// grid of the physical layout or as a ring.
package strip

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ble2wled.klederson.com/internal/led"
)

// Glyphs for lit and dark LEDs.
const (
	LitGlyph  = "●"
	DarkGlyph = "·"
)

var styleDark = lipgloss.NewStyle().Foreground(lipgloss.Color("#303030"))

// View selects a layout.
type View int

const (
	ViewGrid View = iota
	ViewRing
)

func (v View) String() string {
	if v == ViewRing {
		return "ring"
	}
	return "grid"
}

// Next cycles to the other view.
func (v View) Next() View {
	if v == ViewGrid {
		return ViewRing
	}
	return ViewGrid
}

// Hex formats c as a #rrggbb color.
func Hex(c led.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Cell renders one LED.
func Cell(c led.RGB) string {
	if c == led.Black {
		return styleDark.Render(DarkGlyph)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c))).Render(LitGlyph)
}

// CheckGrid reports whether rows×cols covers exactly n LEDs.
func CheckGrid(n, rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows*cols != n {
		return fmt.Errorf("grid %dx%d does not match %d LEDs", rows, cols, n)
	}
	return nil
}

// RenderGrid lays the frame out row-major: LED 0 top-left, LED cols-1
// top-right. Pixels beyond rows×cols are not drawn.
func RenderGrid(frame led.Frame, rows, cols int) string {
	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(" ")
			}
			i := r*cols + c
			if i < len(frame) {
				b.WriteString(Cell(frame[i]))
			} else {
				b.WriteString(" ")
			}
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// RenderRing places the LEDs clockwise on a circle inside a width×height
// box, LED 0 at the top.
func RenderRing(frame led.Frame, width, height int) string {
	if width < 5 || height < 3 || len(frame) == 0 {
		return ""
	}

	centerX := width / 2
	centerY := height / 2
	radius := float64(min(centerX-1, int(float64(centerY-1)/AspectRatio)))
	if radius < 2 {
		radius = 2
	}

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		var b strings.Builder
		for col := 0; col < width; col++ {
			d := CellDistance(col, row, centerX, centerY)
			if d < radius-0.5 || d >= radius+0.5 {
				b.WriteString(" ")
				continue
			}
			i := AngleToLED(CellAngle(col, row, centerX, centerY), len(frame))
			b.WriteString(Cell(frame[i]))
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Render draws frame in the chosen view.
func Render(v View, frame led.Frame, rows, cols, width, height int) string {
	if v == ViewRing {
		return RenderRing(frame, width, height)
	}
	return RenderGrid(frame, rows, cols)
}
