package strip

import "math"

// AspectRatio corrects for terminal cells being roughly twice as tall as wide.
const AspectRatio = 0.5

// CellDistance computes the distance from a cell to the ring center,
// accounting for terminal aspect ratio.
func CellDistance(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / AspectRatio
	return math.Sqrt(dx*dx + dy*dy)
}

// CellAngle computes the angle from center to a cell.
// Returns radians in [0, 2π), where 0=north, increasing clockwise.
func CellAngle(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / AspectRatio
	return NormalizeAngle(math.Atan2(dx, -dy))
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// AngleToLED maps a clockwise angle from north onto one of n LEDs, LED 0
// sitting at north.
func AngleToLED(angle float64, n int) int {
	if n <= 0 {
		return 0
	}
	step := 2 * math.Pi / float64(n)
	i := int(math.Floor(NormalizeAngle(angle+step/2) / step))
	return i % n
}

// GridCell returns the row and column of LED i in a row-major grid.
func GridCell(i, cols int) (row, col int) {
	return i / cols, i % cols
}
