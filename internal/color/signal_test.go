package color

import (
	"fmt"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"

	"ble2wled.klederson.com/internal/led"
)

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    [3]uint8
	}{
		{0, 1, 1, [3]uint8{255, 0, 0}},
		{120, 1, 1, [3]uint8{0, 255, 0}},
		{240, 1, 1, [3]uint8{0, 0, 255}},
		{60, 1, 1, [3]uint8{255, 255, 0}},
		{360, 1, 1, [3]uint8{255, 0, 0}},
		{-120, 1, 1, [3]uint8{0, 0, 255}},
		{0, 0, 0.5, [3]uint8{128, 128, 128}},
		{0, 1, 0, [3]uint8{0, 0, 0}},
		{0, 1, 1.5, [3]uint8{255, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("h=%v s=%v v=%v", tt.h, tt.s, tt.v), func(t *testing.T) {
			r, g, b := HSVToRGB(tt.h, tt.s, tt.v)
			assert.Equal(t, tt.want, [3]uint8{r, g, b})
		})
	}
}

func TestEstimateDistance(t *testing.T) {
	assert.InDelta(t, 1.0, EstimateDistance(-59, -59, 2.0), 1e-9)
	assert.InDelta(t, 10.0, EstimateDistance(-79, -59, 2.0), 1e-9)
	assert.InDelta(t, 0.1, EstimateDistance(-39, -59, 2.0), 1e-9)
	assert.InDelta(t, 10.0, EstimateDistance(-99, -59, 4.0), 1e-9)
}

func TestEstimateDistanceMonotonic(t *testing.T) {
	for _, n := range []float64{1.5, 2.0, 3.3} {
		prev := EstimateDistance(-120, -59, n)
		for signal := -119; signal <= 10; signal++ {
			d := EstimateDistance(signal, -59, n)
			assert.Less(t, d, prev, "signal %d with n=%v", signal, n)
			prev = d
		}
	}
}

func TestGradientColor(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     colorful.Color
	}{
		{"negative clamps to near", -3, NearColor},
		{"below near", 0.3, NearColor},
		{"at near", 0.5, NearColor},
		{"midpoint", 5.25, colorful.Color{R: 1, G: 0.5, B: 0}},
		{"at far", 10, FarColor},
		{"beyond far", 42, FarColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradientColor(tt.distance, 0.5, 10)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
		})
	}
}

func TestGradientColorMonotonicGreen(t *testing.T) {
	prev := 2.0
	for d := 0.0; d <= 12; d += 0.25 {
		g := GradientColor(d, 0.5, 10).G
		assert.LessOrEqual(t, g, prev, "distance %v", d)
		prev = g
	}
}

func TestIdentityHueShift(t *testing.T) {
	a := IdentityHueShift("iBeacon:2686f39c-bada-4658-854a-a62e7e5e8b8d-1-0", 0.08)
	assert.Equal(t, a, IdentityHueShift("iBeacon:2686f39c-bada-4658-854a-a62e7e5e8b8d-1-0", 0.08))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, 0.08)
	assert.NotEqual(t, a, IdentityHueShift("iBeacon:2686f39c-bada-4658-854a-a62e7e5e8b8d-1-1", 0.08))
	assert.Zero(t, IdentityHueShift("anything", 0))
}

func TestIdentityHueShiftDistribution(t *testing.T) {
	const n = 2000
	buckets := make([]int, 10)
	for i := 0; i < n; i++ {
		shift := IdentityHueShift(fmt.Sprintf("beacon_%d", i), 1.0)
		idx := int(shift * 10)
		if idx == 10 {
			idx = 9
		}
		buckets[idx]++
	}
	for i, c := range buckets {
		assert.Greater(t, c, n/20, "bucket %d is starved", i)
	}
}

func TestBeaconColor(t *testing.T) {
	m := DefaultModel()
	m.HueShiftMax = 0

	assert.Equal(t, led.RGB{R: 255, G: 255}, m.BeaconColor("near", -40, 1), "near beacon is yellow")
	assert.Equal(t, led.RGB{R: 255}, m.BeaconColor("far", -100, 1), "far beacon is red")
	assert.Equal(t, led.RGB{R: 128}, m.BeaconColor("far", -100, 0.5))
	assert.Equal(t, led.Black, m.BeaconColor("far", -100, 0))
	assert.Equal(t, led.Black, m.BeaconColor("near", -40, -1))
}

func TestBeaconColorLifeScalesBrightness(t *testing.T) {
	m := DefaultModel()
	prev := -1
	for _, life := range []float64{0, 0.1, 0.25, 0.5, 0.75, 1} {
		c := m.BeaconColor("beacon_7", -70, life)
		peak := int(max(c.R, c.G, c.B))
		assert.GreaterOrEqual(t, peak, prev, "life %v", life)
		prev = peak
	}
	assert.Equal(t, 255, prev)
}

func TestBeaconColorHueShiftStaysWarm(t *testing.T) {
	m := DefaultModel()
	for i := 0; i < 50; i++ {
		c := m.BeaconColor(fmt.Sprintf("beacon_%d", i), -100, 1)
		assert.Equal(t, uint8(255), c.R)
		assert.Zero(t, c.B)
	}
	assert.Equal(t, m.BeaconColor("x", -65, 0.6), m.BeaconColor("x", -65, 0.6))
}
