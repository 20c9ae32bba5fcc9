package led

import "math"

// RGB is a single pixel color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Black is the color of an unlit pixel.
var Black = RGB{}

// Scale multiplies every channel by f and rounds half up.
// f is clamped to [0, 1].
func (c RGB) Scale(f float64) RGB {
	if f <= 0 {
		return Black
	}
	if f >= 1 {
		return c
	}
	return RGB{
		R: scaleChannel(c.R, f),
		G: scaleChannel(c.G, f),
		B: scaleChannel(c.B, f),
	}
}

// Max returns the channel-wise maximum of c and o.
func (c RGB) Max(o RGB) RGB {
	return RGB{
		R: max(c.R, o.R),
		G: max(c.G, o.G),
		B: max(c.B, o.B),
	}
}

func scaleChannel(v uint8, f float64) uint8 {
	return uint8(math.Floor(float64(v)*f + 0.5))
}

// Frame is one complete set of pixel colors for the strip.
type Frame []RGB

// NewFrame returns an all-black frame of n pixels.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Clone returns a copy that shares no memory with f.
func (f Frame) Clone() Frame {
	cp := make(Frame, len(f))
	copy(cp, f)
	return cp
}

// Blend composites c into pixel i using the brightest-wins rule.
// i is taken modulo the frame length.
func (f Frame) Blend(i int, c RGB) {
	n := len(f)
	if n == 0 {
		return
	}
	idx := Wrap(i, n)
	f[idx] = f[idx].Max(c)
}

// Brightness returns the mean channel value across the frame in [0, 255].
func (f Frame) Brightness() float64 {
	if len(f) == 0 {
		return 0
	}
	var sum int
	for _, p := range f {
		sum += (int(p.R) + int(p.G) + int(p.B)) / 3
	}
	return float64(sum) / float64(len(f))
}

// Wrap maps any integer index onto [0, n).
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
