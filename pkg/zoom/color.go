package zoom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with alpha, as used for the backdrop.
type Color struct {
	RGB   colorful.Color
	Alpha float64
}

// Transparent is fully transparent black, the CSS "transparent" keyword.
var Transparent = Color{}

// ParseColor accepts #rgb, #rrggbb, rgb(r, g, b), rgba(r, g, b, a) and
// "transparent".
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "transparent":
		return Transparent, nil
	case strings.HasPrefix(v, "#"):
		c, err := colorful.Hex(expandShortHex(v))
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return Color{RGB: c, Alpha: 1}, nil
	case strings.HasPrefix(v, "rgba(") && strings.HasSuffix(v, ")"):
		return parseRGBFunc(s, v[len("rgba("):len(v)-1], 4)
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		return parseRGBFunc(s, v[len("rgb("):len(v)-1], 3)
	}
	return Color{}, fmt.Errorf("parse color %q: unsupported format", s)
}

// MustParseColor is ParseColor for package-level constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func expandShortHex(v string) string {
	if len(v) != 4 {
		return v
	}
	return "#" + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2) + strings.Repeat(v[3:4], 2)
}

func parseRGBFunc(orig, body string, want int) (Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return Color{}, fmt.Errorf("parse color %q: want %d components, got %d", orig, want, len(parts))
	}

	var ch [3]float64
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || n < 0 || n > 255 {
			return Color{}, fmt.Errorf("parse color %q: bad channel %q", orig, strings.TrimSpace(parts[i]))
		}
		ch[i] = n / 255
	}

	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("parse color %q: bad alpha %q", orig, strings.TrimSpace(parts[3]))
		}
		alpha = a
	}

	return Color{RGB: colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, Alpha: alpha}, nil
}

// Blend interpolates toward to in RGB space; alpha is interpolated linearly.
func (c Color) Blend(to Color, t float64) Color {
	return Color{
		RGB:   c.RGB.BlendRgb(to.RGB, t).Clamped(),
		Alpha: lerp(c.Alpha, to.Alpha, t),
	}
}

// CSS renders the color as an rgba() value.
func (c Color) CSS() string {
	r, g, b := c.RGB.Clamped().RGB255()
	a := math.Round(math.Max(0, math.Min(1, c.Alpha))*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
}

func (c Color) String() string { return c.CSS() }
