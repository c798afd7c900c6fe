package zoom

import "math"

// Rect is a box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return !(r.Width > 0 && r.Height > 0) }

// Aspect returns width/height, or 0 for an empty rect.
func (r Rect) Aspect() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width / r.Height
}

// ContainsPoint reports whether (x, y) lies inside r, edges included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Inset shrinks r by m on every side.
func (r Rect) Inset(m float64) Rect {
	return Rect{Top: r.Top + m, Left: r.Left + m, Width: r.Width - 2*m, Height: r.Height - 2*m}
}

// Lerp interpolates every field of r toward to by t.
func (r Rect) Lerp(to Rect, t float64) Rect {
	return Rect{
		Top:    lerp(r.Top, to.Top, t),
		Left:   lerp(r.Left, to.Left, t),
		Width:  lerp(r.Width, to.Width, t),
		Height: lerp(r.Height, to.Height, t),
	}
}

// Size is a pixel size, typically an image's natural dimensions.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Known reports whether both dimensions are set.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

// Rects is the pair of endpoints of one activation.
type Rects struct {
	From Rect `json:"from" yaml:"from"`
	To   Rect `json:"to" yaml:"to"`
}

// Identity reports whether the overlay does not move.
func (r Rects) Identity() bool { return r.From == r.To }

// DefaultMaxScale caps the zoomed size at the natural image size.
const DefaultMaxScale = 1.0

// Geometry computes activation rectangles.
//
// Natural and MaxScale bound the zoomed size to Natural*MaxScale when the
// natural size is known; otherwise only the viewport bounds it.
type Geometry struct {
	Margin   float64
	Natural  Size
	MaxScale float64
}

// ComputeRects fits the trigger into the viewport inset by margin.
func ComputeRects(trigger, viewport Rect, margin float64) Rects {
	return Geometry{Margin: margin}.Compute(trigger, viewport)
}

// Compute returns From equal to trigger and To as the largest centered rect
// with the trigger's aspect ratio that fits the inset viewport. To never
// shrinks below From and degenerate input yields From == To.
func (g Geometry) Compute(trigger, viewport Rect) Rects {
	identity := Rects{From: trigger, To: trigger}
	if trigger.Empty() || isBad(trigger) || isBad(viewport) {
		return identity
	}

	margin := math.Max(g.Margin, 0)
	avail := viewport.Inset(margin)
	if avail.Empty() {
		return identity
	}

	// scale is num/den; keeping the pair lets the limiting edge come out exact
	num, den := avail.Width, trigger.Width
	limit := func(n, d float64) {
		if n/d < num/den {
			num, den = n, d
		}
	}
	limit(avail.Height, trigger.Height)
	if g.Natural.Known() {
		maxScale := g.MaxScale
		if maxScale <= 0 {
			maxScale = DefaultMaxScale
		}
		limit(g.Natural.Width*maxScale, trigger.Width)
		limit(g.Natural.Height*maxScale, trigger.Height)
	}
	if num/den <= 1 {
		return identity
	}

	w := trigger.Width * num / den
	h := trigger.Height * num / den
	return Rects{
		From: trigger,
		To: Rect{
			Top:    viewport.Top + (viewport.Height-h)/2,
			Left:   viewport.Left + (viewport.Width-w)/2,
			Width:  w,
			Height: h,
		},
	}
}

func isBad(r Rect) bool {
	for _, v := range [...]float64{r.Top, r.Left, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
