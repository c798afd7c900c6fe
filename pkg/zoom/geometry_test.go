package zoom

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestComputeRects_Scenario(t *testing.T) {
	trigger := Rect{Top: 100, Left: 50, Width: 200, Height: 150}
	viewport := Rect{Width: 1000, Height: 800}

	got := ComputeRects(trigger, viewport, 20)

	if got.From != trigger {
		t.Errorf("From = %+v, want trigger %+v", got.From, trigger)
	}
	want := Rect{Top: 40, Left: 20, Width: 960, Height: 720}
	if got.To != want {
		t.Errorf("To = %+v, want %+v", got.To, want)
	}
	if got.To.Left < 20 || got.To.Right() > 980 || got.To.Top < 20 || got.To.Bottom() > 780 {
		t.Errorf("To %+v escapes [20,980]x[20,780]", got.To)
	}
}

func TestComputeRects_AspectAndFit(t *testing.T) {
	viewport := Rect{Width: 1000, Height: 800}
	triggers := []Rect{
		{Top: 0, Left: 0, Width: 1, Height: 1},
		{Top: 10, Left: 10, Width: 200, Height: 150},
		{Top: 300, Left: 600, Width: 40, Height: 300},
		{Top: 5, Left: 5, Width: 350, Height: 20},
		{Top: 700, Left: 900, Width: 99.5, Height: 33.25},
	}
	margins := []float64{0, 20, 100, 250}

	for _, trigger := range triggers {
		for _, margin := range margins {
			got := ComputeRects(trigger, viewport, margin)
			inset := viewport.Inset(margin)
			if trigger.Width >= inset.Width || trigger.Height >= inset.Height {
				// a trigger that already fills the inset viewport is never shrunk
				if !got.Identity() {
					t.Errorf("trigger %+v margin %g: expected identity, got %+v", trigger, margin, got.To)
				}
				continue
			}

			if math.Abs(got.To.Aspect()-trigger.Aspect()) > eps*trigger.Aspect() {
				t.Errorf("trigger %+v margin %g: aspect %g, want %g", trigger, margin, got.To.Aspect(), trigger.Aspect())
			}
			if got.To.Left < inset.Left-eps || got.To.Right() > inset.Right()+eps ||
				got.To.Top < inset.Top-eps || got.To.Bottom() > inset.Bottom()+eps {
				t.Errorf("trigger %+v margin %g: To %+v outside %+v", trigger, margin, got.To, inset)
			}
			if got.To.Width < trigger.Width || got.To.Height < trigger.Height {
				t.Errorf("trigger %+v margin %g: To %+v shrank", trigger, margin, got.To)
			}
			// one dimension touches the inset edge
			if math.Abs(got.To.Width-inset.Width) > eps && math.Abs(got.To.Height-inset.Height) > eps {
				t.Errorf("trigger %+v margin %g: To %+v is not maximal", trigger, margin, got.To)
			}
		}
	}
}

func TestComputeRects_Degenerate(t *testing.T) {
	viewport := Rect{Width: 1000, Height: 800}
	tests := []struct {
		name     string
		trigger  Rect
		viewport Rect
		margin   float64
	}{
		{"zero width", Rect{Top: 10, Left: 10, Width: 0, Height: 100}, viewport, 0},
		{"zero height", Rect{Top: 10, Left: 10, Width: 100, Height: 0}, viewport, 0},
		{"negative size", Rect{Width: -10, Height: -10}, viewport, 0},
		{"margin eats viewport", Rect{Width: 10, Height: 10}, viewport, 400},
		{"empty viewport", Rect{Width: 10, Height: 10}, Rect{}, 0},
		{"NaN trigger", Rect{Top: math.NaN(), Width: 10, Height: 10}, viewport, 0},
		{"trigger fills viewport", Rect{Width: 1000, Height: 800}, viewport, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRects(tt.trigger, tt.viewport, tt.margin)
			if got.From != tt.trigger && !math.IsNaN(tt.trigger.Top) {
				t.Errorf("From changed: %+v", got.From)
			}
			if !got.Identity() && !math.IsNaN(tt.trigger.Top) {
				t.Errorf("expected identity, got %+v -> %+v", got.From, got.To)
			}
		})
	}
}

func TestGeometry_NaturalCeiling(t *testing.T) {
	trigger := Rect{Top: 100, Left: 50, Width: 200, Height: 150}
	viewport := Rect{Width: 1000, Height: 800}

	tests := []struct {
		name     string
		geometry Geometry
		want     Rect
	}{
		{
			name:     "natural size caps",
			geometry: Geometry{Margin: 20, Natural: Size{Width: 400, Height: 300}},
			want:     Rect{Top: 250, Left: 300, Width: 400, Height: 300},
		},
		{
			name:     "max scale stretches ceiling",
			geometry: Geometry{Margin: 20, Natural: Size{Width: 400, Height: 300}, MaxScale: 1.5},
			want:     Rect{Top: 175, Left: 200, Width: 600, Height: 450},
		},
		{
			name:     "viewport tighter than ceiling",
			geometry: Geometry{Margin: 20, Natural: Size{Width: 4000, Height: 3000}},
			want:     Rect{Top: 40, Left: 20, Width: 960, Height: 720},
		},
		{
			name:     "natural smaller than trigger never shrinks",
			geometry: Geometry{Natural: Size{Width: 100, Height: 75}},
			want:     trigger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.geometry.Compute(trigger, viewport)
			if got.To != tt.want {
				t.Errorf("To = %+v, want %+v", got.To, tt.want)
			}
		})
	}
}

func TestRect_Helpers(t *testing.T) {
	r := Rect{Top: 10, Left: 20, Width: 100, Height: 50}
	if r.Right() != 120 || r.Bottom() != 60 {
		t.Errorf("edges = %g, %g", r.Right(), r.Bottom())
	}
	if !r.ContainsPoint(20, 10) || !r.ContainsPoint(120, 60) || r.ContainsPoint(121, 30) {
		t.Error("ContainsPoint wrong")
	}
	mid := r.Lerp(Rect{Top: 30, Left: 40, Width: 300, Height: 150}, 0.5)
	if mid != (Rect{Top: 20, Left: 30, Width: 200, Height: 100}) {
		t.Errorf("Lerp = %+v", mid)
	}
	if (Rect{Width: 5}).Aspect() != 0 {
		t.Error("empty rect aspect should be 0")
	}
}
