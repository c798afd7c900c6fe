package zoom_test

import (
	"sort"
	"testing"
	"time"

	"github.com/recera/vango-zoom/pkg/zoom"
	"github.com/recera/vango-zoom/pkg/zoom/headless"
)

func newBenchSurface(tb testing.TB) (*headless.Document, *zoom.Surface) {
	tb.Helper()
	doc := headless.New(1000, 800)
	s, err := zoom.NewUncontrolled(doc, zoom.Options{ZoomMargin: 20}, image())
	if err != nil {
		tb.Fatalf("NewUncontrolled: %v", err)
	}
	tb.Cleanup(s.Close)
	doc.Layout(s, triggerRect)
	s.Start()
	return doc, s
}

// TestFrameLatencyP95 keeps a single animation frame (easing, geometry,
// overlay diff and apply) well inside a 60Hz frame budget.
func TestFrameLatencyP95(t *testing.T) {
	const cycles = 20
	doc, s := newBenchSurface(t)

	var latencies []time.Duration
	for i := 0; i < cycles; i++ {
		click(t, s)
		for s.State() != zoom.Idle {
			if s.State() == zoom.Active {
				doc.Press("Escape")
				continue
			}
			start := time.Now()
			doc.Clock().Advance(frame)
			latencies = append(latencies, time.Since(start))
		}
	}

	if len(latencies) == 0 {
		t.Fatal("no frames ran")
	}
	p95 := percentile(latencies, 95)
	if p95 > 4*time.Millisecond {
		t.Errorf("frame latency P95 is %v, expected <4ms", p95)
	} else {
		t.Logf("✓ frame latency P95: %v over %d frames", p95, len(latencies))
	}
	t.Logf("  P50: %v, P99: %v", percentile(latencies, 50), percentile(latencies, 99))
}

func BenchmarkGeometryCompute(b *testing.B) {
	g := zoom.Geometry{Margin: 20, Natural: zoom.Size{Width: 4000, Height: 3000}, MaxScale: 1}
	viewport := zoom.Rect{Width: 1920, Height: 1080}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.Compute(triggerRect, viewport)
	}
}

func BenchmarkEasing(b *testing.B) {
	for _, name := range []string{"linear", "ease-out", "ease-in-out"} {
		ease, err := zoom.EasingByName(name)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = ease(float64(i%1000) / 1000)
			}
		})
	}
}

// BenchmarkZoomCycle measures a full open and close.
func BenchmarkZoomCycle(b *testing.B) {
	doc, s := newBenchSurface(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetZoomed(true)
		settle(doc)
		s.SetZoomed(false)
		settle(doc)
	}
	b.StopTimer()

	if s.State() != zoom.Idle {
		b.Fatalf("state after cycles = %s", s.State())
	}
}

func percentile(latencies []time.Duration, p int) time.Duration {
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
