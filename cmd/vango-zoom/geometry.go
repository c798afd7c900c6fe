package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recera/vango-zoom/internal/imageinfo"
	"github.com/recera/vango-zoom/pkg/zoom"
)

// geometryResult is what the geometry command prints.
type geometryResult struct {
	Trigger  zoom.Rect  `json:"trigger" yaml:"trigger"`
	Viewport zoom.Rect  `json:"viewport" yaml:"viewport"`
	Margin   float64    `json:"margin" yaml:"margin"`
	Natural  *zoom.Size `json:"natural,omitempty" yaml:"natural,omitempty"`
	From     zoom.Rect  `json:"from" yaml:"from"`
	To       zoom.Rect  `json:"to" yaml:"to"`
	Scale    float64    `json:"scale" yaml:"scale"`
	Identity bool       `json:"identity" yaml:"identity"`
}

type geometryFlags struct {
	trigger  string
	viewport string
	margin   float64
	image    string
	natural  string
	maxScale float64
	output   string
}

func newGeometryCommand() *cobra.Command {
	var f geometryFlags

	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the from/to rectangles of a zoom",
		Long: `Computes where the overlay starts and ends for a trigger of the given
size and position in a viewport, the same way the widget does on activation.`,
		Example: `  vango-zoom geometry --trigger 100,50,200,150 --viewport 1000,800 --margin 20
  vango-zoom geometry --trigger 0,0,400,300 --viewport 1920,1080 --image public/images/harbour.jpg -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := computeGeometry(f)
			if err != nil {
				return err
			}
			return writeGeometry(cmd.OutOrStdout(), res, f.output)
		},
	}

	cmd.Flags().StringVar(&f.trigger, "trigger", "", "Trigger rect as top,left,width,height")
	cmd.Flags().StringVar(&f.viewport, "viewport", "1000,800", "Viewport as width,height")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "Zoom margin in pixels")
	cmd.Flags().StringVar(&f.image, "image", "", "Image file whose natural size caps the zoom")
	cmd.Flags().StringVar(&f.natural, "natural", "", "Natural size as width,height (instead of --image)")
	cmd.Flags().Float64Var(&f.maxScale, "max-scale", zoom.DefaultMaxScale, "Largest multiple of the natural size to zoom to")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "Output format: text, yaml or json")
	cmd.MarkFlagRequired("trigger")

	return cmd
}

func computeGeometry(f geometryFlags) (geometryResult, error) {
	t, err := parseFloats(f.trigger, 4)
	if err != nil {
		return geometryResult{}, fmt.Errorf("--trigger: %w", err)
	}
	v, err := parseFloats(f.viewport, 2)
	if err != nil {
		return geometryResult{}, fmt.Errorf("--viewport: %w", err)
	}
	if f.margin < 0 {
		return geometryResult{}, fmt.Errorf("--margin: negative margin %g", f.margin)
	}

	g := zoom.Geometry{Margin: f.margin, MaxScale: f.maxScale}
	switch {
	case f.image != "" && f.natural != "":
		return geometryResult{}, fmt.Errorf("--image and --natural are exclusive")
	case f.image != "":
		info, err := imageinfo.Probe(f.image)
		if err != nil {
			return geometryResult{}, err
		}
		g.Natural = info.Size
	case f.natural != "":
		n, err := parseFloats(f.natural, 2)
		if err != nil {
			return geometryResult{}, fmt.Errorf("--natural: %w", err)
		}
		g.Natural = zoom.Size{Width: n[0], Height: n[1]}
	}

	res := geometryResult{
		Trigger:  zoom.Rect{Top: t[0], Left: t[1], Width: t[2], Height: t[3]},
		Viewport: zoom.Rect{Width: v[0], Height: v[1]},
		Margin:   f.margin,
	}
	if g.Natural.Known() {
		n := g.Natural
		res.Natural = &n
	}

	rects := g.Compute(res.Trigger, res.Viewport)
	res.From, res.To = rects.From, rects.To
	res.Identity = rects.Identity()
	res.Scale = 1
	if !res.Trigger.Empty() {
		res.Scale = rects.To.Width / rects.From.Width
	}
	return res, nil
}

func writeGeometry(w io.Writer, res geometryResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		rect := func(r zoom.Rect) string {
			return fmt.Sprintf("top %g  left %g  %gx%g", r.Top, r.Left, r.Width, r.Height)
		}
		fmt.Fprintf(w, "from   %s\n", rect(res.From))
		fmt.Fprintf(w, "to     %s\n", rect(res.To))
		fmt.Fprintf(w, "scale  %g\n", res.Scale)
		if res.Identity {
			fmt.Fprintln(w, "the trigger already fills the viewport; zoom is in place")
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
}

// parseFloats reads n comma-separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		out[i] = v
	}
	return out, nil
}
