package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/vango-zoom/cmd/vango-zoom/internal/config"
	"github.com/recera/vango-zoom/cmd/vango-zoom/internal/ui"
	"github.com/recera/vango-zoom/internal/imageinfo"
	"github.com/recera/vango-zoom/pkg/zoom"
)

func newPreviewCommand() *cobra.Command {
	var controlled bool
	var image string
	var duration time.Duration
	var margin float64
	var easing string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Simulate a zoom widget in the terminal",
		Long: `Runs one widget on an in-memory page and draws the viewport, the trigger
and the zoomed overlay as it animates. Widget defaults come from the zoom
section of vango-zoom.yaml; flags override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				log.Printf("⚠️  Failed to load config: %v (using defaults)\n", err)
				cfg = config.DefaultConfig()
			}

			opts := cfg.Zoom.Options()
			if cmd.Flags().Changed("duration") {
				opts.TransitionDuration = duration
			}
			if cmd.Flags().Changed("margin") {
				opts.ZoomMargin = margin
			}
			if easing != "" {
				opts.Easing = easing
			}
			if image != "" {
				info, err := imageinfo.Probe(image)
				if err != nil {
					return err
				}
				opts.NaturalSize = info.Size
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			src := image
			if src == "" {
				src = "preview.png"
			}
			if err := ui.RunPreview(ui.Config{
				Options:    opts,
				Controlled: controlled,
				Src:        src,
				Alt:        "preview",
			}); err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&controlled, "controlled", false, "Drive the widget through an owner that can refuse changes")
	cmd.Flags().StringVar(&image, "image", "", "Image file whose natural size caps the zoom")
	cmd.Flags().DurationVar(&duration, "duration", zoom.DefaultTransitionDuration, "Transition duration")
	cmd.Flags().Float64Var(&margin, "margin", 0, "Zoom margin in pixels")
	cmd.Flags().StringVar(&easing, "easing", "", "Easing: linear, ease-in, ease-out, ease-in-out or smoothstep")

	return cmd
}
