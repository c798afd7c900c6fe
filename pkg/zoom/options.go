package zoom

import (
	"errors"
	"fmt"
	"time"

	"github.com/recera/vango-zoom/pkg/scheduler"
)

// Option defaults.
const (
	DefaultOpenText            = "Zoom image"
	DefaultCloseText           = "Unzoom image"
	DefaultOverlayBgColorStart = "rgba(255, 255, 255, 0)"
	DefaultOverlayBgColorEnd   = "rgba(255, 255, 255, 0.95)"
	DefaultTransitionDuration  = 300 * time.Millisecond
	DefaultPortalEl            = "body"
)

// Options configures one widget. Zero values take the defaults above.
type Options struct {
	// IsZoomed is the initial flag value.
	IsZoomed bool
	// OnZoomChange is told about every requested flag change.
	OnZoomChange func(zoomed bool)

	OpenText  string
	CloseText string

	OverlayBgColorStart string
	OverlayBgColorEnd   string

	TransitionDuration time.Duration
	ZoomMargin         float64

	// PortalEl is the id of the element the overlay mounts into.
	PortalEl string
	// ScrollableEl is watched for scroll-dismiss; nil means the window.
	ScrollableEl EventTarget

	Easing          string
	ScrollThreshold float64
	MaxScale        float64
	NaturalSize     Size

	// Scheduler re-renders the surface when its reactive state changes.
	// Optional.
	Scheduler *scheduler.Scheduler

	OnStateChange func(State)
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.OpenText == "" {
		o.OpenText = DefaultOpenText
	}
	if o.CloseText == "" {
		o.CloseText = DefaultCloseText
	}
	if o.OverlayBgColorStart == "" {
		o.OverlayBgColorStart = DefaultOverlayBgColorStart
	}
	if o.OverlayBgColorEnd == "" {
		o.OverlayBgColorEnd = DefaultOverlayBgColorEnd
	}
	if o.TransitionDuration == 0 {
		o.TransitionDuration = DefaultTransitionDuration
	}
	if o.PortalEl == "" {
		o.PortalEl = DefaultPortalEl
	}
	if o.Easing == "" {
		o.Easing = DefaultEasing
	}
	if o.ScrollThreshold == 0 {
		o.ScrollThreshold = DefaultScrollThreshold
	}
	if o.MaxScale == 0 {
		o.MaxScale = DefaultMaxScale
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()

	if _, err := ParseColor(o.OverlayBgColorStart); err != nil {
		return &ConfigError{Field: "OverlayBgColorStart", Err: err}
	}
	if _, err := ParseColor(o.OverlayBgColorEnd); err != nil {
		return &ConfigError{Field: "OverlayBgColorEnd", Err: err}
	}
	if o.TransitionDuration < 0 {
		return &ConfigError{Field: "TransitionDuration", Err: fmt.Errorf("negative duration %s", o.TransitionDuration)}
	}
	if o.ZoomMargin < 0 {
		return &ConfigError{Field: "ZoomMargin", Err: fmt.Errorf("negative margin %g", o.ZoomMargin)}
	}
	if _, err := EasingByName(o.Easing); err != nil {
		return &ConfigError{Field: "Easing", Err: err}
	}
	if o.ScrollThreshold < 0 {
		return &ConfigError{Field: "ScrollThreshold", Err: errors.New("negative threshold")}
	}
	if o.MaxScale < 0 {
		return &ConfigError{Field: "MaxScale", Err: errors.New("negative scale")}
	}
	return nil
}

// resolved is Options after parsing.
type resolved struct {
	Options
	bgStart Color
	bgEnd   Color
	easing  Easing
}

func (o Options) resolve() (resolved, error) {
	if err := o.Validate(); err != nil {
		return resolved{}, err
	}
	o = o.withDefaults()
	r := resolved{Options: o}
	r.bgStart, _ = ParseColor(o.OverlayBgColorStart)
	r.bgEnd, _ = ParseColor(o.OverlayBgColorEnd)
	r.easing, _ = EasingByName(o.Easing)
	return r, nil
}
