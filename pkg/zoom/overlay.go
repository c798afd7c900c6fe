package zoom

import (
	"math"
	"strconv"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/vex/builder"
)

// Overlay part names, rendered as data-zoom-part.
const (
	PartOverlay  = "overlay"
	PartBackdrop = "backdrop"
	PartContent  = "content"
	PartClose    = "close"
	PartTrigger  = "trigger"
)

// overlay is the activated subtree: a portal holding the backdrop and the
// zoomed copy of the content. It is the Machine's Stage.
//
// The tree keeps one shape for its whole lifetime so diffs between frames
// are attribute updates only.
type overlay struct {
	s      *Surface
	portal Portal
	prev   *vdom.VNode
}

func (o *overlay) TriggerRect() Rect {
	el := o.s.doc.Element(o.s.id)
	if el == nil {
		return Rect{}
	}
	return el.BoundingRect()
}

func (o *overlay) Mount(f Frame) error {
	next := o.view(f)
	if err := o.portal.Apply(nil, next); err != nil {
		return err
	}
	o.prev = next
	return nil
}

func (o *overlay) Paint(f Frame) {
	if o.prev == nil {
		return
	}
	next := o.view(f)
	if err := o.portal.Apply(o.prev, next); err != nil {
		if debugLog != nil {
			debugLog("[Zoom] paint failed:", err.Error())
		}
		return
	}
	o.prev = next
}

func (o *overlay) Unmount() {
	if o.prev == nil {
		return
	}
	if err := o.portal.Apply(o.prev, nil); err != nil && debugLog != nil {
		debugLog("[Zoom] unmount failed:", err.Error())
	}
	o.prev = nil
}

func (o *overlay) FocusClose() {
	if el := o.portal.Part(PartClose); el != nil {
		el.Focus()
	}
}

func (o *overlay) Contains(target Element) bool {
	if target == nil {
		return false
	}
	content := o.portal.Part(PartContent)
	return content != nil && content.Contains(target)
}

// Tree returns the last rendered overlay tree, nil when unmounted.
func (o *overlay) Tree() *vdom.VNode { return o.prev }

func (o *overlay) view(f Frame) *vdom.VNode {
	opts := o.s.opts
	return builder.Div().
		Class(Class("overlay")).
		Data("zoom-part", PartOverlay).
		Role("dialog").
		Aria("modal", "true").
		Children(
			builder.Div().
				Class(Class("backdrop")).
				Data("zoom-part", PartBackdrop).
				Style("background-color:"+f.Background.CSS()).
				Build(),
			builder.Div().
				Class(Class("content")).
				Data("zoom-part", PartContent).
				Style(rectStyle(f.Rect)).
				Children(
					o.s.content,
					builder.Button().
						Class(Class("close"), Class("btn")).
						Data("zoom-part", PartClose).
						Type("button").
						AriaLabel(opts.CloseText).
						OnClick(o.s.handleCloseClick).
						Build(),
				).
				Build(),
		).
		Build()
}

func rectStyle(r Rect) string {
	return "top:" + px(r.Top) + ";left:" + px(r.Left) + ";width:" + px(r.Width) + ";height:" + px(r.Height)
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "px"
}
