package vdom

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
	// KindPortal represents a portal (render children elsewhere in DOM)
	KindPortal
)

// VNodeFlags are bitwise flags for VNode optimizations
type VNodeFlags uint8

const (
	// FlagStatic indicates this node and its children will never change
	FlagStatic VNodeFlags = 1 << iota
	// FlagHasKey indicates this node has a key for list reconciliation
	FlagHasKey
	// FlagHasRef indicates this node has a ref callback
	FlagHasRef
	// FlagHasEvents indicates this node has event listeners
	FlagHasEvents
)

// Props represents the properties/attributes of a VNode
type Props map[string]any

// VNode represents a virtual DOM node.
// Once built it is treated as immutable; renders produce a fresh tree.
type VNode struct {
	Kind VKind

	// Tag is the element tag name, only set for KindElement
	Tag string

	// Props holds attributes, event handlers ("on*"), "key" and "ref"
	Props Props

	Kids []VNode

	// Key is used for list reconciliation; empty means unkeyed
	Key string

	Flags VNodeFlags

	// Text content (KindText only)
	Text string

	// PortalTarget is the id of the element the children mount into (KindPortal only)
	PortalTarget string
}

// Event is what element event handlers of type func(*Event) receive.
type Event struct {
	Type string
	Key  string

	// ClientX and ClientY are pointer coordinates for mouse/pointer events
	ClientX float64
	ClientY float64

	prevent func()
	stopped bool
}

// NewEvent builds an Event whose PreventDefault calls prevent (may be nil).
func NewEvent(typ string, prevent func()) *Event {
	return &Event{Type: typ, prevent: prevent}
}

// PreventDefault cancels the browser's default action, if any.
func (e *Event) PreventDefault() {
	if e == nil {
		return
	}
	e.stopped = true
	if e.prevent != nil {
		e.prevent()
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e != nil && e.stopped
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	flags := VNodeFlags(0)

	if props != nil {
		for k := range props {
			if _, ok := eventBit(k); ok {
				flags |= FlagHasEvents
				break
			}
		}
		if _, hasKey := props["key"]; hasKey {
			flags |= FlagHasKey
		}
		if _, hasRef := props["ref"]; hasRef {
			flags |= FlagHasRef
		}
	}

	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
		Flags: flags,
	}
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: collect(children),
	}
}

// NewPortal creates a new portal VNode
func NewPortal(target string, children ...*VNode) *VNode {
	return &VNode{
		Kind:         KindPortal,
		PortalTarget: target,
		Kids:         collect(children),
	}
}

// collect converts child pointers to values, dropping nils
func collect(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// IsFragment returns true if this is a fragment node
func (v VNode) IsFragment() bool {
	return v.Kind == KindFragment
}

// IsPortal returns true if this is a portal node
func (v VNode) IsPortal() bool {
	return v.Kind == KindPortal
}

// HasFlag returns true if the specified flag is set
func (v VNode) HasFlag(flag VNodeFlags) bool {
	return v.Flags&flag != 0
}

// GetKey returns the key of this node, handling the Props map safely
func (v VNode) GetKey() string {
	if v.Props != nil {
		if key, ok := v.Props["key"].(string); ok {
			return key
		}
	}
	return v.Key
}

// Attr returns the string form of an attribute, or "" when absent.
func (v VNode) Attr(name string) string {
	if v.Props == nil {
		return ""
	}
	val, ok := v.Props[name]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return propString(val)
}

// Find walks the tree depth-first and returns the first node for which match
// returns true.
func (v *VNode) Find(match func(*VNode) bool) *VNode {
	if v == nil {
		return nil
	}
	if match(v) {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(match); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates all text descendants.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindText {
		return v.Text
	}
	out := ""
	for i := range v.Kids {
		out += v.Kids[i].TextContent()
	}
	return out
}
