package builder

import (
	"strconv"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// === Form Attributes ===

// Disabled sets the disabled attribute
func (b *ElementBuilder) Disabled(disabled bool) *ElementBuilder {
	if disabled {
		b.props["disabled"] = true
	}
	return b
}

// Type sets the type attribute
func (b *ElementBuilder) Type(t string) *ElementBuilder {
	b.props["type"] = t
	return b
}

// === Link & Media Attributes ===

// Href sets the href attribute
func (b *ElementBuilder) Href(href string) *ElementBuilder {
	b.props["href"] = href
	return b
}

// Src sets the src attribute
func (b *ElementBuilder) Src(src string) *ElementBuilder {
	b.props["src"] = src
	return b
}

// Alt sets the alt attribute
func (b *ElementBuilder) Alt(alt string) *ElementBuilder {
	b.props["alt"] = alt
	return b
}

// Width sets the width attribute; zero leaves it unset
func (b *ElementBuilder) Width(width int) *ElementBuilder {
	if width > 0 {
		b.props["width"] = strconv.Itoa(width)
	}
	return b
}

// Height sets the height attribute; zero leaves it unset
func (b *ElementBuilder) Height(height int) *ElementBuilder {
	if height > 0 {
		b.props["height"] = strconv.Itoa(height)
	}
	return b
}

// Loading sets the loading attribute (lazy, eager)
func (b *ElementBuilder) Loading(loading string) *ElementBuilder {
	if loading != "" {
		b.props["loading"] = loading
	}
	return b
}

// === Accessibility ===

// Role sets the ARIA role
func (b *ElementBuilder) Role(role string) *ElementBuilder {
	b.props["role"] = role
	return b
}

// AriaLabel sets aria-label
func (b *ElementBuilder) AriaLabel(label string) *ElementBuilder {
	if label != "" {
		b.props["aria-label"] = label
	}
	return b
}

// Aria sets an arbitrary aria-* attribute
func (b *ElementBuilder) Aria(name, value string) *ElementBuilder {
	b.props["aria-"+name] = value
	return b
}

// TabIndex sets tabindex
func (b *ElementBuilder) TabIndex(i int) *ElementBuilder {
	b.props["tabindex"] = strconv.Itoa(i)
	return b
}

// === Data Attributes ===

// Data sets a data-* attribute
func (b *ElementBuilder) Data(key, value string) *ElementBuilder {
	b.props["data-"+key] = value
	return b
}

// === Additional Event Handlers ===

// OnKeyDown sets the onkeydown handler
func (b *ElementBuilder) OnKeyDown(handler interface{}) *ElementBuilder {
	b.props["onkeydown"] = handler
	return b
}

// OnPointerDown sets the onpointerdown handler
func (b *ElementBuilder) OnPointerDown(handler interface{}) *ElementBuilder {
	b.props["onpointerdown"] = handler
	return b
}

// OnLoad sets the onload handler (images)
func (b *ElementBuilder) OnLoad(handler func()) *ElementBuilder {
	if handler != nil {
		b.props["onload"] = handler
	}
	return b
}

// === Custom Attributes ===

// Attr sets a custom attribute
func (b *ElementBuilder) Attr(key string, value interface{}) *ElementBuilder {
	b.props[key] = value
	return b
}

// === Refs ===

// Ref sets a callback that receives the underlying element after creation
func (b *ElementBuilder) Ref(ref func(vdom.ElementRef)) *ElementBuilder {
	if ref != nil {
		b.props["ref"] = ref
	}
	return b
}
