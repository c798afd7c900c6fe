// Package builder provides a fluent API for constructing vdom trees.
//
//	builder.Div().Class("wrap").Children(
//		builder.Img().Src("/a.png").Alt("A").Build(),
//		builder.Button().Type("button").AriaLabel("Zoom image").Build(),
//	).Build()
package builder

import (
	"strings"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// ElementBuilder accumulates props and children for a single element.
type ElementBuilder struct {
	tag   string
	props vdom.Props
	kids  []*vdom.VNode
}

// El starts a builder for an arbitrary tag.
func El(tag string) *ElementBuilder {
	return &ElementBuilder{tag: tag, props: vdom.Props{}}
}

func Div() *ElementBuilder     { return El("div") }
func Span() *ElementBuilder    { return El("span") }
func P() *ElementBuilder       { return El("p") }
func A() *ElementBuilder       { return El("a") }
func Img() *ElementBuilder     { return El("img") }
func Button() *ElementBuilder  { return El("button") }
func Figure() *ElementBuilder  { return El("figure") }
func Main() *ElementBuilder    { return El("main") }
func H1() *ElementBuilder      { return El("h1") }
func Section() *ElementBuilder { return El("section") }

// Class appends to the class attribute; empty names are ignored.
func (b *ElementBuilder) Class(names ...string) *ElementBuilder {
	parts := make([]string, 0, len(names)+1)
	if existing, ok := b.props["class"].(string); ok && existing != "" {
		parts = append(parts, existing)
	}
	for _, n := range names {
		if n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) > 0 {
		b.props["class"] = strings.Join(parts, " ")
	}
	return b
}

// ID sets the id attribute
func (b *ElementBuilder) ID(id string) *ElementBuilder {
	if id != "" {
		b.props["id"] = id
	}
	return b
}

// Style sets the inline style attribute
func (b *ElementBuilder) Style(css string) *ElementBuilder {
	if css != "" {
		b.props["style"] = css
	}
	return b
}

// Key sets the reconciliation key
func (b *ElementBuilder) Key(key string) *ElementBuilder {
	b.props["key"] = key
	return b
}

// OnClick sets the click handler. Accepted handler shapes are func() and
// func(*vdom.Event).
func (b *ElementBuilder) OnClick(handler interface{}) *ElementBuilder {
	if handler != nil {
		b.props["onclick"] = handler
	}
	return b
}

// Text appends a text child
func (b *ElementBuilder) Text(text string) *ElementBuilder {
	b.kids = append(b.kids, vdom.NewText(text))
	return b
}

// Children appends child nodes; nil entries are skipped at build time.
func (b *ElementBuilder) Children(children ...*vdom.VNode) *ElementBuilder {
	b.kids = append(b.kids, children...)
	return b
}

// Build returns the finished node
func (b *ElementBuilder) Build() *vdom.VNode {
	node := vdom.NewElement(b.tag, b.props, b.kids...)
	if key, ok := b.props["key"].(string); ok {
		node.Key = key
	}
	return node
}
