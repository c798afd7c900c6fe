//go:build js && wasm
// +build js,wasm

package dom

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// DOMApplier applies VNode patches to the browser DOM. Patches with
// ParentID 0 target the applier's root container.
type DOMApplier struct {
	document      js.Value
	root          js.Value
	nodeMap       map[uint32]js.Value           // Maps node IDs to DOM nodes
	spans         map[uint32]uint32             // First ID after each inserted subtree
	eventHandlers map[uint32]map[string]js.Func // Maps node IDs to event handlers
}

// NewDOMApplier creates an applier rooted at document.body.
func NewDOMApplier() *DOMApplier {
	doc := js.Global().Get("document")
	return NewDOMApplierIn(doc.Get("body"))
}

// NewDOMApplierIn creates an applier whose top-level inserts go into root.
func NewDOMApplierIn(root js.Value) *DOMApplier {
	return &DOMApplier{
		document:      js.Global().Get("document"),
		root:          root,
		nodeMap:       make(map[uint32]js.Value),
		spans:         make(map[uint32]uint32),
		eventHandlers: make(map[uint32]map[string]js.Func),
	}
}

// Root returns the container top-level nodes are inserted into.
func (a *DOMApplier) Root() js.Value {
	return a.root
}

// Node returns the DOM node for a patch ID.
func (a *DOMApplier) Node(id uint32) (js.Value, bool) {
	n, ok := a.nodeMap[id]
	return n, ok
}

// Apply applies patches to transform the DOM
func (a *DOMApplier) Apply(patches []vdom.Patch) error {
	for _, patch := range patches {
		if err := a.applyPatch(patch); err != nil {
			return fmt.Errorf("failed to apply patch %v: %w", patch, err)
		}
	}
	return nil
}

// ApplyTree diffs prev against next and applies the result: prev nil
// mounts next into the root, next nil removes prev.
func (a *DOMApplier) ApplyTree(prev, next *vdom.VNode) error {
	return a.Apply(vdom.Diff(prev, next))
}

// applyPatch applies a single patch to the DOM
func (a *DOMApplier) applyPatch(patch vdom.Patch) error {
	switch patch.Op {
	case vdom.OpReplaceText:
		return a.replaceText(patch)
	case vdom.OpSetAttribute:
		return a.setAttribute(patch)
	case vdom.OpRemoveAttribute:
		return a.removeAttribute(patch)
	case vdom.OpRemoveNode:
		return a.removeNode(patch)
	case vdom.OpInsertNode:
		return a.insertNode(patch)
	case vdom.OpUpdateEvents:
		return a.updateEvents(patch)
	default:
		return fmt.Errorf("unknown patch operation: %v", patch.Op)
	}
}

// replaceText replaces the text content of a text node
func (a *DOMApplier) replaceText(patch vdom.Patch) error {
	node, ok := a.nodeMap[patch.NodeID]
	if !ok {
		return fmt.Errorf("text node %d not found", patch.NodeID)
	}
	node.Set("textContent", patch.Value)
	return nil
}

// setAttribute sets an attribute on an element
func (a *DOMApplier) setAttribute(patch vdom.Patch) error {
	node, ok := a.nodeMap[patch.NodeID]
	if !ok {
		return fmt.Errorf("node %d not found", patch.NodeID)
	}
	setAttr(node, patch.Key, patch.Value)
	return nil
}

func setAttr(node js.Value, key, value string) {
	switch key {
	case "class":
		node.Set("className", value)
	case "for":
		node.Set("htmlFor", value)
	case "checked", "selected", "disabled", "readonly", "required":
		node.Set(key, value == "true")
	default:
		node.Call("setAttribute", key, value)
	}
}

// removeAttribute removes an attribute from an element
func (a *DOMApplier) removeAttribute(patch vdom.Patch) error {
	node, ok := a.nodeMap[patch.NodeID]
	if !ok {
		return fmt.Errorf("node %d not found", patch.NodeID)
	}

	switch patch.Key {
	case "class":
		node.Set("className", "")
	case "checked", "selected", "disabled", "readonly", "required":
		node.Set(patch.Key, false)
	default:
		node.Call("removeAttribute", patch.Key)
	}
	return nil
}

// removeNode detaches a node and forgets its whole subtree
func (a *DOMApplier) removeNode(patch vdom.Patch) error {
	node, ok := a.nodeMap[patch.NodeID]
	if !ok {
		return fmt.Errorf("node %d not found", patch.NodeID)
	}

	parent := node.Get("parentNode")
	if !parent.IsNull() && !parent.IsUndefined() {
		parent.Call("removeChild", node)
	}

	end, ok := a.spans[patch.NodeID]
	if !ok {
		end = patch.NodeID + 1
	}
	for id := patch.NodeID; id < end; id++ {
		a.releaseHandlers(id)
		delete(a.nodeMap, id)
		delete(a.spans, id)
	}
	return nil
}

// insertNode builds the subtree of patch.Node and inserts it
func (a *DOMApplier) insertNode(patch vdom.Patch) error {
	if patch.Node == nil {
		return fmt.Errorf("insert patch missing node")
	}

	parent := a.root
	if patch.ParentID != 0 {
		p, ok := a.nodeMap[patch.ParentID]
		if !ok {
			return fmt.Errorf("parent node %d not found", patch.ParentID)
		}
		parent = p
	}

	// IDs are assigned in preorder, matching vdom.Diff
	domNode, nextID := a.createDOMTree(patch.Node, patch.NodeID)
	if domNode.IsUndefined() {
		return fmt.Errorf("cannot create node of kind %v", patch.Node.Kind)
	}
	a.spans[patch.NodeID] = nextID
	if debugLog != nil {
		debugLog("[DOM] inserted nodes", patch.NodeID, "to", nextID-1)
	}

	if before, ok := a.nodeMap[patch.BeforeID]; ok && patch.BeforeID != 0 {
		parent.Call("insertBefore", domNode, before)
	} else {
		parent.Call("appendChild", domNode)
	}
	return nil
}

// createDOMTree creates a DOM tree from a VNode tree, assigning IDs and attaching event handlers
func (a *DOMApplier) createDOMTree(vnode *vdom.VNode, startID uint32) (js.Value, uint32) {
	if vnode == nil {
		return js.Undefined(), startID
	}

	currentID := startID

	switch vnode.Kind {
	case vdom.KindText:
		textNode := a.document.Call("createTextNode", vnode.Text)
		a.nodeMap[currentID] = textNode
		return textNode, currentID + 1

	case vdom.KindElement:
		elem := a.document.Call("createElement", vnode.Tag)
		a.nodeMap[currentID] = elem

		for key, value := range vnode.Props {
			if key == "key" || key == "ref" || isEventKey(key) {
				continue
			}
			setAttr(elem, key, fmt.Sprintf("%v", value))
		}
		a.attachEventHandlers(currentID, elem, vnode.Props)
		if refVal, ok := vnode.Props["ref"]; ok {
			if refFn, ok := refVal.(func(vdom.ElementRef)); ok {
				refFn(elem)
			}
		}

		nextID := currentID + 1
		for i := range vnode.Kids {
			childDOM, newNextID := a.createDOMTree(&vnode.Kids[i], nextID)
			if !childDOM.IsUndefined() {
				elem.Call("appendChild", childDOM)
			}
			nextID = newNextID
		}
		return elem, nextID

	default:
		return js.Undefined(), currentID
	}
}

// updateEvents records the event bits; handlers stay bound from insertion
func (a *DOMApplier) updateEvents(patch vdom.Patch) error {
	node, ok := a.nodeMap[patch.NodeID]
	if !ok {
		return fmt.Errorf("node %d not found", patch.NodeID)
	}
	node.Call("setAttribute", "data-events", fmt.Sprintf("%d", patch.EventBits))
	return nil
}

func isEventKey(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n'
}

// attachEventHandlers attaches event handlers from VNode props to a DOM element
func (a *DOMApplier) attachEventHandlers(nodeID uint32, elem js.Value, props vdom.Props) {
	if props == nil {
		return
	}
	a.releaseHandlers(nodeID)

	handlers := make(map[string]js.Func)
	for key, value := range props {
		if !isEventKey(key) {
			continue
		}
		// onclick -> click
		eventName := strings.ToLower(key[2:])

		var jsFunc js.Func
		switch h := value.(type) {
		case func():
			jsFunc = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
				h()
				return nil
			})
		case func(*vdom.Event):
			jsFunc = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
				h(wrapEvent(eventName, args))
				return nil
			})
		case func(js.Value):
			jsFunc = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
				if len(args) > 0 {
					h(args[0])
				} else {
					h(js.Undefined())
				}
				return nil
			})
		case func(string):
			jsFunc = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
				var s string
				if len(args) > 0 {
					ev := args[0]
					switch eventName {
					case "input", "change":
						if tgt := ev.Get("target"); tgt.Truthy() {
							s = tgt.Get("value").String()
						}
					case "keydown", "keyup":
						s = ev.Get("key").String()
					default:
						s = ev.Get("type").String()
					}
				}
				h(s)
				return nil
			})
		default:
			continue
		}

		elem.Call("addEventListener", eventName, jsFunc)
		handlers[eventName] = jsFunc
	}

	if len(handlers) > 0 {
		a.eventHandlers[nodeID] = handlers
	}
}

// wrapEvent converts a browser event into a vdom.Event
func wrapEvent(typ string, args []js.Value) *vdom.Event {
	if len(args) == 0 {
		return vdom.NewEvent(typ, nil)
	}
	raw := args[0]
	ev := vdom.NewEvent(typ, func() { raw.Call("preventDefault") })
	if k := raw.Get("key"); k.Type() == js.TypeString {
		ev.Key = k.String()
	}
	if x := raw.Get("clientX"); x.Type() == js.TypeNumber {
		ev.ClientX = x.Float()
		ev.ClientY = raw.Get("clientY").Float()
	}
	return ev
}

func (a *DOMApplier) releaseHandlers(nodeID uint32) {
	handlers, ok := a.eventHandlers[nodeID]
	if !ok {
		return
	}
	elem := a.nodeMap[nodeID]
	for eventName, fn := range handlers {
		if elem.Truthy() {
			elem.Call("removeEventListener", eventName, fn)
		}
		fn.Release()
	}
	delete(a.eventHandlers, nodeID)
}

// Release drops every node and releases all event handler funcs.
func (a *DOMApplier) Release() {
	for id := range a.eventHandlers {
		a.releaseHandlers(id)
	}
	a.nodeMap = make(map[uint32]js.Value)
	a.spans = make(map[uint32]uint32)
}
