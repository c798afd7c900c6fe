package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// PatchOp is the kind of a DOM mutation.
type PatchOp uint8

const (
	OpReplaceText     PatchOp = 0x01
	OpSetAttribute    PatchOp = 0x02
	OpRemoveNode      PatchOp = 0x03
	OpInsertNode      PatchOp = 0x04
	OpUpdateEvents    PatchOp = 0x05
	OpRemoveAttribute PatchOp = 0x06
)

// Patch is a single DOM mutation. Node IDs are assigned in depth-first
// preorder starting at 1 for the previous root.
type Patch struct {
	Op        PatchOp
	NodeID    uint32
	ParentID  uint32 // insert: parent, 0 for the applier's root
	BeforeID  uint32 // insert: sibling to insert before, 0 appends
	Key       string
	Value     string
	Node      *VNode // insert: the subtree to create
	EventBits uint32
}

// String returns a human-readable representation of the patch
func (p Patch) String() string {
	switch p.Op {
	case OpReplaceText:
		return fmt.Sprintf("ReplaceText(node=%d, text=%q)", p.NodeID, p.Value)
	case OpSetAttribute:
		return fmt.Sprintf("SetAttribute(node=%d, key=%q, value=%q)", p.NodeID, p.Key, p.Value)
	case OpRemoveAttribute:
		return fmt.Sprintf("RemoveAttribute(node=%d, key=%q)", p.NodeID, p.Key)
	case OpRemoveNode:
		return fmt.Sprintf("RemoveNode(node=%d)", p.NodeID)
	case OpInsertNode:
		return fmt.Sprintf("InsertNode(parent=%d, before=%d)", p.ParentID, p.BeforeID)
	case OpUpdateEvents:
		return fmt.Sprintf("UpdateEvents(node=%d, bits=%x)", p.NodeID, p.EventBits)
	}
	return fmt.Sprintf("Unknown(op=%d)", p.Op)
}

// differ carries the patch list and ID assignment of one Diff call.
type differ struct {
	patches []Patch
	nextID  uint32
	ids     map[*VNode]uint32
}

// Diff computes the patches that turn prev into next. Children are paired
// by position; a child whose tag, kind or key changed is replaced rather
// than morphed. Widget trees keep a fixed shape between renders, so no
// reordering is attempted.
func Diff(prev, next *VNode) []Patch {
	d := &differ{nextID: 1, ids: make(map[*VNode]uint32)}
	d.node(prev, next, 0)
	return d.patches
}

func (d *differ) id(n *VNode) uint32 {
	if id, ok := d.ids[n]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.ids[n] = id
	return id
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

func (d *differ) remove(n *VNode) {
	d.emit(Patch{Op: OpRemoveNode, NodeID: d.id(n)})
}

func (d *differ) insert(n *VNode, parentID uint32) {
	d.emit(Patch{Op: OpInsertNode, NodeID: d.id(n), ParentID: parentID, Node: n})
}

func sameShape(a, b *VNode) bool {
	if a.Kind != b.Kind || a.GetKey() != b.GetKey() {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindPortal:
		return a.PortalTarget == b.PortalTarget
	}
	return true
}

func (d *differ) node(prev, next *VNode, parentID uint32) {
	switch {
	case prev == nil && next == nil:
		return
	case next == nil:
		d.remove(prev)
		return
	case prev == nil:
		d.insert(next, parentID)
		return
	case !sameShape(prev, next):
		d.remove(prev)
		d.insert(next, parentID)
		return
	}

	id := d.id(prev)
	d.ids[next] = id

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			d.emit(Patch{Op: OpReplaceText, NodeID: id, Value: next.Text})
		}
	case KindElement:
		d.props(id, prev.Props, next.Props)
		d.children(id, prev.Kids, next.Kids)
	case KindFragment, KindPortal:
		d.children(id, prev.Kids, next.Kids)
	}
}

func (d *differ) children(parentID uint32, prev, next []VNode) {
	n := len(prev)
	if len(next) > n {
		n = len(next)
	}
	for i := 0; i < n; i++ {
		var p, q *VNode
		if i < len(prev) {
			p = &prev[i]
		}
		if i < len(next) {
			q = &next[i]
		}
		d.node(p, q, parentID)
	}
}

// props emits attribute patches in sorted key order, so a given pair of
// trees always yields the same patch stream. Handlers are folded into one
// UpdateEvents patch.
func (d *differ) props(id uint32, prev, next Props) {
	var prevEvents, nextEvents uint32

	for _, key := range sortedKeys(prev) {
		if skipProp(key) {
			continue
		}
		if bit, ok := eventBit(key); ok {
			prevEvents |= bit
			continue
		}
		v, ok := next[key]
		switch {
		case !ok:
			d.emit(Patch{Op: OpRemoveAttribute, NodeID: id, Key: key})
		case propString(prev[key]) != propString(v):
			d.emit(Patch{Op: OpSetAttribute, NodeID: id, Key: key, Value: propString(v)})
		}
	}

	for _, key := range sortedKeys(next) {
		if skipProp(key) {
			continue
		}
		if bit, ok := eventBit(key); ok {
			nextEvents |= bit
			continue
		}
		if _, ok := prev[key]; !ok {
			d.emit(Patch{Op: OpSetAttribute, NodeID: id, Key: key, Value: propString(next[key])})
		}
	}

	if prevEvents != nextEvents {
		d.emit(Patch{Op: OpUpdateEvents, NodeID: id, EventBits: nextEvents})
	}
}

func skipProp(key string) bool { return key == "key" || key == "ref" }

func sortedKeys(props Props) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// eventBits assigns each DOM event a bit in the UpdateEvents mask.
var eventBits = map[string]uint32{
	"click":         1 << 0,
	"change":        1 << 1,
	"input":         1 << 2,
	"submit":        1 << 3,
	"focus":         1 << 4,
	"blur":          1 << 5,
	"keydown":       1 << 6,
	"keyup":         1 << 7,
	"mousedown":     1 << 8,
	"mouseup":       1 << 9,
	"mousemove":     1 << 10,
	"pointerdown":   1 << 11,
	"load":          1 << 12,
	"transitionend": 1 << 13,
}

// eventBit reports whether key is a handler prop ("onclick", "onClick")
// and its bit. Unknown events share the top bit.
func eventBit(key string) (uint32, bool) {
	if len(key) <= 2 || key[0] != 'o' || key[1] != 'n' {
		return 0, false
	}
	if bit, ok := eventBits[strings.ToLower(key[2:])]; ok {
		return bit, true
	}
	return 1 << 31, true
}

func propString(v any) string {
	return fmt.Sprintf("%v", v)
}
