//go:build !js || !wasm
// +build !js !wasm

package dom

import (
	"errors"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// ErrNoDOM is returned by the applier outside the browser.
var ErrNoDOM = errors.New("DOM applier is only available in WASM builds")

// SetDebugLog sets the debug logging function (stub)
func SetDebugLog(fn func(args ...interface{})) {}

// DOMApplier applies VNode patches to the browser DOM (stub for non-WASM builds)
type DOMApplier struct{}

// NewDOMApplier creates a new DOM applier (stub)
func NewDOMApplier() *DOMApplier {
	return &DOMApplier{}
}

// Apply applies patches to transform the DOM (stub)
func (a *DOMApplier) Apply(patches []vdom.Patch) error {
	return ErrNoDOM
}

// ApplyTree diffs and applies (stub)
func (a *DOMApplier) ApplyTree(prev, next *vdom.VNode) error {
	return ErrNoDOM
}

// Release is a no-op outside the browser.
func (a *DOMApplier) Release() {}
