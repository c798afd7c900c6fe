//go:build !js || !wasm
// +build !js !wasm

package vdom

// ElementRef is an opaque element handle outside the browser. Native hosts
// (headless rendering, tests) pass their own element values through it.
type ElementRef = any
