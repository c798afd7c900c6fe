//go:build js && wasm
// +build js,wasm

package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/vango-zoom/pkg/reactive"
	"github.com/recera/vango-zoom/pkg/renderer/dom"
	"github.com/recera/vango-zoom/pkg/scheduler"
	"github.com/recera/vango-zoom/pkg/zoom"
)

// EnableLogging routes the debug logs of the scheduler, reactive, DOM
// applier and zoom packages to the browser console.
func EnableLogging() {
	logFn := func(args ...interface{}) {
		js.Global().Get("console").Call("log", args...)
	}

	scheduler.SetDebugLog(logFn)
	reactive.SetDebugLog(logFn)
	dom.SetDebugLog(logFn)
	zoom.SetDebugLog(logFn)
}

// Log logs a message to the console
func Log(args ...interface{}) {
	js.Global().Get("console").Call("log", args...)
}

// Logf logs a formatted message to the console
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	js.Global().Get("console").Call("log", msg)
}
