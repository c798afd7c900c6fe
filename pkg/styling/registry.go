package styling

import (
	"sort"
	"strings"
	"sync"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// StyleRegistry collects all component styles for injection
type StyleRegistry struct {
	mu     sync.RWMutex
	styles map[string]*ComponentStyle
}

var (
	globalRegistry = &StyleRegistry{
		styles: make(map[string]*ComponentStyle),
	}
)

// Register adds a component style to the global registry
func Register(style *ComponentStyle) {
	if style == nil || style.CSS == "" {
		return
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	key := style.CSS
	if style.Hash != "" {
		key = style.Hash
	}

	globalRegistry.styles[key] = style
}

// GetAllCSS returns all registered CSS as a single string, ordered by hash
// so repeated renders are byte-identical.
func GetAllCSS() string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	keys := make([]string, 0, len(globalRegistry.styles))
	for k := range globalRegistry.styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cssBuilder strings.Builder
	for _, k := range keys {
		cssBuilder.WriteString(globalRegistry.styles[k].CSS)
		cssBuilder.WriteString("\n")
	}

	return cssBuilder.String()
}

// StyleNode returns a <style> element holding every registered stylesheet.
func StyleNode() *vdom.VNode {
	return vdom.NewElement("style", vdom.Props{"data-vango-styles": "true"}, vdom.NewText(GetAllCSS()))
}

// Reset clears all registered styles (useful for testing)
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.styles = make(map[string]*ComponentStyle)
}

// StyleWithRegistry creates a new ComponentStyle and registers it
func StyleWithRegistry(css string) *ComponentStyle {
	style := Style(css)
	Register(style)
	return style
}
