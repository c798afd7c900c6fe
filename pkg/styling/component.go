package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ComponentStyle is a stylesheet whose class names are scoped by a hash of
// its content, so two widgets' ".content" rules never collide.
type ComponentStyle struct {
	// Hash is derived from the original CSS, e.g. "_1a2b3c"
	Hash string

	// names maps original class names to hashed class names
	// e.g., "wrap" -> "_1a2b3c_wrap"
	names map[string]string

	// CSS is the stylesheet with class selectors rewritten to hashed names
	CSS string

	// Source is the stylesheet as written
	Source string
}

// Style creates a new ComponentStyle with scoped class names
func Style(css string) *ComponentStyle {
	sum := sha256.Sum256([]byte(css))
	hash := "_" + hex.EncodeToString(sum[:])[:6]

	names := make(map[string]string)
	for _, className := range extractClassNames(css) {
		names[className] = hash + "_" + className
	}

	return &ComponentStyle{
		Hash:   hash,
		names:  names,
		CSS:    rewriteSelectors(css, names),
		Source: css,
	}
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanClasses calls fn with the byte range of every class selector name
// outside comments and declaration blocks.
func scanClasses(css string, fn func(start, end int)) {
	depth := 0
	for i := 0; i < len(css); i++ {
		switch c := css[i]; {
		case c == '/' && i+1 < len(css) && css[i+1] == '*':
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				return
			}
			i += end + 3
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '.' && depth == 0:
			start := i + 1
			end := start
			for end < len(css) && isNameByte(css[end]) {
				end++
			}
			// ".5em" style numbers are not selectors
			if end > start && !(css[start] >= '0' && css[start] <= '9') {
				fn(start, end)
			}
			i = end - 1
		}
	}
}

// extractClassNames returns the distinct class names used in selectors,
// sorted.
func extractClassNames(css string) []string {
	seen := make(map[string]bool)
	scanClasses(css, func(start, end int) {
		seen[css[start:end]] = true
	})

	classes := make([]string, 0, len(seen))
	for class := range seen {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

func rewriteSelectors(css string, names map[string]string) string {
	var b strings.Builder
	last := 0
	scanClasses(css, func(start, end int) {
		b.WriteString(css[last:start])
		b.WriteString(names[css[start:end]])
		last = end
	})
	b.WriteString(css[last:])
	return b.String()
}

// Class returns the hashed class name for the given original name
// Falls back to the original name for unknown classes
func (c *ComponentStyle) Class(name string) string {
	if c == nil {
		return name
	}
	if v, ok := c.names[name]; ok {
		return v
	}
	return name
}

// Classes returns multiple hashed class names separated by space
func (c *ComponentStyle) Classes(names ...string) string {
	scoped := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			scoped = append(scoped, c.Class(name))
		}
	}
	return strings.Join(scoped, " ")
}

// Has returns whether a class name exists in this component's styles
func (c *ComponentStyle) Has(name string) bool {
	if c == nil || c.names == nil {
		return false
	}
	_, ok := c.names[name]
	return ok
}

// GetHash returns the hash for this component's styles
func (c *ComponentStyle) GetHash() string {
	if c == nil {
		return ""
	}
	return c.Hash
}
