package styling

import (
	"strings"
	"testing"
)

func TestStyle(t *testing.T) {
	css := `
		/* .ignored { } */
		.wrap {
			position: relative;
			opacity: 0.95;
		}
		.trigger.btn:focus-visible, .wrapHidden > .btn {
			outline: 1px solid;
		}
	`

	style := Style(css)

	if !strings.HasPrefix(style.Hash, "_") || len(style.Hash) != 7 {
		t.Errorf("unexpected hash %q", style.Hash)
	}
	if style.Source != css {
		t.Error("source not kept")
	}

	want := []string{"btn", "trigger", "wrap", "wrapHidden"}
	got := extractClassNames(css)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("class names = %v, want %v", got, want)
	}

	for _, name := range want {
		scoped := style.Class(name)
		if scoped != style.Hash+"_"+name {
			t.Errorf("Class(%q) = %q", name, scoped)
		}
		if !strings.Contains(style.CSS, "."+scoped) {
			t.Errorf("CSS missing rewritten selector .%s", scoped)
		}
	}
	if strings.Contains(style.CSS, "0.95") == false {
		t.Error("declarations should be untouched")
	}
	if !strings.Contains(style.CSS, "/* .ignored { } */") {
		t.Error("comments should be untouched")
	}
}

func TestStyle_ClassFallbacks(t *testing.T) {
	style := Style(`.wrap { display: inline-flex; }`)

	tests := []struct {
		name  string
		style *ComponentStyle
		in    []string
		want  string
	}{
		{"unknown class", style, []string{"missing"}, "missing"},
		{"nil style", nil, []string{"wrap"}, "wrap"},
		{"classes skip empty", style, []string{"wrap", "", "extra"}, style.Class("wrap") + " extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.Classes(tt.in...); got != tt.want {
				t.Errorf("Classes(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if !style.Has("wrap") || style.Has("missing") {
		t.Error("Has reported wrong membership")
	}
	var nilStyle *ComponentStyle
	if nilStyle.GetHash() != "" || nilStyle.Has("wrap") {
		t.Error("nil style should be empty")
	}
}

func TestStyleRegistry(t *testing.T) {
	Reset()
	defer Reset()

	a := StyleWithRegistry(`.a { color: red; }`)
	b := StyleWithRegistry(`.b { color: blue; }`)
	StyleWithRegistry(`.a { color: red; }`)
	Register(nil)

	allCSS := GetAllCSS()
	if strings.Count(allCSS, "color: red") != 1 {
		t.Errorf("duplicate registration should be collapsed: %q", allCSS)
	}
	if !strings.Contains(allCSS, a.Class("a")) || !strings.Contains(allCSS, b.Class("b")) {
		t.Errorf("registry missing styles: %q", allCSS)
	}
	if GetAllCSS() != allCSS {
		t.Error("GetAllCSS should be deterministic")
	}

	node := StyleNode()
	if node.Tag != "style" || node.TextContent() != allCSS {
		t.Errorf("StyleNode = %+v", node)
	}
}
