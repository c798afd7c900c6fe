package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/recera/vango-zoom/cmd/vango-zoom/internal/config"
	"github.com/recera/vango-zoom/pkg/renderer/html"
	"github.com/recera/vango-zoom/pkg/styling"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/vex/builder"
	"github.com/recera/vango-zoom/pkg/zoom"
	"github.com/recera/vango-zoom/pkg/zoom/headless"
)

const reloadPath = "/__vango/reload"

const bootScript = `const go = new Go();
WebAssembly.instantiateStreaming(fetch("/main.wasm"), go.importObject)
  .then((r) => go.run(r.instance))
  .catch((err) => console.error("[vango-zoom] wasm failed:", err));`

const reloadScript = `(() => {
  const ws = new WebSocket("ws://" + location.host + "` + reloadPath + `");
  ws.onopen = () => ws.send(JSON.stringify({ type: "HELLO" }));
  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (msg.type === "RELOAD") location.reload();
    if (msg.type === "ERROR") console.error("[vango-zoom]", msg.message);
  };
})();`

// sizeProber returns the natural size of a served image path.
type sizeProber func(src string) (zoom.Size, bool)

// renderPage builds the demo gallery. Every image is a server-rendered
// trigger inside a data-zoom-mount host that the WASM client takes over.
func renderPage(cfg *config.Config, probe sizeProber, debug bool) (string, error) {
	figures := make([]*vdom.VNode, 0, len(cfg.Images))
	for _, img := range cfg.Images {
		fig, err := renderFigure(cfg, img, probe)
		if err != nil {
			return "", fmt.Errorf("image %s: %w", img.Src, err)
		}
		figures = append(figures, fig)
	}

	bodyKids := []*vdom.VNode{
		builder.Main().
			Children(
				builder.H1().Text(cfg.Dev.Title).Build(),
				builder.Section().Class("gallery").Children(figures...).Build(),
			).
			Build(),
	}
	if p := cfg.Zoom.PortalEl; p != "" && p != zoom.DefaultPortalEl {
		bodyKids = append(bodyKids, builder.Div().ID(p).Build())
	}
	bodyKids = append(bodyKids,
		builder.El("script").Attr("src", "/wasm_exec.js").Build(),
		builder.El("script").Text(bootScript).Build(),
		builder.El("script").Text(reloadScript).Build(),
	)

	body := builder.El("body").Children(bodyKids...)
	if debug {
		body.Data("zoom-debug", "")
	}

	page := builder.El("html").
		Attr("lang", "en").
		Children(
			builder.El("head").
				Children(
					builder.El("meta").Attr("charset", "utf-8").Build(),
					builder.El("meta").Attr("name", "viewport").Attr("content", "width=device-width, initial-scale=1").Build(),
					builder.El("title").Text(cfg.Dev.Title).Build(),
					styling.StyleNode(),
				).
				Build(),
			body.Build(),
		).
		Build()

	out, err := html.RenderToString(page)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n" + out, nil
}

func renderFigure(cfg *config.Config, img config.ImageConfig, probe sizeProber) (*vdom.VNode, error) {
	opts := img.Options(cfg.Zoom)
	if !opts.NaturalSize.Known() && probe != nil {
		if size, ok := probe(img.Src); ok {
			opts.NaturalSize = size
		}
	}

	trigger, err := triggerMarkup(opts, img)
	if err != nil {
		return nil, err
	}

	host := builder.Figure().
		Data("zoom-mount", "").
		Data("zoom-src", img.Src).
		Data("zoom-alt", img.Alt).
		Data("zoom-open-text", opts.OpenText).
		Data("zoom-close-text", opts.CloseText).
		Data("zoom-bg-start", opts.OverlayBgColorStart).
		Data("zoom-bg-end", opts.OverlayBgColorEnd).
		Data("zoom-portal", opts.PortalEl).
		Data("zoom-easing", opts.Easing).
		Data("zoom-margin", formatFloat(opts.ZoomMargin)).
		Data("zoom-duration", strconv.FormatInt(opts.TransitionDuration.Milliseconds(), 10))
	if opts.NaturalSize.Known() {
		host.Data("zoom-natural-width", formatFloat(opts.NaturalSize.Width)).
			Data("zoom-natural-height", formatFloat(opts.NaturalSize.Height))
	}
	if img.Controlled {
		host.Data("zoom-controlled", "true")
	}
	return host.Children(trigger).Build(), nil
}

// triggerMarkup renders the idle widget so the page shows the image before
// the client boots.
func triggerMarkup(opts zoom.Options, img config.ImageConfig) (*vdom.VNode, error) {
	doc := headless.New(1, 1)
	doc.AddPortal(opts.PortalEl)

	content := builder.Img().Src(img.Src).Alt(img.Alt).Build()
	s, err := zoom.NewUncontrolled(doc, opts, content)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Render(), nil
}

// publicProber resolves image srcs against dir through probe.
func publicProber(dir string, probe func(path string) (zoom.Size, error)) sizeProber {
	return func(src string) (zoom.Size, bool) {
		if strings.Contains(src, "://") || strings.Contains(src, "..") {
			return zoom.Size{}, false
		}
		size, err := probe(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(src, "/"))))
		if err != nil {
			return zoom.Size{}, false
		}
		return size, true
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
