package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/recera/vango-zoom/pkg/zoom"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dev.Port != 5173 || cfg.Zoom.TransitionDuration != 300 {
		t.Errorf("defaults not returned: dev=%+v zoom=%+v", cfg.Dev, cfg.Zoom)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "vango-zoom.yaml",
			content: `
zoom:
  zoomMargin: 20
  transitionDuration: 450
dev:
  port: 9000
images:
  - src: /images/harbour.jpg
    alt: Harbour at dusk
    controlled: true
`,
		},
		{
			name: "json",
			file: "vango-zoom.json",
			content: `{
  "zoom": {"zoomMargin": 20, "transitionDuration": 450},
  "dev": {"port": 9000},
  "images": [{"src": "/images/harbour.jpg", "alt": "Harbour at dusk", "controlled": true}]
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Zoom.ZoomMargin != 20 {
				t.Errorf("margin = %v", cfg.Zoom.ZoomMargin)
			}
			if cfg.Zoom.OpenText != zoom.DefaultOpenText {
				t.Errorf("partial zoom section not defaulted: %q", cfg.Zoom.OpenText)
			}
			if cfg.Dev.Port != 9000 || cfg.Dev.Host != "localhost" {
				t.Errorf("dev = %+v", cfg.Dev)
			}
			if cfg.Build.Package != "./app/client" {
				t.Errorf("build = %+v", cfg.Build)
			}
			if len(cfg.Images) != 1 || !cfg.Images[0].Controlled || cfg.Images[0].Alt != "Harbour at dusk" {
				t.Errorf("images = %+v", cfg.Images)
			}

			opts := cfg.Zoom.Options()
			if opts.TransitionDuration != 450*time.Millisecond {
				t.Errorf("duration = %v", opts.TransitionDuration)
			}
		})
	}
}

func TestLoad_YAMLPreferredOverJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vango-zoom.json", `{"dev": {"port": 1111}}`)
	writeFile(t, dir, "vango-zoom.yaml", "dev:\n  port: 2222\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dev.Port != 2222 {
		t.Errorf("port = %d, want the yaml file's", cfg.Dev.Port)
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vango-zoom.yaml", "zoom: [not, a, map")

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "vango-zoom.yaml") {
		t.Errorf("err = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Images = []ImageConfig{{Src: "/a.png", Width: 400, Height: 300}}
			path := filepath.Join(t.TempDir(), name)

			if err := Save(cfg, path); err != nil {
				t.Fatal(err)
			}
			got, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Dev.Port != cfg.Dev.Port || len(got.Images) != 1 || got.Images[0].Width != 400 {
				t.Errorf("round trip lost data: %+v", got)
			}
		})
	}
}

func TestImageOptions(t *testing.T) {
	base := DefaultConfig().Zoom
	base.ZoomMargin = 10
	margin := 40.0

	tests := []struct {
		name       string
		img        ImageConfig
		wantMargin float64
		wantEasing string
	}{
		{"inherits", ImageConfig{Src: "/a.png"}, 10, zoom.DefaultEasing},
		{"overrides", ImageConfig{Src: "/a.png", Margin: &margin, Easing: "linear"}, 40, "linear"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.img.Options(base)
			if opts.ZoomMargin != tt.wantMargin || opts.Easing != tt.wantEasing {
				t.Errorf("margin=%v easing=%q", opts.ZoomMargin, opts.Easing)
			}
		})
	}

	sized := ImageConfig{Src: "/a.png", Width: 800, Height: 600}.Options(base)
	if sized.NaturalSize != (zoom.Size{Width: 800, Height: 600}) {
		t.Errorf("natural size = %+v", sized.NaturalSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad color", func(c *Config) { c.Zoom.OverlayBgColorEnd = "chartreuse-ish" }, "OverlayBgColorEnd"},
		{"bad port", func(c *Config) { c.Dev.Port = 70000 }, "dev.port"},
		{"bad compiler", func(c *Config) { c.Build.Compiler = "gccgo" }, "build.compiler"},
		{"missing src", func(c *Config) { c.Images = []ImageConfig{{Alt: "x"}} }, "src is required"},
		{"bad image easing", func(c *Config) { c.Images = []ImageConfig{{Src: "/a", Easing: "wobble"}} }, "Easing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Zoom.OverlayBgColorStart = "nope"
	var cerr *zoom.ConfigError
	if !errors.As(cfg.Validate(), &cerr) || cerr.Field != "OverlayBgColorStart" {
		t.Errorf("ConfigError not reachable through Validate")
	}
}
