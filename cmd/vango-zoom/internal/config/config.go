package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/vango-zoom/pkg/zoom"
)

// FileNames are tried in order by Load.
var FileNames = []string{"vango-zoom.yaml", "vango-zoom.yml", "vango-zoom.json"}

// Config represents the vango-zoom.yaml configuration
type Config struct {
	// Widget defaults applied to every image
	Zoom *ZoomConfig `json:"zoom,omitempty" yaml:"zoom,omitempty"`

	// Development server configuration
	Dev *DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// WASM client build configuration
	Build *BuildConfig `json:"build,omitempty" yaml:"build,omitempty"`

	// Demo gallery
	Images []ImageConfig `json:"images,omitempty" yaml:"images,omitempty"`
}

// ZoomConfig mirrors zoom.Options for the fields that can live in a file.
type ZoomConfig struct {
	OpenText            string `json:"openText,omitempty" yaml:"openText,omitempty"`
	CloseText           string `json:"closeText,omitempty" yaml:"closeText,omitempty"`
	OverlayBgColorStart string `json:"overlayBgColorStart,omitempty" yaml:"overlayBgColorStart,omitempty"`
	OverlayBgColorEnd   string `json:"overlayBgColorEnd,omitempty" yaml:"overlayBgColorEnd,omitempty"`

	// Transition duration in milliseconds
	TransitionDuration int `json:"transitionDuration,omitempty" yaml:"transitionDuration,omitempty"`

	ZoomMargin      float64 `json:"zoomMargin,omitempty" yaml:"zoomMargin,omitempty"`
	PortalEl        string  `json:"portalEl,omitempty" yaml:"portalEl,omitempty"`
	Easing          string  `json:"easing,omitempty" yaml:"easing,omitempty"`
	ScrollThreshold float64 `json:"scrollThreshold,omitempty" yaml:"scrollThreshold,omitempty"`
	MaxScale        float64 `json:"maxScale,omitempty" yaml:"maxScale,omitempty"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	// Server port
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Server host
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Directory served as static files (images, wasm_exec.js)
	PublicDir string `json:"publicDir,omitempty" yaml:"publicDir,omitempty"`

	// Page title of the demo gallery
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// BuildConfig describes how the browser client is compiled.
type BuildConfig struct {
	// Package of the WASM client
	Package string `json:"package,omitempty" yaml:"package,omitempty"`

	// Output path of main.wasm
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Compiler: "go" or "tinygo"
	Compiler string `json:"compiler,omitempty" yaml:"compiler,omitempty"`

	// Artifact cache directory; empty means the user cache dir
	CacheDir string `json:"cacheDir,omitempty" yaml:"cacheDir,omitempty"`
}

// ImageConfig is one zoomable image of the demo gallery.
type ImageConfig struct {
	Src string `json:"src" yaml:"src"`
	Alt string `json:"alt,omitempty" yaml:"alt,omitempty"`

	// Natural size; probed from the file under PublicDir when zero
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// Controlled renders the widget with an owner that echoes changes
	Controlled bool `json:"controlled,omitempty" yaml:"controlled,omitempty"`

	// Per-image overrides of the zoom section
	Margin *float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
	Easing string   `json:"easing,omitempty" yaml:"easing,omitempty"`
}

// Load loads configuration from the first of FileNames found in
// projectPath. Without a file the defaults are returned.
func Load(projectPath string) (*Config, error) {
	for _, name := range FileNames {
		configPath := filepath.Join(projectPath, name)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			continue
		}
		return LoadFile(configPath)
	}
	return DefaultConfig(), nil
}

// LoadFile reads one config file; the extension picks the format.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		err = json.Unmarshal(data, &config)
	default:
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(configPath), err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Save writes config to configPath in the format its extension names.
func Save(config *Config, configPath string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Zoom: &ZoomConfig{
			OpenText:            zoom.DefaultOpenText,
			CloseText:           zoom.DefaultCloseText,
			OverlayBgColorStart: zoom.DefaultOverlayBgColorStart,
			OverlayBgColorEnd:   zoom.DefaultOverlayBgColorEnd,
			TransitionDuration:  int(zoom.DefaultTransitionDuration / time.Millisecond),
			PortalEl:            zoom.DefaultPortalEl,
			Easing:              zoom.DefaultEasing,
			ScrollThreshold:     zoom.DefaultScrollThreshold,
			MaxScale:            zoom.DefaultMaxScale,
		},
		Dev: &DevConfig{
			Port:      5173,
			Host:      "localhost",
			PublicDir: "public",
			Title:     "vango-zoom",
		},
		Build: &BuildConfig{
			Package:  "./app/client",
			Output:   "public/main.wasm",
			Compiler: "go",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Zoom == nil {
		config.Zoom = defaults.Zoom
	} else {
		z, d := config.Zoom, defaults.Zoom
		if z.OpenText == "" {
			z.OpenText = d.OpenText
		}
		if z.CloseText == "" {
			z.CloseText = d.CloseText
		}
		if z.OverlayBgColorStart == "" {
			z.OverlayBgColorStart = d.OverlayBgColorStart
		}
		if z.OverlayBgColorEnd == "" {
			z.OverlayBgColorEnd = d.OverlayBgColorEnd
		}
		if z.TransitionDuration == 0 {
			z.TransitionDuration = d.TransitionDuration
		}
		if z.PortalEl == "" {
			z.PortalEl = d.PortalEl
		}
		if z.Easing == "" {
			z.Easing = d.Easing
		}
		if z.ScrollThreshold == 0 {
			z.ScrollThreshold = d.ScrollThreshold
		}
		if z.MaxScale == 0 {
			z.MaxScale = d.MaxScale
		}
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
		if config.Dev.PublicDir == "" {
			config.Dev.PublicDir = defaults.Dev.PublicDir
		}
		if config.Dev.Title == "" {
			config.Dev.Title = defaults.Dev.Title
		}
	}

	if config.Build == nil {
		config.Build = defaults.Build
	} else {
		if config.Build.Package == "" {
			config.Build.Package = defaults.Build.Package
		}
		if config.Build.Output == "" {
			config.Build.Output = defaults.Build.Output
		}
		if config.Build.Compiler == "" {
			config.Build.Compiler = defaults.Build.Compiler
		}
	}
}

// Options converts the zoom section to widget options.
func (z *ZoomConfig) Options() zoom.Options {
	return zoom.Options{
		OpenText:            z.OpenText,
		CloseText:           z.CloseText,
		OverlayBgColorStart: z.OverlayBgColorStart,
		OverlayBgColorEnd:   z.OverlayBgColorEnd,
		TransitionDuration:  time.Duration(z.TransitionDuration) * time.Millisecond,
		ZoomMargin:          z.ZoomMargin,
		PortalEl:            z.PortalEl,
		Easing:              z.Easing,
		ScrollThreshold:     z.ScrollThreshold,
		MaxScale:            z.MaxScale,
	}
}

// Options returns the widget options for img, layered over base.
func (img ImageConfig) Options(base *ZoomConfig) zoom.Options {
	opts := base.Options()
	if img.Margin != nil {
		opts.ZoomMargin = *img.Margin
	}
	if img.Easing != "" {
		opts.Easing = img.Easing
	}
	opts.NaturalSize = zoom.Size{Width: img.Width, Height: img.Height}
	return opts
}

// Validate checks a loaded configuration.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Zoom.Options().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("zoom: %w", err))
	}
	if c.Dev.Port < 1 || c.Dev.Port > 65535 {
		errs = append(errs, fmt.Errorf("dev.port %d out of range", c.Dev.Port))
	}
	switch c.Build.Compiler {
	case "go", "tinygo":
	default:
		errs = append(errs, fmt.Errorf("build.compiler %q: want go or tinygo", c.Build.Compiler))
	}
	for i, img := range c.Images {
		if img.Src == "" {
			errs = append(errs, fmt.Errorf("images[%d]: src is required", i))
			continue
		}
		if err := img.Options(c.Zoom).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("images[%d] %s: %w", i, img.Src, err))
		}
	}
	return errors.Join(errs...)
}
