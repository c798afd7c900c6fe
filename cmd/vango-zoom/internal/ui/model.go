package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/vango-zoom/pkg/vex/builder"
	"github.com/recera/vango-zoom/pkg/zoom"
	"github.com/recera/vango-zoom/pkg/zoom/headless"
)

// Config describes the widget the preview simulates.
type Config struct {
	Options    zoom.Options
	Controlled bool

	// Viewport is the simulated window in CSS pixels; zero picks the first
	// of the resize presets.
	Viewport zoom.Size
	// Trigger is the trigger's page rect; zero centres a 200x150 box.
	Trigger zoom.Rect

	Src string
	Alt string
}

// Viewport presets cycled by the resize key.
var viewports = []zoom.Size{
	{Width: 1000, Height: 800},
	{Width: 1280, Height: 720},
	{Width: 800, Height: 1000},
	{Width: 1920, Height: 1080},
}

const (
	frameInterval = 16 * time.Millisecond
	scrollStep    = 16.0
	maxLog        = 6
)

type frameMsg time.Time

// session is the simulation. Model is copied by value on every update, so
// the mutable parts live behind this pointer.
type session struct {
	doc      *headless.Document
	surface  *zoom.Surface
	portal   string
	trigger  zoom.Rect
	viewport int
	scrollY  float64

	ownerAccepts bool
	log          []string
}

// Model is the preview's bubbletea model.
type Model struct {
	width  int
	height int

	keys     KeyMap
	help     help.Model
	showHelp bool
	quitting bool

	s *session
}

// NewModel builds a surface on a headless document.
func NewModel(cfg Config) (Model, error) {
	vp := cfg.Viewport
	idx := 0
	if !vp.Known() {
		vp = viewports[0]
	} else {
		idx = -1
		for i, p := range viewports {
			if p == vp {
				idx = i
			}
		}
	}

	s := &session{
		doc:          headless.New(vp.Width, vp.Height),
		viewport:     idx,
		ownerAccepts: true,
		trigger:      cfg.Trigger,
	}
	if s.trigger.Empty() {
		s.trigger = zoom.Rect{
			Top:    (vp.Height - 150) / 2,
			Left:   (vp.Width - 200) / 2,
			Width:  200,
			Height: 150,
		}
	}

	opts := cfg.Options
	userState := opts.OnStateChange
	opts.OnStateChange = func(st zoom.State) {
		s.logf("state → %s", st)
		if userState != nil {
			userState(st)
		}
	}
	s.portal = opts.PortalEl
	if s.portal == "" {
		s.portal = zoom.DefaultPortalEl
	}
	s.doc.AddPortal(s.portal)

	content := builder.Img().Src(cfg.Src).Alt(cfg.Alt).Build()
	var err error
	if cfg.Controlled {
		opts.OnZoomChange = func(z bool) {
			if !s.ownerAccepts {
				s.logf("owner ignored request for zoomed=%v", z)
				return
			}
			s.logf("owner accepted zoomed=%v", z)
			s.surface.SetZoomed(z)
		}
		s.surface, err = zoom.NewControlled(s.doc, opts, content)
	} else {
		opts.OnZoomChange = func(z bool) { s.logf("zoomed=%v", z) }
		s.surface, err = zoom.NewUncontrolled(s.doc, opts, content)
	}
	if err != nil {
		return Model{}, err
	}

	s.layout()
	s.surface.Start()

	return Model{
		width:  80,
		height: 24,
		keys:   DefaultKeyMap,
		help:   help.New(),
		s:      s,
	}, nil
}

// Close releases the surface.
func (m Model) Close() { m.s.surface.Close() }

// Surface returns the simulated widget.
func (m Model) Surface() *zoom.Surface { return m.s.surface }

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.s.doc.Clock().Advance(frameInterval)
		return m, tick()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X-canvasLeft, msg.Y-canvasTop)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.s
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.Zoom):
		if tree := s.surface.OverlayTree(); tree != nil {
			headless.Click(tree, zoom.PartClose)
		} else {
			headless.Click(s.surface.Render(), zoom.PartTrigger)
		}

	case key.Matches(msg, m.keys.Dismiss):
		s.doc.Press("Escape")

	case key.Matches(msg, m.keys.Outside):
		if slot := s.doc.Slot(s.portal); slot != nil {
			s.doc.PointerDown(slot.Part(zoom.PartBackdrop))
		}

	case key.Matches(msg, m.keys.ScrollUp):
		s.scroll(-scrollStep)

	case key.Matches(msg, m.keys.ScrollDown):
		s.scroll(scrollStep)

	case key.Matches(msg, m.keys.Resize):
		s.nextViewport()

	case key.Matches(msg, m.keys.Owner):
		s.ownerAccepts = !s.ownerAccepts
		s.logf("owner accepts requests: %v", s.ownerAccepts)
	}
	return m, nil
}

// click maps a canvas cell to a pointer press.
func (m Model) click(col, row int) {
	cols, rows := m.canvasSize()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return
	}
	s := m.s
	vp := s.doc.Viewport()
	x := (float64(col) + 0.5) * vp.Width / float64(cols)
	y := (float64(row) + 0.5) * vp.Height / float64(rows)

	if slot := s.doc.Slot(s.portal); slot != nil && s.surface.OverlayTree() != nil {
		part := zoom.PartBackdrop
		if s.surface.Machine().Frame().Rect.ContainsPoint(x, y) {
			part = zoom.PartContent
		}
		s.doc.PointerDown(slot.Part(part))
		return
	}
	if s.visibleTrigger().ContainsPoint(x, y) {
		headless.Click(s.surface.Render(), zoom.PartTrigger)
	}
}

// visibleTrigger is the trigger rect relative to the viewport.
func (s *session) visibleTrigger() zoom.Rect {
	r := s.trigger
	r.Top -= s.scrollY
	return r
}

func (s *session) layout() {
	s.doc.Layout(s.surface, s.visibleTrigger())
}

func (s *session) scroll(dy float64) {
	if s.scrollY+dy < 0 {
		dy = -s.scrollY
	}
	if dy == 0 {
		return
	}
	s.scrollY += dy
	s.layout()
	s.doc.WindowTarget().ScrollBy(0, dy)
}

func (s *session) nextViewport() {
	s.viewport = (s.viewport + 1) % len(viewports)
	vp := viewports[s.viewport]
	s.trigger.Left = (vp.Width - s.trigger.Width) / 2
	s.layout()
	s.doc.Resize(vp.Width, vp.Height)
	s.logf("viewport %gx%g", vp.Width, vp.Height)
}

func (s *session) logf(format string, args ...interface{}) {
	at := s.doc.Clock().Now().Milliseconds()
	line := fmt.Sprintf("%6dms  ", at) + fmt.Sprintf(format, args...)
	s.log = append(s.log, line)
	if len(s.log) > maxLog {
		s.log = s.log[len(s.log)-maxLog:]
	}
}
