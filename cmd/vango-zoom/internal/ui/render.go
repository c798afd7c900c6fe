package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/recera/vango-zoom/pkg/zoom"
)

// Style definitions
var (
	primaryColor   = lipgloss.Color("#3b82f6") // Vango blue
	secondaryColor = lipgloss.Color("#64748b") // Gray
	successColor   = lipgloss.Color("#10b981") // Green
	warningColor   = lipgloss.Color("#f59e0b") // Yellow
	mutedColor     = lipgloss.Color("#94a3b8") // Muted gray

	pageColor = colorful.Color{R: 0x0f / 255.0, G: 0x17 / 255.0, B: 0x2a / 255.0}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	stateStyles = map[zoom.State]lipgloss.Style{
		zoom.Idle:         lipgloss.NewStyle().Foreground(mutedColor).Bold(true),
		zoom.Activating:   lipgloss.NewStyle().Foreground(warningColor).Bold(true),
		zoom.Active:       lipgloss.NewStyle().Foreground(successColor).Bold(true),
		zoom.Deactivating: lipgloss.NewStyle().Foreground(warningColor).Bold(true),
	}
)

// The canvas starts below the title line and inside the box border.
const (
	canvasTop  = 2
	canvasLeft = 1

	// title, two border lines, three status lines, the log and help
	chromeLines = 1 + 2 + 3 + maxLog + 1
)

type cell byte

const (
	cellPage cell = iota
	cellTrigger
	cellTriggerHidden
	cellImage
)

var cellRunes = map[cell]string{
	cellPage:          " ",
	cellTrigger:       "▒",
	cellTriggerHidden: "·",
	cellImage:         "█",
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("vango-zoom preview"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(m.mode()))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.renderCanvas()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	for i := 0; i < maxLog; i++ {
		if i < len(m.s.log) {
			b.WriteString(mutedStyle.Render(m.s.log[i]))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) mode() string {
	if !m.s.surface.Controlled() {
		return "uncontrolled"
	}
	if m.s.ownerAccepts {
		return "controlled · owner accepts"
	}
	return "controlled · owner refuses"
}

// canvasSize is the viewport drawing area in terminal cells.
func (m Model) canvasSize() (cols, rows int) {
	cols = m.width - 2
	rows = m.height - chromeLines
	if cols < 20 {
		cols = 20
	}
	if rows < 6 {
		rows = 6
	}
	return cols, rows
}

// cellSpan converts a pixel rect to the half-open cell ranges it covers.
func cellSpan(r zoom.Rect, sx, sy float64, cols, rows int) (c0, r0, c1, r1 int) {
	clampTo := func(v float64, max int) int {
		if v < 0 {
			return 0
		}
		if v > float64(max) {
			return max
		}
		return int(v)
	}
	c0 = clampTo(math.Floor(r.Left/sx), cols)
	r0 = clampTo(math.Floor(r.Top/sy), rows)
	c1 = clampTo(math.Ceil(r.Right()/sx), cols)
	r1 = clampTo(math.Ceil(r.Bottom()/sy), rows)
	return
}

func (m Model) canvas() [][]cell {
	cols, rows := m.canvasSize()
	vp := m.s.doc.Viewport()
	sx, sy := vp.Width/float64(cols), vp.Height/float64(rows)

	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
	}
	fill := func(r zoom.Rect, c cell) {
		c0, r0, c1, r1 := cellSpan(r, sx, sy, cols, rows)
		for y := r0; y < r1; y++ {
			for x := c0; x < c1; x++ {
				grid[y][x] = c
			}
		}
	}

	trigger := cellTrigger
	if m.s.surface.Loaded() {
		trigger = cellTriggerHidden
	}
	fill(m.s.visibleTrigger(), trigger)
	if m.s.surface.OverlayTree() != nil {
		fill(m.s.surface.Machine().Frame().Rect, cellImage)
	}
	return grid
}

// backdrop composites the overlay background over the page color.
func (m Model) backdrop() lipgloss.Color {
	if m.s.surface.OverlayTree() == nil {
		return lipgloss.Color(pageColor.Hex())
	}
	bg := m.s.surface.Machine().Frame().Background
	return lipgloss.Color(pageColor.BlendRgb(bg.RGB, bg.Alpha).Clamped().Hex())
}

func (m Model) renderCanvas() string {
	bg := m.backdrop()
	styles := map[cell]lipgloss.Style{
		cellPage:          lipgloss.NewStyle().Background(bg),
		cellTrigger:       lipgloss.NewStyle().Background(bg).Foreground(secondaryColor),
		cellTriggerHidden: lipgloss.NewStyle().Background(bg).Foreground(mutedColor),
		cellImage:         lipgloss.NewStyle().Background(bg).Foreground(primaryColor),
	}

	grid := m.canvas()
	lines := make([]string, len(grid))
	for y, row := range grid {
		var line strings.Builder
		for x := 0; x < len(row); {
			end := x
			for end < len(row) && row[end] == row[x] {
				end++
			}
			line.WriteString(styles[row[x]].Render(strings.Repeat(cellRunes[row[x]], end-x)))
			x = end
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	s := m.s
	st := s.surface.State()
	f := s.surface.Machine().Frame()
	vp := s.doc.Viewport()

	flag := "off"
	if s.surface.Zoomed() {
		flag = "on"
	}
	lock := "off"
	if s.doc.ScrollLocked() {
		lock = "on"
	}

	stateLine := fmt.Sprintf("%s %s  %s %s  %s %d",
		labelStyle.Render("state"), stateStyles[st].Render(strings.ToUpper(st.String())),
		labelStyle.Render("flag"), flag,
		labelStyle.Render("cycles"), s.surface.Machine().Cycles())

	frameLine := labelStyle.Render("frame") + " -"
	if s.surface.OverlayTree() != nil {
		frameLine = fmt.Sprintf("%s %s  %s %3.0f%%  %s %s",
			labelStyle.Render("frame"), formatRect(f.Rect),
			labelStyle.Render("position"), f.Position*100,
			labelStyle.Render("backdrop"), f.Background.CSS())
	}

	pageLine := fmt.Sprintf("%s %gx%g  %s %g  %s %s",
		labelStyle.Render("viewport"), vp.Width, vp.Height,
		labelStyle.Render("scrollY"), s.scrollY,
		labelStyle.Render("scroll lock"), lock)

	return strings.Join([]string{stateLine, frameLine, pageLine}, "\n")
}

func formatRect(r zoom.Rect) string {
	return fmt.Sprintf("top %.0f left %.0f %.0fx%.0f", r.Top, r.Left, r.Width, r.Height)
}
