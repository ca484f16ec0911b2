package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/state"
)

// LabelMode controls which bodies get name labels on the map.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused body
	LabelAll                      // Every body
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelFocused:
		return "focus"
	default:
		return "all"
	}
}

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

const defaultZoom = 3 // index of 1.0

var (
	mapBackground = body.Color{R: 0.02, G: 0.02, B: 0.05}
	ringColor     = body.Color{R: 0.25, G: 0.25, B: 0.3}
	mapStarColor  = body.Color{R: 0.35, G: 0.36, B: 0.4}
	craftColor    = body.Color{R: 0.08, G: 1.0, B: 0.22}
	focusColor    = body.Color{R: 1.0, G: 0.95, B: 0.55}
)

// MapViewModel renders a top-down view of the neighbourhood around the
// craft or a focused body.
type MapViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	stars    astro.Starfield

	// View state
	focusIdx  int // index into snapshot.Bodies(), -1 = craft
	zoomLevel int
	panX      float64 // pan offset in map units
	panY      float64
	scaleMode astro.ScaleMode
	labelMode LabelMode
	showStars bool
	chunkSize float64
}

// NewMapViewModel creates a map centered on the craft.
func NewMapViewModel(stars astro.Starfield, chunkSize float64) MapViewModel {
	return MapViewModel{
		stars:     stars,
		focusIdx:  -1,
		zoomLevel: defaultZoom,
		scaleMode: astro.ScaleLog,
		labelMode: LabelFocused,
		showStars: true,
		chunkSize: chunkSize,
	}
}

func (m MapViewModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m MapViewModel) SetSize(width, height int) MapViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data. Focus falls back to the craft
// when the focused body has left the snapshot.
func (m MapViewModel) UpdateData(snapshot state.Snapshot) MapViewModel {
	var prevID string
	if b := m.FocusedBody(); b != nil {
		prevID = b.ID
	}
	m.snapshot = snapshot
	if prevID == "" {
		m.focusIdx = -1
		return m
	}
	m.focusIdx = -1
	for i, b := range snapshot.Bodies() {
		if b.ID == prevID {
			m.focusIdx = i
			break
		}
	}
	return m
}

// Update handles input messages.
func (m MapViewModel) Update(msg tea.Msg) (MapViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "[":
			m.focusPrev()
		case "k", "]":
			m.focusNext()
		case "f":
			m.focusIdx = -1
			m.panX, m.panY = 0, 0

		case "h":
			m.panX -= 0.1 / m.scale()
		case "L":
			m.panX += 0.1 / m.scale()
		case "K":
			m.panY += 0.1 / m.scale()
		case "J":
			m.panY -= 0.1 / m.scale()

		case "+", "=":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
			}
		case "-":
			if m.zoomLevel > 0 {
				m.zoomLevel--
			}
		case "0":
			m.zoomLevel = defaultZoom

		case "z":
			m.scaleMode = m.scaleMode.Next()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "t":
			m.showStars = !m.showStars

		case "r":
			m.panX, m.panY = 0, 0
			m.zoomLevel = defaultZoom
		}
	}
	return m, nil
}

func (m *MapViewModel) focusNext() {
	n := len(m.snapshot.Bodies())
	if n == 0 {
		return
	}
	m.focusIdx++
	if m.focusIdx >= n {
		m.focusIdx = -1
	}
	m.panX, m.panY = 0, 0
}

func (m *MapViewModel) focusPrev() {
	n := len(m.snapshot.Bodies())
	if n == 0 {
		return
	}
	m.focusIdx--
	if m.focusIdx < -1 {
		m.focusIdx = n - 1
	}
	m.panX, m.panY = 0, 0
}

// FocusedBody returns the focused body, or nil when the map follows the craft.
func (m MapViewModel) FocusedBody() *state.BodyView {
	bodies := m.snapshot.Bodies()
	if m.focusIdx >= 0 && m.focusIdx < len(bodies) {
		return &bodies[m.focusIdx]
	}
	return nil
}

// ShowStars returns whether the starfield is visible.
func (m MapViewModel) ShowStars() bool {
	return m.showStars
}

// center returns the world point the map is centered on.
func (m MapViewModel) center() astro.Vec3 {
	if b := m.FocusedBody(); b != nil {
		return b.Position
	}
	return m.snapshot.Craft.Position
}

func (m MapViewModel) projection() astro.ProjectionConfig {
	cfg := astro.DefaultProjectionConfig()
	if m.chunkSize > 0 {
		cfg.Unit = m.chunkSize
	}
	cfg.Scale = m.scale()
	cfg.Mode = m.scaleMode
	return cfg
}

// View renders the map view.
func (m MapViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for map view"
	}
	canvasH := max(m.height-hudLines, 5)
	return lipgloss.JoinVertical(lipgloss.Left, m.render(m.width, canvasH).String(), m.renderHUD())
}

// mapper converts map points to cells.
type mapper struct {
	originX, originY int
	displayScale     float64
	w, h             int
}

func (p mapper) cell(pt astro.MapPoint) (int, int, bool) {
	x := p.originX + int(math.Round(pt.X*p.displayScale))
	y := p.originY - int(math.Round(pt.Y*p.displayScale/cellAspect))
	return x, y, x >= 0 && x < p.w && y >= 0 && y < p.h
}

type bodyPos struct {
	x, y      int
	name      string
	isFocused bool
}

func (m MapViewModel) render(w, h int) *canvas {
	cv := newCanvas(w, h, mapBackground)
	cfg := m.projection()
	center := m.center()

	// log10(2) ~ 0.3 is one chunk in log mode; fit a little over three chunks.
	maxDisplayR := float64(min(w/2, h)) * 0.9
	mp := mapper{
		originX:      w/2 + int(m.panX*maxDisplayR),
		originY:      h/2 - int(m.panY*maxDisplayR/cellAspect),
		displayScale: maxDisplayR / 0.6,
		w:            w,
		h:            h,
	}

	if m.showStars {
		for _, p := range m.stars.Around(m.snapshot.Craft.Position) {
			if x, y, ok := mp.cell(astro.ProjectTopDown(p, center, cfg)); ok {
				cv.set(x, y, '˙', mapStarColor, 4)
			}
		}
	}

	// Range rings at whole chunks.
	for k := 1; k <= 3; k++ {
		edge := astro.ProjectTopDown(center.Add(astro.Vec3{X: cfg.Unit * float64(k)}), center, cfg)
		m.drawCircle(cv, mp, edge.X*mp.displayScale)
	}

	var positions []bodyPos
	for i, b := range m.snapshot.Bodies() {
		pt := astro.ProjectTopDown(b.Position, center, cfg)
		x, y, ok := mp.cell(pt)
		if !ok {
			continue
		}
		focused := i == m.focusIdx
		col := b.Color
		if focused {
			col = focusColor
		}
		cv.set(x, y, bodyGlyph(b.Kind, focused), col, 1)
		positions = append(positions, bodyPos{x: x, y: y, name: b.Name, isFocused: focused})
	}

	c := m.snapshot.Craft
	if x, y, ok := mp.cell(astro.ProjectTopDown(c.Position, center, cfg)); ok {
		cv.set(x, y, headingGlyph(c.Yaw), craftColor, 0)
		positions = append(positions, bodyPos{x: x, y: y, name: "Saucer", isFocused: m.focusIdx < 0})
	}

	m.renderLabels(cv, positions)
	return cv
}

func (m MapViewModel) drawCircle(cv *canvas, mp mapper, r float64) {
	if r < 1 {
		return
	}
	steps := min(max(int(2*math.Pi*r), 8), 360)
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := mp.originX + int(r*math.Cos(theta))
		y := mp.originY - int(r*math.Sin(theta)/cellAspect)
		cv.set(x, y, '·', ringColor, 3)
	}
}

func (m MapViewModel) renderLabels(cv *canvas, positions []bodyPos) {
	if m.labelMode == LabelNone {
		return
	}
	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}
		text := pos.name
		if pos.isFocused {
			text = "◄ " + pos.name
		}
		cv.text(pos.x+2, pos.y, text, labelColor)
	}
}

func bodyGlyph(kind body.Kind, focused bool) rune {
	switch kind {
	case body.KindSun:
		return '☉'
	case body.KindMoon:
		if focused {
			return '◉'
		}
		return '∘'
	case body.KindProcedural:
		if focused {
			return '◆'
		}
		return '◇'
	default:
		if focused {
			return '●'
		}
		return '•'
	}
}

var headingGlyphs = []rune{'↑', '↖', '←', '↙', '↓', '↘', '→', '↗'}

// headingGlyph picks the arrow for a yaw in degrees. Yaw 0 faces -Z, which
// is screen up, and positive yaw turns left.
func headingGlyph(yaw float64) rune {
	i := int(math.Round(astro.NormalizeDeg(yaw)/45)) % len(headingGlyphs)
	return headingGlyphs[i]
}

func (m MapViewModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if focused := m.FocusedBody(); focused != nil {
		b.WriteString(headerStyle.Render("◆ " + focused.Name))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Kind: "))
		b.WriteString(valueStyle.Render(focused.Kind.String()))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Distance: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f", m.snapshot.Craft.Position.Dist(focused.Position))))
		if focused.Group != "" {
			b.WriteString("  ")
			b.WriteString(labelStyle.Render("Group: "))
			b.WriteString(valueStyle.Render(focused.Group))
		}
	} else {
		b.WriteString(headerStyle.Render("▲ Saucer"))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Sector: "))
		b.WriteString(valueStyle.Render(m.snapshot.Sector.String()))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Bodies: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", len(m.snapshot.Bodies()))))
	}
	b.WriteString("\n")

	stars := "off"
	if m.showStars {
		stars = "on"
	}
	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(m.scaleMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Stars:"))
	b.WriteString(valueStyle.Render(stars))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k focus  f craft  +/- zoom  z scale  l labels  t stars  r reset"))

	return b.String()
}
