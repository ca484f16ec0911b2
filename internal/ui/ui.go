// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-saucer/internal/archive"
	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/logging"
	"github.com/litescript/ls-saucer/internal/state"
	"github.com/litescript/ls-saucer/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewChase ViewMode = iota
	ViewMap
)

const viewCount = 2

// Terminals report key presses but never releases, so a key counts as held
// until its deadline passes. The first press waits out the auto-repeat
// delay; repeats then keep it alive with a shorter window.
const (
	firstHold  = 550 * time.Millisecond
	repeatHold = 150 * time.Millisecond

	simRate = 60 // simulation ticks per second

	// Mouse motion arrives in cells; scale to roughly pixel-sized deltas.
	cellPixelsX = 8.0
	cellPixelsY = 16.0
)

const (
	headerLines = 3
	footerLines = 1
)

// Held control names.
const (
	holdThrust  = "thrust"
	holdReverse = "reverse"
	holdLeft    = "left"
	holdRight   = "right"
	holdAscend  = "ascend"
	holdDescend = "descend"
)

// FrameMsg triggers one rendered frame and the simulation ticks behind it.
type FrameMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state  *state.Manager
	opener archive.Opener
	logger *logging.Logger

	// UI state
	viewMode ViewMode
	width    int
	height   int
	ready    bool
	frames   int

	frameInterval time.Duration
	stepsPerFrame int
	importLimit   *rate.Limiter
	now           func() time.Time

	// Input state between frames
	held       map[string]time.Time
	wheel      float64
	rightHeld  bool
	lastMouseX int
	lastMouseY int
	camDX      float64
	camDY      float64

	// Sub-models
	chase ChaseViewModel
	world MapViewModel

	snapshot state.Snapshot
}

// Option configures a Model.
type Option func(*Model)

// WithFrameInterval sets the delay between terminal frames. The simulation
// still runs at 60 ticks per second; each frame runs as many ticks as needed.
func WithFrameInterval(d time.Duration) Option {
	return func(m *Model) {
		if d <= 0 {
			d = time.Second / 30
		}
		m.frameInterval = d
		tick := time.Second / simRate
		m.stepsPerFrame = max(1, int(math.Round(float64(d)/float64(tick))))
	}
}

// WithImportCooldown sets the minimum time between two imports.
func WithImportCooldown(d time.Duration) Option {
	return func(m *Model) {
		if d <= 0 {
			m.importLimit = rate.NewLimiter(rate.Inf, 1)
			return
		}
		m.importLimit = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithStarfield replaces the background starfield.
func WithStarfield(f astro.Starfield) Option {
	return func(m *Model) {
		m.chase.stars = f
		m.world.stars = f
	}
}

// WithChunkSize sets the map's distance unit.
func WithChunkSize(size float64) Option {
	return func(m *Model) {
		m.world.chunkSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
			m.chase.textures.logger = l.Named("texture")
		}
	}
}

// WithClock sets the time source for key holds and the import cool-down.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new root UI model. opener may be nil, in which case every
// import request is treated as cancelled.
func New(stateMgr *state.Manager, opener archive.Opener, opts ...Option) Model {
	stars := astro.DefaultStarfield()
	m := Model{
		state:    stateMgr,
		opener:   opener,
		logger:   logging.Discard(),
		viewMode: ViewChase,
		now:      time.Now,
		held:     make(map[string]time.Time),
		chase:    NewChaseViewModel(stars, NewTextureCache(nil)),
		world:    NewMapViewModel(stars, astro.DefaultChunkSize),
	}
	WithFrameInterval(time.Second / 30)(&m)
	WithImportCooldown(600 * time.Millisecond)(&m)
	for _, opt := range opts {
		opt(&m)
	}
	m.snapshot = stateMgr.Snapshot()
	m.chase = m.chase.UpdateData(m.snapshot)
	m.world = m.world.UpdateData(m.snapshot)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.frameCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewChase
		case "2", "m":
			m.viewMode = ViewMap
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "i":
			m.requestImport()

		case "pgup":
			m.wheel++
		case "pgdown":
			m.wheel--

		default:
			if name, ok := holdKey(key); ok {
				m.press(name)
				break
			}
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := max(msg.Height-headerLines-footerLines, 1)
		m.chase = m.chase.SetSize(msg.Width, contentHeight)
		m.world = m.world.SetSize(msg.Width, contentHeight)

	case FrameMsg:
		cmds = append(cmds, m.frameCmd())
		m.frames++
		m.step()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewChase:
		m.chase, cmd = m.chase.Update(msg)
	case ViewMap:
		m.world, cmd = m.world.Update(msg)
	}
	return cmd
}

// holdKey maps flight keys to held controls.
func holdKey(key string) (string, bool) {
	switch key {
	case "w", "up":
		return holdThrust, true
	case "s", "down":
		return holdReverse, true
	case "a", "left":
		return holdLeft, true
	case "d", "right":
		return holdRight, true
	case " ", "space":
		return holdAscend, true
	case "c":
		return holdDescend, true
	}
	return "", false
}

func (m *Model) press(name string) {
	now := m.now()
	if deadline, ok := m.held[name]; ok && now.Before(deadline) {
		m.held[name] = now.Add(repeatHold)
		return
	}
	m.held[name] = now.Add(firstHold)
}

func (m Model) isHeld(name string, now time.Time) bool {
	deadline, ok := m.held[name]
	return ok && now.Before(deadline)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.wheel++
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.wheel--
	case msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress:
		m.rightHeld = true
		m.lastMouseX, m.lastMouseY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease:
		m.rightHeld = false
	case msg.Action == tea.MouseActionMotion && m.rightHeld:
		m.camDX += float64(msg.X-m.lastMouseX) * cellPixelsX
		m.camDY += float64(msg.Y-m.lastMouseY) * cellPixelsY
		m.lastMouseX, m.lastMouseY = msg.X, msg.Y
	}
}

// controls builds this frame's control state and consumes the one-shot
// deltas.
func (m *Model) controls() craft.Controls {
	now := m.now()
	ctrl := craft.Controls{
		Thrust:         m.isHeld(holdThrust, now),
		Reverse:        m.isHeld(holdReverse, now),
		YawLeft:        m.isHeld(holdLeft, now),
		YawRight:       m.isHeld(holdRight, now),
		Ascend:         m.isHeld(holdAscend, now),
		Descend:        m.isHeld(holdDescend, now),
		Wheel:          m.wheel,
		CameraOverride: m.rightHeld,
		CameraDX:       m.camDX,
		CameraDY:       m.camDY,
	}
	ctrl.Takeoff = ctrl.Ascend
	m.wheel, m.camDX, m.camDY = 0, 0, 0
	return ctrl
}

// step runs the simulation ticks for one frame and refreshes the views.
func (m *Model) step() {
	ctrl := m.controls()
	for i := 0; i < m.stepsPerFrame; i++ {
		m.state.Tick(ctrl)
		// Deltas apply once per frame.
		ctrl.Wheel, ctrl.CameraDX, ctrl.CameraDY = 0, 0, 0
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.snapshot = m.state.Snapshot()
	m.chase = m.chase.UpdateData(m.snapshot)
	m.world = m.world.UpdateData(m.snapshot)
}

// requestImport asks the opener for an archive and imports it next to the
// craft. Presses inside the cool-down are ignored.
func (m *Model) requestImport() {
	if !m.importLimit.AllowN(m.now(), 1) {
		return
	}
	if m.opener == nil {
		m.state.SetMessage(NoArchiveMessage)
		m.refresh()
		return
	}

	data, ok, err := m.opener.Open()
	switch {
	case err != nil:
		m.logger.Warn("open archive: %v", err)
		m.state.SetMessage(archive.StatusMessage(err))
	case !ok:
		m.state.SetMessage(NoArchiveMessage)
	default:
		if res, err := m.state.Import(data); err != nil {
			m.logger.Warn("import failed: %v", err)
		} else {
			m.logger.Info("imported %s %q: %d bodies", res.Format, res.Name, res.Bodies())
		}
	}
	m.refresh()
}

// NoArchiveMessage is shown when an import request finds nothing to open.
const NoArchiveMessage = "No editor ZIP selected"

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewChase:
		content = m.chase.View()
	case ViewMap:
		content = m.world.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + "\n" + m.renderTabs()
}

func (m Model) renderLogo() string {
	title := "  ◖ LS-SAUCER ◗"
	runes := []rune(title)

	var b strings.Builder
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Procedural Space Flight · v%s", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Creates a vibrant nebula effect: blue -> purple -> magenta -> pink
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
	var r, g, b float64

	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	// Vertical fade: brighter at top, darker toward bottom
	brightnessFactor := 1.0 - (yRatio * 0.5)
	r *= brightnessFactor
	g *= brightnessFactor
	b *= brightnessFactor

	clamp := func(v float64) int { return clampInt(int(v), 0, 255) }
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Chase", "[2] Map"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.frames/3%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render(truncateRunes("ERROR: "+m.snapshot.LastError.Error(), 60))
	case len(m.snapshot.Events) > 0:
		e := m.snapshot.Events[len(m.snapshot.Events)-1]
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" tick %d · %s %s", m.snapshot.Tick, e.Type, e.Body))
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" tick %d · %d groups", m.snapshot.Tick, len(m.snapshot.Groups)))
	}

	var help string
	switch m.viewMode {
	case ViewMap:
		help = dimStyle.Render("WASD fly | i: import | tab: view | q: quit")
	default:
		help = dimStyle.Render("WASD fly | space/c: up/down | PgUp/PgDn: pitch | RMB: camera | i: import | t: stars | l: labels")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

// ActiveView returns the active view.
func (m Model) ActiveView() ViewMode {
	return m.viewMode
}

// Snapshot returns the state the views last rendered.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
