package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/state"
)

// Scene constants.
const (
	fieldOfView = 66.0 // vertical, degrees
	nearPlane   = 1.0
	farPlane    = 6000.0
	fogDensity  = 0.00038
	ambient     = 0.2
	ringTilt    = 75.0 // degrees about the body's X axis

	// cellAspect is how many columns span the height of one row.
	cellAspect = 2.0
)

var (
	lightDir   = astro.Vec3{X: 0.6, Y: 1.0, Z: 0.7}.Normalized()
	starColor  = body.Color{R: 0.95, G: 0.97, B: 1.0}
	hullColor  = body.Color{R: 0.78, G: 0.80, B: 0.85}
	domeColor  = body.Color{R: 0.08, G: 1.0, B: 0.22}
	domeGlow   = 0.45
	hullRadius = 5.4
	hullScale  = astro.Vec3{X: 1.05, Y: 0.21, Z: 1.05}
	domeRadius = 2.9
	domeOffset = astro.Vec3{Y: 1.6}
)

// ChaseViewModel draws the scene from the chase camera behind the craft.
type ChaseViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	stars    astro.Starfield
	textures *TextureCache

	showStars  bool
	showLabels bool
}

// NewChaseViewModel creates a chase view over the given starfield.
func NewChaseViewModel(stars astro.Starfield, textures *TextureCache) ChaseViewModel {
	if textures == nil {
		textures = NewTextureCache(nil)
	}
	return ChaseViewModel{
		stars:      stars,
		textures:   textures,
		showStars:  true,
		showLabels: true,
	}
}

// SetSize updates the viewport size.
func (m ChaseViewModel) SetSize(width, height int) ChaseViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m ChaseViewModel) UpdateData(snapshot state.Snapshot) ChaseViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles view-local keys.
func (m ChaseViewModel) Update(msg tea.Msg) (ChaseViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "t":
			m.showStars = !m.showStars
		case "l":
			m.showLabels = !m.showLabels
		}
	}
	return m, nil
}

// View renders the scene above the HUD.
func (m ChaseViewModel) View() string {
	if m.width < 20 || m.height < 8 {
		return "Terminal too small for chase view"
	}
	canvasH := m.height - hudLines
	return m.render(m.width, canvasH).String() + "\n" + m.renderHUD()
}

// camera is a pinhole camera over the terminal grid.
type camera struct {
	eye              astro.Vec3
	fwd, right, up   astro.Vec3
	focal            float64 // rows per unit of tangent
	cx, cy           float64
	screenW, screenH int
}

func newCamera(pose craft.CameraPose, w, h int) camera {
	fwd := pose.Target.Sub(pose.Eye).Normalized()
	if fwd == (astro.Vec3{}) {
		fwd = astro.Vec3{Z: -1}
	}
	right := fwd.Cross(astro.Vec3{Y: 1}).Normalized()
	if right == (astro.Vec3{}) {
		right = astro.Vec3{X: 1}
	}
	return camera{
		eye:     pose.Eye,
		fwd:     fwd,
		right:   right,
		up:      right.Cross(fwd),
		focal:   float64(h) / 2 / math.Tan(astro.DegToRad(fieldOfView)/2),
		cx:      float64(w) / 2,
		cy:      float64(h) / 2,
		screenW: w,
		screenH: h,
	}
}

// project maps p to fractional screen coordinates. ok is false behind the
// near plane or past the far plane.
func (c camera) project(p astro.Vec3) (sx, sy, depth float64, ok bool) {
	d := p.Sub(c.eye)
	depth = d.Dot(c.fwd)
	if depth < nearPlane || depth > farPlane {
		return 0, 0, depth, false
	}
	sx = c.cx + d.Dot(c.right)/depth*c.focal*cellAspect
	sy = c.cy - d.Dot(c.up)/depth*c.focal
	return sx, sy, depth, true
}

// ray returns the unit direction through the center of cell (x, y).
func (c camera) ray(x, y int) astro.Vec3 {
	h := (float64(x) + 0.5 - c.cx) / (c.focal * cellAspect)
	v := -(float64(y) + 0.5 - c.cy) / c.focal
	return c.fwd.Add(c.right.Scale(h)).Add(c.up.Scale(v)).Normalized()
}

// bounds returns the screen rectangle that can contain a sphere of the given
// radius around center. Spheres the camera is close to or inside cover the
// whole screen.
func (c camera) bounds(center astro.Vec3, radius float64) (x0, y0, x1, y1 int, visible bool) {
	d := center.Sub(c.eye)
	depth := d.Dot(c.fwd)
	if depth+radius < nearPlane || depth-radius > farPlane {
		return 0, 0, 0, 0, false
	}
	if depth-radius < nearPlane*4 || d.Norm() < radius*1.5 {
		return 0, 0, c.screenW - 1, c.screenH - 1, true
	}
	sx, sy, _, _ := c.project(center)
	r := radius / (depth - radius) * c.focal
	x0 = clampInt(int(sx-r*cellAspect)-1, 0, c.screenW-1)
	x1 = clampInt(int(sx+r*cellAspect)+1, 0, c.screenW-1)
	y0 = clampInt(int(sy-r)-1, 0, c.screenH-1)
	y1 = clampInt(int(sy+r)+1, 0, c.screenH-1)
	if sx+r*cellAspect < 0 || sx-r*cellAspect >= float64(c.screenW) || sy+r < 0 || sy-r >= float64(c.screenH) {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1, y1, true
}

// shape is anything the renderer can ray-cast.
type shape interface {
	boundingSphere() (astro.Vec3, float64)
	hit(origin, dir astro.Vec3) (t float64, ch rune, col body.Color, ok bool)
}

// sphere is a lit, optionally textured ball.
type sphere struct {
	center  astro.Vec3
	radius  float64
	color   body.Color
	texture *Texture
	glow    float64
}

func (s sphere) boundingSphere() (astro.Vec3, float64) { return s.center, s.radius }

func (s sphere) hit(origin, dir astro.Vec3) (float64, rune, body.Color, bool) {
	t, ok := raySphere(origin, dir, s.center, s.radius)
	if !ok {
		return 0, 0, body.Color{}, false
	}
	n := origin.Add(dir.Scale(t)).Sub(s.center).Normalized()

	base := s.color
	if s.texture != nil {
		u := 0.5 + math.Atan2(n.Z, n.X)/(2*math.Pi)
		v := math.Acos(astro.Clamp(n.Y, -1, 1)) / math.Pi
		base = s.texture.At(u, v)
	}
	light := math.Min(1, ambient+math.Max(0, n.Dot(lightDir))+s.glow)
	return t, shadeGlyph(light), base.Scale(light), true
}

// raySphere returns the nearest positive hit distance.
func raySphere(origin, dir, center astro.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < nearPlane {
		t = -b + sq
	}
	if t < nearPlane {
		return 0, false
	}
	return t, true
}

// ring is a flat annulus tilted about the body's X axis.
type ring struct {
	center       astro.Vec3
	inner, outer float64
	innerColor   body.Color
	outerColor   body.Color
	normal       astro.Vec3
}

func newRing(center astro.Vec3, radius float64, r *body.Rings) ring {
	return ring{
		center:     center,
		inner:      r.InnerRadius(radius),
		outer:      r.OuterRadius(radius),
		innerColor: r.InnerColor,
		outerColor: r.OuterColor,
		normal:     astro.Vec3{Z: 1}.RotateX(ringTilt),
	}
}

func (r ring) boundingSphere() (astro.Vec3, float64) { return r.center, r.outer }

func (r ring) hit(origin, dir astro.Vec3) (float64, rune, body.Color, bool) {
	denom := dir.Dot(r.normal)
	if math.Abs(denom) < 1e-6 {
		return 0, 0, body.Color{}, false
	}
	t := r.center.Sub(origin).Dot(r.normal) / denom
	if t < nearPlane {
		return 0, 0, body.Color{}, false
	}
	dist := origin.Add(dir.Scale(t)).Dist(r.center)
	if dist < r.inner || dist > r.outer {
		return 0, 0, body.Color{}, false
	}
	f := 0.0
	if r.outer > r.inner {
		f = (dist - r.inner) / (r.outer - r.inner)
	}
	return t, '░', r.innerColor.Blend(r.outerColor, f), true
}

// hull is the saucer's flattened disc, an ellipsoid tilted about X then
// turned about Y.
type hull struct {
	center    astro.Vec3
	yaw, tilt float64
	semi      astro.Vec3
}

func (h hull) boundingSphere() (astro.Vec3, float64) {
	return h.center, math.Max(h.semi.X, math.Max(h.semi.Y, h.semi.Z))
}

func (h hull) toLocal(v astro.Vec3) astro.Vec3 {
	return v.RotateY(-h.yaw).RotateX(-h.tilt)
}

func (h hull) hit(origin, dir astro.Vec3) (float64, rune, body.Color, bool) {
	o := h.toLocal(origin.Sub(h.center))
	d := h.toLocal(dir)
	// Scale into unit-sphere space.
	os := astro.Vec3{X: o.X / h.semi.X, Y: o.Y / h.semi.Y, Z: o.Z / h.semi.Z}
	ds := astro.Vec3{X: d.X / h.semi.X, Y: d.Y / h.semi.Y, Z: d.Z / h.semi.Z}

	a := ds.Dot(ds)
	b := os.Dot(ds)
	c := os.Dot(os) - 1
	disc := b*b - a*c
	if disc < 0 {
		return 0, 0, body.Color{}, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t < nearPlane {
		return 0, 0, body.Color{}, false
	}

	p := o.Add(d.Scale(t))
	n := astro.Vec3{
		X: p.X / (h.semi.X * h.semi.X),
		Y: p.Y / (h.semi.Y * h.semi.Y),
		Z: p.Z / (h.semi.Z * h.semi.Z),
	}.RotateX(h.tilt).RotateY(h.yaw).Normalized()
	light := math.Min(1, ambient+math.Max(0, n.Dot(lightDir)))
	return t, shadeGlyph(light), hullColor.Scale(light), true
}

// sceneShapes builds the drawable shapes for a snapshot.
func (m ChaseViewModel) sceneShapes() []shape {
	var shapes []shape
	for _, b := range m.snapshot.Bodies() {
		var tex *Texture
		if b.Textured {
			tex = m.textures.Get(b.ID, b.Texture)
		}
		shapes = append(shapes, sphere{center: b.Position, radius: b.Radius, color: b.Color, texture: tex})
		if b.Rings != nil {
			shapes = append(shapes, newRing(b.Position, b.Radius, b.Rings))
		}
	}

	// Positive pitch is nose down, the opposite sense of RotateX.
	c := m.snapshot.Craft
	shapes = append(shapes,
		hull{
			center: c.Position,
			yaw:    c.Yaw,
			tilt:   -c.Pitch,
			semi:   hullScale.Scale(hullRadius),
		},
		sphere{
			center: c.Position.Add(domeOffset.RotateX(-c.Pitch).RotateY(c.Yaw)),
			radius: domeRadius,
			color:  domeColor,
			glow:   domeGlow,
		},
	)
	return shapes
}

// render ray-casts the scene into a w×h canvas.
func (m ChaseViewModel) render(w, h int) *canvas {
	nebula := m.snapshot.Nebula
	cv := newCanvas(w, h, nebula)
	cam := newCamera(m.snapshot.Craft.Camera, w, h)

	if m.showStars {
		for _, p := range m.stars.Around(m.snapshot.Craft.Position) {
			sx, sy, depth, ok := cam.project(p)
			if !ok {
				continue
			}
			cv.set(int(sx), int(sy), '·', fog(starColor, nebula, depth), depth)
		}
	}

	for _, s := range m.sceneShapes() {
		center, radius := s.boundingSphere()
		x0, y0, x1, y1, visible := cam.bounds(center, radius)
		if !visible {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				t, ch, col, ok := s.hit(cam.eye, cam.ray(x, y))
				if !ok || t > farPlane {
					continue
				}
				cv.set(x, y, ch, fog(col, nebula, t), t)
			}
		}
	}

	if m.showLabels {
		m.drawLabels(cv, cam)
	}
	return cv
}

// drawLabels names the bodies whose centers are on screen, nearest last so
// it wins overlaps.
func (m ChaseViewModel) drawLabels(cv *canvas, cam camera) {
	type label struct {
		x, y  int
		depth float64
		text  string
	}
	var labels []label
	for _, b := range m.snapshot.Bodies() {
		sx, sy, depth, ok := cam.project(b.Position)
		if !ok || depth > farPlane/2 {
			continue
		}
		r := b.Radius / depth * cam.focal
		labels = append(labels, label{
			x:     int(sx) - len([]rune(b.Name))/2,
			y:     int(sy - r - 1),
			depth: depth,
			text:  b.Name,
		})
	}
	for i := 1; i < len(labels); i++ {
		for j := i; j > 0 && labels[j].depth > labels[j-1].depth; j-- {
			labels[j], labels[j-1] = labels[j-1], labels[j]
		}
	}
	for _, l := range labels {
		cv.text(l.x, l.y, l.text, labelColor)
	}
}

var labelColor = body.Color{R: 0.85, G: 0.85, B: 0.9}

// fog blends col toward the nebula with squared-exponential falloff.
func fog(col, nebula body.Color, dist float64) body.Color {
	f := math.Exp(-math.Pow(fogDensity*dist, 2))
	return nebula.Blend(col, f)
}

// hudLines is the height of the HUD under the scene.
const hudLines = 3

func (m ChaseViewModel) renderHUD() string {
	msgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F2E94E")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Bold(true)

	s := m.snapshot
	var b strings.Builder

	msg := msgStyle
	if s.Message == craft.BounceMessage {
		msg = warnStyle
	}
	b.WriteString("  " + msg.Render(s.Message) + "\n")

	b.WriteString("  " + labelStyle.Render("SPEED: ") + valueStyle.Render(fmt.Sprintf("%d%%", s.Craft.SpeedPercent)))
	b.WriteString("  " + speedBar(s.Craft.SpeedPercent, 20))
	if s.Craft.State == craft.Landed {
		b.WriteString("  " + labelStyle.Render("LANDED: ") + valueStyle.Render(s.Craft.LandedOn))
	}
	b.WriteString("\n")

	b.WriteString("  " + labelStyle.Render("SECTOR: ") + valueStyle.Render(s.Sector.String()))
	if name, dist, ok := nearestBody(s); ok {
		b.WriteString("  " + labelStyle.Render("NEAREST: ") + valueStyle.Render(fmt.Sprintf("%s %.0f", name, dist)))
	}
	return b.String()
}

func speedBar(percent, width int) string {
	filled := clampInt(percent*width/100, 0, width)
	on := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	return on.Render(strings.Repeat("█", filled)) + off.Render(strings.Repeat("░", width-filled))
}

// nearestBody returns the body whose surface is closest to the craft.
func nearestBody(s state.Snapshot) (string, float64, bool) {
	best := math.Inf(1)
	name := ""
	for _, b := range s.Bodies() {
		d := s.Craft.Position.Dist(b.Position) - b.Radius
		if d < best {
			best, name = d, b.Name
		}
	}
	return name, math.Max(0, best), name != ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
