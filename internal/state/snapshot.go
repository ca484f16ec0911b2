package state

import (
	"github.com/litescript/ls-saucer/internal/archive"
	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/universe"
)

// CraftView is a copy of the craft's flight state.
type CraftView struct {
	Position     astro.Vec3
	Velocity     astro.Vec3
	Forward      astro.Vec3
	Yaw          float64
	Pitch        float64
	Speed        float64
	SpeedPercent int
	State        craft.State
	LandedOn     string
	Camera       craft.CameraPose
}

// BodyView is a copy of one body for drawing. Texture and Rings are shared
// with the live body and must be treated as read-only.
type BodyView struct {
	ID       string
	Name     string
	Kind     body.Kind
	Group    string // empty for procedural bodies
	Position astro.Vec3
	Radius   float64
	Color    body.Color
	Rings    *body.Rings
	Texture  []byte
	Textured bool
}

// GroupView summarizes an imported group.
type GroupView struct {
	Name   string
	Anchor astro.Vec3
	Sun    string
	Bodies []BodyView
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Tick    uint64
	Craft   CraftView
	Message string

	Sector       astro.ChunkCoord
	Nebula       body.Color
	ChunksLoaded int

	Active []BodyView // procedural bodies around the craft
	Groups []GroupView

	LastImport *archive.Result
	LastError  error
	Events     []Event
}

// Bodies returns every body in the snapshot, procedural first.
func (s Snapshot) Bodies() []BodyView {
	out := make([]BodyView, 0, len(s.Active))
	out = append(out, s.Active...)
	for _, g := range s.Groups {
		out = append(out, g.Bodies...)
	}
	return out
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.craft
	cv := CraftView{
		Position:     c.Position,
		Velocity:     c.Velocity,
		Forward:      c.Forward(),
		Yaw:          c.Yaw,
		Pitch:        c.Pitch,
		Speed:        c.Speed,
		SpeedPercent: c.SpeedPercent(),
		State:        c.State(),
		Camera:       c.Camera(),
	}
	if c.LandedOn != nil {
		cv.LandedOn = c.LandedOn.Name
	}

	active := make([]BodyView, len(m.active))
	for i, b := range m.active {
		active[i] = viewOf(b, "")
	}

	groups := make([]GroupView, len(m.groups))
	for i, g := range m.groups {
		gv := GroupView{Name: g.Name, Anchor: g.Anchor, Bodies: make([]BodyView, len(g.Bodies))}
		if sun := g.Sun(); sun != nil {
			gv.Sun = sun.Name
		}
		for j, b := range g.Bodies {
			gv.Bodies[j] = viewOf(b, g.Name)
		}
		groups[i] = gv
	}

	return Snapshot{
		Tick:         m.ticks,
		Craft:        cv,
		Message:      c.Message,
		Sector:       m.sector,
		Nebula:       universe.NebulaColor(m.sector),
		ChunksLoaded: m.universe.Len(),
		Active:       active,
		Groups:       groups,
		LastImport:   m.lastImport,
		LastError:    m.lastError,
		Events:       m.getEventsOrdered(),
	}
}

func viewOf(b *body.Body, group string) BodyView {
	return BodyView{
		ID:       b.ID,
		Name:     b.Name,
		Kind:     b.Kind,
		Group:    group,
		Position: b.Position,
		Radius:   b.Radius,
		Color:    b.Color,
		Rings:    b.Rings,
		Texture:  b.Texture,
		Textured: b.HasTexture(),
	}
}
