package body

import (
	"fmt"
	"math"
	"sort"

	"github.com/litescript/ls-saucer/internal/astro"
)

// DefaultTimeScale slows orbital motion down to a watchable pace.
const DefaultTimeScale = 0.3

// Group is a named collection of bodies sharing one anchor. Body order is
// significant: orbit parents are referenced by index into Bodies.
type Group struct {
	Name      string
	Bodies    []*Body
	Anchor    astro.Vec3
	TimeScale float64

	hasSun bool
	order  []int // parent-first update order
	dirty  bool
}

// NewGroup creates an empty group anchored at fallback until a sun is added.
func NewGroup(name string, fallback astro.Vec3) *Group {
	return &Group{
		Name:      name,
		Anchor:    fallback,
		TimeScale: DefaultTimeScale,
	}
}

// AddBody appends b. The first sun added becomes the group's anchor; later
// suns do not move it.
func (g *Group) AddBody(b *Body) {
	g.Bodies = append(g.Bodies, b)
	if b.Kind == KindSun && !g.hasSun {
		g.Anchor = b.Position
		g.hasSun = true
	}
	g.dirty = true
}

// Sun returns the body that anchors the group, or nil.
func (g *Group) Sun() *Body {
	if !g.hasSun {
		return nil
	}
	for _, b := range g.Bodies {
		if b.Kind == KindSun {
			return b
		}
	}
	return nil
}

// Len returns the number of bodies.
func (g *Group) Len() int {
	return len(g.Bodies)
}

// ResolveParents links every ParentIndex to its body once the sequence is
// complete. Out-of-range, self-referential and cycle-closing references are
// dropped (the body becomes anchor-relative) and reported; none is fatal.
func (g *Group) ResolveParents() []error {
	var errs []error
	n := len(g.Bodies)

	for _, b := range g.Bodies {
		if b.Orbit != nil {
			b.Orbit.Parent = nil
		}
	}

	for i, b := range g.Bodies {
		if b.Orbit == nil || b.Orbit.ParentIndex < 0 {
			continue
		}
		p := b.Orbit.ParentIndex
		switch {
		case p >= n:
			errs = append(errs, fmt.Errorf("%s: parent index %d out of range (%d bodies)", b.Name, p, n))
		case p == i:
			errs = append(errs, fmt.Errorf("%s: body cannot orbit itself", b.Name))
		case g.reaches(p, i):
			errs = append(errs, fmt.Errorf("%s: parent index %d would form a cycle", b.Name, p))
		default:
			b.Orbit.Parent = g.Bodies[p]
			continue
		}
		b.Orbit.ParentIndex = -1
	}

	g.order = g.updateOrder()
	g.dirty = false
	return errs
}

// reaches reports whether walking resolved parents upward from index from
// arrives at index target.
func (g *Group) reaches(from, target int) bool {
	for steps := 0; steps <= len(g.Bodies); steps++ {
		if from == target {
			return true
		}
		o := g.Bodies[from].Orbit
		if o == nil || o.Parent == nil {
			return false
		}
		from = o.ParentIndex
	}
	return true
}

func (g *Group) updateOrder() []int {
	depth := make([]int, len(g.Bodies))
	for i := range g.Bodies {
		d := 0
		for j := i; ; d++ {
			o := g.Bodies[j].Orbit
			if o == nil || o.Parent == nil {
				break
			}
			j = o.ParentIndex
		}
		depth[i] = d
	}

	order := make([]int, len(g.Bodies))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return depth[order[a]] < depth[order[b]]
	})
	return order
}

// Advance moves every orbiting body along its circle by dt seconds. Parents
// move before their children so moons track the planet's new position.
func (g *Group) Advance(dt float64) {
	if g.dirty || len(g.order) != len(g.Bodies) {
		g.ResolveParents()
	}

	for _, idx := range g.order {
		b := g.Bodies[idx]
		if b.Stationary() {
			continue
		}
		o := b.Orbit
		o.Angle += o.Speed * dt * g.TimeScale
		parent := o.Parent.Position
		b.Position = astro.Vec3{
			X: parent.X + math.Cos(o.Angle)*o.Distance,
			Y: parent.Y,
			Z: parent.Z + math.Sin(o.Angle)*o.Distance,
		}
	}
}
