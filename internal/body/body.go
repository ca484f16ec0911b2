// Package body models celestial bodies and the orbital groups that own them.
package body

import (
	"github.com/google/uuid"

	"github.com/litescript/ls-saucer/internal/astro"
)

// Kind categorizes celestial bodies for placement and rendering.
type Kind int

const (
	KindPlanet Kind = iota
	KindSun
	KindMoon
	KindProcedural
)

// String returns the body kind name.
func (k Kind) String() string {
	switch k {
	case KindSun:
		return "sun"
	case KindPlanet:
		return "planet"
	case KindMoon:
		return "moon"
	case KindProcedural:
		return "procedural"
	default:
		return "unknown"
	}
}

// ParseKind maps an editor "type" string to a Kind.
// Anything unrecognized is a planet.
func ParseKind(s string) Kind {
	switch s {
	case "sun", "star":
		return KindSun
	case "moon":
		return KindMoon
	default:
		return KindPlanet
	}
}

// Defaults applied when a descriptor leaves a field out.
const (
	DefaultName        = "Unknown"
	DefaultRadius      = 100.0
	DefaultOrbitSpeed  = 0.2
	DefaultRingFactor  = 1.8
	RingInnerFactor    = 1.2
	StationaryDistance = 0.1
)

// Rings describes a planetary ring disc.
type Rings struct {
	OuterFactor float64 // outer radius as a multiple of the body radius, >= 1
	InnerColor  Color
	OuterColor  Color
}

// InnerRadius returns the inner ring edge for a body of the given radius.
func (r Rings) InnerRadius(radius float64) float64 {
	return radius * RingInnerFactor
}

// OuterRadius returns the outer ring edge for a body of the given radius.
func (r Rings) OuterRadius(radius float64) float64 {
	return radius * r.OuterFactor
}

// Orbit holds a body's circular orbit around a parent body.
type Orbit struct {
	Distance float64 // orbit radius in world units
	Speed    float64 // angular speed, radians per second before time scaling
	Angle    float64 // current angle in radians

	// ParentIndex is the index into the owning group's body list, or -1.
	// Parent is filled in by Group.ResolveParents.
	ParentIndex int
	Parent      *Body
}

// Body is one planet, sun, moon or generated planet.
type Body struct {
	ID       string
	Name     string
	Kind     Kind
	Position astro.Vec3
	Radius   float64
	Color    Color
	Rings    *Rings

	// Texture is the raw heightmap image, decoded lazily by the renderer.
	Texture []byte

	Orbit *Orbit
}

// New returns a body with a fresh ID and defaults for anything unset.
func New(name string, kind Kind, pos astro.Vec3, radius float64) *Body {
	if name == "" {
		name = DefaultName
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Body{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     kind,
		Position: pos,
		Radius:   radius,
		Color:    DefaultOceanColor,
	}
}

// Stationary reports whether orbit advancement leaves this body in place.
func (b *Body) Stationary() bool {
	return b.Orbit == nil || b.Orbit.Distance <= StationaryDistance || b.Orbit.Parent == nil
}

// HasTexture reports whether the body carries an image payload.
func (b *Body) HasTexture() bool {
	return len(b.Texture) > 0
}

// SetOrbit attaches orbit parameters without a parent.
func (b *Body) SetOrbit(distance, speed, angle float64) {
	if distance < 0 {
		distance = 0
	}
	b.Orbit = &Orbit{
		Distance:    distance,
		Speed:       speed,
		Angle:       angle,
		ParentIndex: -1,
	}
}
