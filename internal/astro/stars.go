package astro

import "math/rand/v2"

// Star field extents. The box wraps around the observer on every axis so the
// field never runs out no matter how far the craft travels.
const (
	StarFieldWidth  = 2800.0 // X and Z extent
	StarFieldHeight = 2000.0 // Y extent

	// DefaultStarCount is the backdrop density used when none is configured.
	DefaultStarCount = 1400

	starFieldSeed = 0x5eed_57a6
)

// Star is one background point in field-local coordinates.
type Star struct {
	Pos Vec3
}

// Starfield is a fixed cloud of background stars.
type Starfield struct {
	Stars []Star
}

// NewStarfield scatters count stars uniformly through the wrap box.
// The same count always produces the same field.
func NewStarfield(count int) Starfield {
	if count < 0 {
		count = 0
	}
	rng := rand.New(rand.NewPCG(starFieldSeed, uint64(count)))
	stars := make([]Star, count)
	for i := range stars {
		stars[i] = Star{Pos: Vec3{
			X: (rng.Float64() - 0.5) * StarFieldWidth,
			Y: (rng.Float64() - 0.5) * (StarFieldHeight - 200),
			Z: (rng.Float64() - 0.5) * StarFieldWidth,
		}}
	}
	return Starfield{Stars: stars}
}

// DefaultStarfield returns a field with DefaultStarCount stars.
func DefaultStarfield() Starfield {
	return NewStarfield(DefaultStarCount)
}

// Around returns every star wrapped into the box centred on center.
func (f Starfield) Around(center Vec3) []Vec3 {
	out := make([]Vec3, len(f.Stars))
	for i, s := range f.Stars {
		out[i] = Vec3{
			X: wrap(s.Pos.X-center.X, StarFieldWidth) + center.X,
			Y: wrap(s.Pos.Y-center.Y, StarFieldHeight) + center.Y,
			Z: wrap(s.Pos.Z-center.Z, StarFieldWidth) + center.Z,
		}
	}
	return out
}

// wrap folds d into [-extent/2, extent/2).
func wrap(d, extent float64) float64 {
	return floorMod(d, extent) - extent/2
}
