package astro

import "math"

// MapPoint is a world position flattened onto the top-down map, relative to
// the map center.
type MapPoint struct {
	X float64 // screen right, normalized units
	Y float64 // screen up, normalized units
	R float64 // true 3D distance from the center
	H float64 // height above (+) or below (-) the center plane
}

// ScaleMode defines how horizontal distances are mapped to map space.
type ScaleMode int

const (
	// ScaleLog compresses distance as log10(d/unit + 1).
	ScaleLog ScaleMode = iota

	// ScaleLocal is linear out to one chunk and clamps beyond it.
	ScaleLocal

	// ScaleWide is linear to one chunk, then logarithmic.
	ScaleWide
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleLog:
		return "log"
	case ScaleLocal:
		return "local"
	case ScaleWide:
		return "wide"
	default:
		return "?"
	}
}

// Next cycles through the scale modes.
func (m ScaleMode) Next() ScaleMode {
	return (m + 1) % 3
}

// ProjectionConfig configures the top-down map projection.
type ProjectionConfig struct {
	Unit  float64 // world units per normalized map unit (one chunk by default)
	Scale float64
	Mode  ScaleMode
}

// DefaultProjectionConfig returns a projection sized to the default chunk.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Unit:  DefaultChunkSize,
		Scale: 1.0,
		Mode:  ScaleLog,
	}
}

// ProjectTopDown flattens p onto the X/Z plane around center. World -Z is
// screen up so the map matches the craft's default heading.
func ProjectTopDown(p, center Vec3, cfg ProjectionConfig) MapPoint {
	d := p.Sub(center)
	unit := cfg.Unit
	if unit <= 0 {
		unit = DefaultChunkSize
	}

	horiz := math.Hypot(d.X, d.Z) / unit
	r := scaleDistance(horiz, cfg.Mode)
	angle := math.Atan2(-d.Z, d.X)

	return MapPoint{
		X: r * math.Cos(angle) * cfg.Scale,
		Y: r * math.Sin(angle) * cfg.Scale,
		R: d.Norm(),
		H: d.Y,
	}
}

func scaleDistance(u float64, mode ScaleMode) float64 {
	switch mode {
	case ScaleLocal:
		if u > 1 {
			return 1
		}
		return u
	case ScaleWide:
		if u <= 1 {
			return u * 0.5
		}
		return 0.5 + math.Log10(u+1)*0.5
	default:
		return math.Log10(u + 1)
	}
}
