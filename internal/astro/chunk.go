package astro

import (
	"fmt"
	"math"
)

// DefaultChunkSize is the edge length of one sector cube in world units.
const DefaultChunkSize = 2000.0

// ChunkCoord identifies one sector cube of world space.
type ChunkCoord struct {
	X, Y, Z int
}

// String formats the coordinate the way the HUD shows it.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("%d, %d, %d", c.X, c.Y, c.Z)
}

// Add offsets the coordinate by whole chunks.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Origin returns the world position of the chunk's minimum corner.
func (c ChunkCoord) Origin(size float64) Vec3 {
	size = sanitizeChunkSize(size)
	return Vec3{
		X: float64(c.X) * size,
		Y: float64(c.Y) * size,
		Z: float64(c.Z) * size,
	}
}

// Neighborhood returns the 27 coordinates surrounding c (offsets -1..+1 on
// each axis, c included), ordered by x, then y, then z.
func (c ChunkCoord) Neighborhood() []ChunkCoord {
	out := make([]ChunkCoord, 0, 27)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				out = append(out, c.Add(dx, dy, dz))
			}
		}
	}
	return out
}

// ChunkOf maps a position to its chunk by floor division, so positions just
// below zero land in chunk -1 rather than 0. A non-positive size falls back
// to DefaultChunkSize.
func ChunkOf(p Vec3, size float64) ChunkCoord {
	size = sanitizeChunkSize(size)
	return ChunkCoord{
		X: int(math.Floor(p.X / size)),
		Y: int(math.Floor(p.Y / size)),
		Z: int(math.Floor(p.Z / size)),
	}
}

func sanitizeChunkSize(size float64) float64 {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return DefaultChunkSize
	}
	return size
}
