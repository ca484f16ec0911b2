// Package universe generates and caches the procedural sectors the craft
// flies through.
package universe

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
)

// Generated body bounds.
const (
	MaxBodiesPerChunk = 2
	MinBodyRadius     = 80.0
	MaxBodyRadius     = 250.0
)

// Independent streams drawn from the same coordinate seed.
const (
	streamBodies uint64 = 0x9e3779b97f4a7c15
	streamNebula uint64 = 0xc2b2ae3d27d4eb4f
)

// bodyNamespace scopes generated body IDs.
var bodyNamespace = uuid.MustParse("6f1c1d0e-4b8a-5c39-9a57-2f3d5e7a9b10")

// Generator produces the bodies of one chunk.
type Generator interface {
	Generate(coord astro.ChunkCoord) []*body.Body
}

// ProceduralGenerator populates chunks from a seed derived only from the
// chunk coordinate, so a chunk always regenerates identically.
type ProceduralGenerator struct {
	ChunkSize float64
}

// NewProceduralGenerator returns a generator for chunks of the given size.
func NewProceduralGenerator(chunkSize float64) ProceduralGenerator {
	if chunkSize <= 0 {
		chunkSize = astro.DefaultChunkSize
	}
	return ProceduralGenerator{ChunkSize: chunkSize}
}

// Generate returns 0-2 stationary planets placed inside the chunk cube.
func (g ProceduralGenerator) Generate(coord astro.ChunkCoord) []*body.Body {
	size := g.ChunkSize
	if size <= 0 {
		size = astro.DefaultChunkSize
	}
	rng := coordRand(coord, streamBodies)
	origin := coord.Origin(size)

	count := rng.IntN(MaxBodiesPerChunk + 1)
	bodies := make([]*body.Body, 0, count)
	for i := 0; i < count; i++ {
		pos := astro.Vec3{
			X: origin.X + rng.Float64()*size,
			Y: origin.Y + rng.Float64()*size,
			Z: origin.Z + rng.Float64()*size,
		}
		radius := MinBodyRadius + rng.Float64()*(MaxBodyRadius-MinBodyRadius)
		color := body.Color{R: rng.Float64(), G: rng.Float64(), B: rng.Float64()}

		key := fmt.Sprintf("%d:%d:%d:%d", coord.X, coord.Y, coord.Z, i)
		bodies = append(bodies, &body.Body{
			ID:       uuid.NewSHA1(bodyNamespace, []byte(key)).String(),
			Name:     fmt.Sprintf("PX-%d.%d.%d/%d", coord.X, coord.Y, coord.Z, i),
			Kind:     body.KindProcedural,
			Position: pos,
			Radius:   radius,
			Color:    color,
		})
	}
	return bodies
}

// NebulaColor returns the background tint of a sector.
func NebulaColor(coord astro.ChunkCoord) body.Color {
	rng := coordRand(coord, streamNebula)
	return body.Color{
		R: 0.01 + rng.Float64()*0.16,
		G: rng.Float64() * 0.07,
		B: 0.03 + rng.Float64()*0.17,
	}
}

// coordRand returns a fresh deterministic stream for a coordinate.
func coordRand(coord astro.ChunkCoord, stream uint64) *rand.Rand {
	seed := coordSeed(coord)
	return rand.New(rand.NewPCG(seed, seed^stream))
}

func coordSeed(coord astro.ChunkCoord) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(coord.X)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(coord.Y)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(coord.Z)))
	return xxhash.Sum64(buf[:])
}
