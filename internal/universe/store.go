package universe

import (
	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
)

// Store caches generated chunks for the life of the process. A chunk is
// generated at most once; its bodies are never replaced.
//
// Store is owned by the tick loop and is not safe for concurrent use.
type Store struct {
	chunkSize float64
	generator Generator
	chunks    map[astro.ChunkCoord][]*body.Body
}

// NewStore creates a store generating chunks of chunkSize with gen.
// A nil gen uses the procedural generator.
func NewStore(chunkSize float64, gen Generator) *Store {
	if chunkSize <= 0 {
		chunkSize = astro.DefaultChunkSize
	}
	if gen == nil {
		gen = NewProceduralGenerator(chunkSize)
	}
	return &Store{
		chunkSize: chunkSize,
		generator: gen,
		chunks:    make(map[astro.ChunkCoord][]*body.Body),
	}
}

// ChunkSize returns the sector edge length.
func (s *Store) ChunkSize() float64 {
	return s.chunkSize
}

// ChunkOf returns the sector containing pos.
func (s *Store) ChunkOf(pos astro.Vec3) astro.ChunkCoord {
	return astro.ChunkOf(pos, s.chunkSize)
}

// Query returns the bodies of the 3×3×3 block of chunks around observer,
// generating any chunk not seen before. Repeated calls return the same
// body pointers.
func (s *Store) Query(observer astro.Vec3) []*body.Body {
	center := s.ChunkOf(observer)

	var active []*body.Body
	for _, coord := range center.Neighborhood() {
		active = append(active, s.ensure(coord)...)
	}
	return active
}

// Chunk returns a cached chunk without generating it.
func (s *Store) Chunk(coord astro.ChunkCoord) ([]*body.Body, bool) {
	bodies, ok := s.chunks[coord]
	return bodies, ok
}

// Len returns the number of cached chunks.
func (s *Store) Len() int {
	return len(s.chunks)
}

func (s *Store) ensure(coord astro.ChunkCoord) []*body.Body {
	if bodies, ok := s.chunks[coord]; ok {
		return bodies
	}
	bodies := s.generator.Generate(coord)
	s.chunks[coord] = bodies
	return bodies
}
