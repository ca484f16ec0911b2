package state

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
)

// fixedGenerator serves hand-placed bodies and leaves every other chunk empty.
type fixedGenerator struct {
	size   float64
	bodies []*body.Body
}

func (g fixedGenerator) Generate(coord astro.ChunkCoord) []*body.Body {
	var out []*body.Body
	for _, b := range g.bodies {
		if astro.ChunkOf(b.Position, g.size) == coord {
			out = append(out, b)
		}
	}
	return out
}

func newTestManager(cfg Config, bodies ...*body.Body) *Manager {
	return NewManager(cfg, WithGenerator(fixedGenerator{size: cfg.ChunkSize, bodies: bodies}))
}

func zipOf(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// systemAtCraft builds a system whose bodies sit orbitDistance from the
// import point along +X.
func systemAtCraft(t *testing.T, name string) []byte {
	t.Helper()
	return zipOf(t, map[string]string{
		"system_data.json": `{"name":"` + name + `","bodies":[
			{"file":"sun.zip","orbitDistance":0},
			{"file":"planet.zip","orbitDistance":900,"orbitSpeed":1,"parentId":0}
		]}`,
		"sun.zip":    string(zipOf(t, map[string]string{"planet_data.json": `{"seed":"Helios","type":"sun","params":{"radius":100}}`})),
		"planet.zip": string(zipOf(t, map[string]string{"planet_data.json": `{"seed":"Far"}`})),
	})
}
