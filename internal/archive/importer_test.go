package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
)

// buildZip writes entries in name order.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func planetZip(t *testing.T, manifest string) string {
	return string(buildZip(t, map[string]string{PlanetManifest: manifest}))
}

func testImporter() *Importer {
	return NewImporter(WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestImportPlanet(t *testing.T) {
	data := buildZip(t, map[string]string{
		PlanetManifest: `{"seed":"Kepler","type":"planet","params":{"radius":150},"colors":{"ocean":"#112233"}}`,
		HeightmapEntry: "not really a png",
	})
	ref := astro.Vec3{X: 10, Y: 20, Z: 30}

	res, err := testImporter().Import(data, ref)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Format != FormatPlanet {
		t.Errorf("Format = %v, want planet", res.Format)
	}
	if res.Message != "Loaded planet: Kepler" {
		t.Errorf("Message = %q", res.Message)
	}
	if len(res.Groups) != 1 || res.Groups[0].Len() != 1 {
		t.Fatalf("want one group with one body, got %+v", res.Groups)
	}

	b := res.Groups[0].Bodies[0]
	if b.Name != "Kepler" || b.Radius != 150 {
		t.Errorf("body = %q radius %v, want Kepler radius 150", b.Name, b.Radius)
	}
	if got := b.Color.Hex(); got != "#112233" {
		t.Errorf("Color = %s, want #112233", got)
	}
	if !b.HasTexture() {
		t.Error("heightmap should be carried as the texture")
	}
	if b.Rings != nil {
		t.Error("rings should be off by default")
	}

	off := b.Position.Sub(ref)
	if off.X < 800 || off.X > 1400 || off.Z < 800 || off.Z > 1400 {
		t.Errorf("horizontal offset %v outside [800,1400]", off)
	}
	if off.Y < 80 || off.Y > 300 {
		t.Errorf("vertical offset %v outside [80,300]", off.Y)
	}
	if !b.Stationary() {
		t.Error("a lone planet has no parent and must not move")
	}
}

func TestImportPlanetLenientFields(t *testing.T) {
	tests := []struct {
		name         string
		manifest     string
		wantName     string
		wantRadius   float64
		wantRings    float64 // 0 for none
		wantWarnings int
	}{
		{
			name:       "empty manifest takes defaults",
			manifest:   `{}`,
			wantName:   body.DefaultName,
			wantRadius: body.DefaultRadius,
		},
		{
			name:       "numeric seed and string radius",
			manifest:   `{"seed":42,"params":{"radius":"75"}}`,
			wantName:   "42",
			wantRadius: 75,
		},
		{
			name:         "bad radius falls back with warning",
			manifest:     `{"seed":"X","params":{"radius":"huge"}}`,
			wantName:     "X",
			wantRadius:   body.DefaultRadius,
			wantWarnings: 1,
		},
		{
			name:         "non-positive radius falls back with warning",
			manifest:     `{"seed":"X","params":{"radius":-5}}`,
			wantName:     "X",
			wantRadius:   body.DefaultRadius,
			wantWarnings: 1,
		},
		{
			name:         "NaN radius falls back with warning",
			manifest:     `{"seed":"N","params":{"radius":"NaN"}}`,
			wantName:     "N",
			wantRadius:   body.DefaultRadius,
			wantWarnings: 1,
		},
		{
			name:         "infinite radius falls back with warning",
			manifest:     `{"seed":"Huge","params":{"radius":"Infinity"}}`,
			wantName:     "Huge",
			wantRadius:   body.DefaultRadius,
			wantWarnings: 1,
		},
		{
			name:       "rings with custom diameter",
			manifest:   `{"seed":"R","params":{"enableRings":true,"ringDiameter":2.5}}`,
			wantName:   "R",
			wantRadius: body.DefaultRadius,
			wantRings:  2.5,
		},
		{
			name:         "rings with undersized diameter",
			manifest:     `{"seed":"R","params":{"enableRings":"true","ringDiameter":0.5}}`,
			wantName:     "R",
			wantRadius:   body.DefaultRadius,
			wantRings:    body.DefaultRingFactor,
			wantWarnings: 1,
		},
		{
			name:         "bad ocean colour",
			manifest:     `{"seed":"C","colors":{"ocean":"blue"}}`,
			wantName:     "C",
			wantRadius:   body.DefaultRadius,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testImporter().Import([]byte(planetZip(t, tt.manifest)), astro.Vec3{})
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			b := res.Groups[0].Bodies[0]
			if b.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", b.Name, tt.wantName)
			}
			if b.Radius != tt.wantRadius {
				t.Errorf("Radius = %v, want %v", b.Radius, tt.wantRadius)
			}
			switch {
			case tt.wantRings == 0 && b.Rings != nil:
				t.Errorf("unexpected rings %+v", b.Rings)
			case tt.wantRings != 0 && (b.Rings == nil || b.Rings.OuterFactor != tt.wantRings):
				t.Errorf("Rings = %+v, want factor %v", b.Rings, tt.wantRings)
			}
			if len(res.Warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings %v, want %d", len(res.Warnings), res.Warnings, tt.wantWarnings)
			}
			for _, w := range res.Warnings {
				if w.Kind != MalformedManifest {
					t.Errorf("warning kind = %v, want malformed manifest", w.Kind)
				}
			}
		})
	}
}

func TestImportSystemSkipsMissingAndBrokenEntries(t *testing.T) {
	data := buildZip(t, map[string]string{
		SystemManifest: `{"name":"Sol","bodies":[
			{"file":"sun.zip","orbitDistance":0},
			{"file":"gone.zip","orbitDistance":400},
			{"file":"broken.zip","orbitDistance":500},
			{"file":"earth.zip","orbitDistance":600,"orbitSpeed":0.5,"parentId":0},
			{"file":"moon.zip","orbitDistance":40,"parentId":1}
		]}`,
		"sun.zip":    planetZip(t, `{"seed":"Sun","type":"sun","params":{"radius":300}}`),
		"broken.zip": "definitely not a zip",
		"earth.zip":  planetZip(t, `{"seed":"Earth"}`),
		"moon.zip":   planetZip(t, `{"seed":"Moon","type":"moon","params":{"radius":20}}`),
	})
	ref := astro.Vec3{X: 100, Y: 50, Z: -100}

	res, err := testImporter().Import(data, ref)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Format != FormatSystem || res.Message != "Loaded system: Sol" {
		t.Errorf("Format %v, Message %q", res.Format, res.Message)
	}

	g := res.Groups[0]
	var names []string
	for _, b := range g.Bodies {
		names = append(names, b.Name)
	}
	if got := strings.Join(names, ","); got != "Sun,Earth,Moon" {
		t.Fatalf("bodies = %s, want Sun,Earth,Moon", got)
	}

	if g.Anchor != ref {
		t.Errorf("Anchor = %v, want sun position %v", g.Anchor, ref)
	}
	earth, moon := g.Bodies[1], g.Bodies[2]
	if earth.Orbit.Parent != g.Bodies[0] {
		t.Error("earth should orbit the sun")
	}
	if moon.Orbit.Parent != earth {
		t.Error("parentId indexes the bodies actually added, so the moon orbits earth")
	}
	if earth.Orbit.Distance != 600 || earth.Orbit.Speed != 0.5 {
		t.Errorf("earth orbit = %+v", earth.Orbit)
	}
	if want := ref.Add(astro.Vec3{X: 600}); earth.Position != want {
		t.Errorf("earth placed at %v, want %v", earth.Position, want)
	}

	kinds := map[ErrorKind]int{}
	for _, w := range res.Warnings {
		kinds[w.Kind]++
	}
	if kinds[MissingNestedEntry] != 1 || kinds[UnreadableArchive] != 1 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestImportNonFiniteOrbitFields(t *testing.T) {
	tests := []struct {
		name     string
		data     func(t *testing.T) []byte
		wantDist float64
	}{
		{
			name: "system entry",
			data: func(t *testing.T) []byte {
				return buildZip(t, map[string]string{
					SystemManifest: `{"bodies":[{"file":"a.zip","orbitDistance":"NaN","orbitSpeed":"-Infinity"}]}`,
					"a.zip":        planetZip(t, `{"seed":"A"}`),
				})
			},
			wantDist: systemPlacementOffset,
		},
		{
			name: "galaxy body",
			data: func(t *testing.T) []byte {
				return buildZip(t, map[string]string{
					GalaxyManifest: `{"systems":[{"bodies":[{"seed":"Ghost","orbitDistance":"NaN","orbitSpeed":"Inf"}]}]}`,
				})
			},
			wantDist: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testImporter().Import(tt.data(t), astro.Vec3{})
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			g := res.Groups[0]
			b := g.Bodies[0]
			if want := g.Anchor.Add(astro.Vec3{X: tt.wantDist}); b.Position != want {
				t.Errorf("Position = %v, want %v", b.Position, want)
			}
			if b.Orbit.Distance != 0 {
				t.Errorf("Orbit.Distance = %v, want 0", b.Orbit.Distance)
			}
			if b.Orbit.Speed != body.DefaultOrbitSpeed {
				t.Errorf("Orbit.Speed = %v, want default", b.Orbit.Speed)
			}
			if len(res.Warnings) != 2 {
				t.Errorf("want one warning per bad field, got %v", res.Warnings)
			}
			for _, w := range res.Warnings {
				if w.Kind != MalformedManifest {
					t.Errorf("warning kind = %v, want malformed manifest", w.Kind)
				}
			}
		})
	}
}

func TestImportSystemBadParentIsDropped(t *testing.T) {
	data := buildZip(t, map[string]string{
		SystemManifest: `{"bodies":[{"file":"a.zip","orbitDistance":100,"parentId":7}]}`,
		"a.zip":        planetZip(t, `{"seed":"A"}`),
	})
	res, err := testImporter().Import(data, astro.Vec3{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Name != DefaultSystemName {
		t.Errorf("Name = %q, want default", res.Name)
	}
	b := res.Groups[0].Bodies[0]
	if b.Orbit.Parent != nil || b.Orbit.ParentIndex != -1 {
		t.Errorf("out-of-range parent should be dropped, got %+v", b.Orbit)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("want one parent warning, got %v", res.Warnings)
	}
}

func TestImportGalaxyCapsSystems(t *testing.T) {
	var systems []string
	for i := 0; i < 6; i++ {
		systems = append(systems, `{"name":"S","bodies":[{"seed":"Star","type":"sun","params":{"radius":200}},{"seed":"P","orbitDistance":500}]}`)
	}
	data := buildZip(t, map[string]string{
		GalaxyManifest: `{"name":"Andromeda","systems":[` + strings.Join(systems, ",") + `]}`,
		// A galaxy manifest wins over anything else in the archive.
		PlanetManifest: `{"seed":"ignored"}`,
	})
	ref := astro.Vec3{X: 5000, Z: -5000}

	res, err := testImporter().Import(data, ref)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Format != FormatGalaxy || res.Message != "Loaded galaxy chunk: Andromeda" {
		t.Errorf("Format %v, Message %q", res.Format, res.Message)
	}
	if len(res.Groups) != DefaultGalaxySystemCap {
		t.Fatalf("got %d systems, want cap %d", len(res.Groups), DefaultGalaxySystemCap)
	}
	for _, g := range res.Groups {
		d := g.Anchor.Sub(ref)
		if d.X < -2000 || d.X > 2000 || d.Z < -2000 || d.Z > 2000 || d.Y != 0 {
			t.Errorf("anchor offset %v outside spread", d)
		}
		if g.Len() != 2 {
			t.Errorf("system has %d bodies, want 2", g.Len())
		}
		p := g.Bodies[1]
		if want := g.Anchor.Add(astro.Vec3{X: 500}); p.Position != want {
			t.Errorf("planet at %v, want %v", p.Position, want)
		}
		if !p.Stationary() {
			t.Error("galaxy bodies have no parent and stay put")
		}
	}
}

func TestImportGalaxyCustomCap(t *testing.T) {
	data := buildZip(t, map[string]string{
		GalaxyManifest: `{"systems":[{"bodies":[]},{"bodies":[]},{"bodies":[]}]}`,
	})
	im := NewImporter(WithGalaxySystemCap(2), WithRand(rand.New(rand.NewPCG(3, 4))))
	res, err := im.Import(data, astro.Vec3{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Groups) != 2 {
		t.Errorf("got %d systems, want 2", len(res.Groups))
	}
	if res.Groups[0].Name != DefaultGalaxySystemName {
		t.Errorf("system name = %q, want default", res.Groups[0].Name)
	}
}

func TestImportFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{"not a zip", []byte("hello"), UnreadableArchive},
		{"empty zip", buildZip(t, map[string]string{"readme.txt": "hi"}), UnrecognizedFormat},
		{"manifest is not json", buildZip(t, map[string]string{PlanetManifest: "{"}), MalformedManifest},
		{"manifest is an array", buildZip(t, map[string]string{SystemManifest: "[]"}), MalformedManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testImporter().Import(tt.data, astro.Vec3{})
			if err == nil {
				t.Fatalf("want error, got %+v", res)
			}
			if res != nil {
				t.Error("a failed import must not return a result")
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestImportTimeScale(t *testing.T) {
	im := NewImporter(WithTimeScale(0.9))
	res, err := im.Import([]byte(planetZip(t, `{}`)), astro.Vec3{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Groups[0].TimeScale != 0.9 {
		t.Errorf("TimeScale = %v, want 0.9", res.Groups[0].TimeScale)
	}
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown format", &ImportError{Kind: UnrecognizedFormat, Err: ErrUnknownFormat}, "Unknown editor file format"},
		{"short", errors.New("boom"), "Load error: boom"},
		{"truncated", errors.New(strings.Repeat("x", 60)), "Load error: " + strings.Repeat("x", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusMessage(tt.err); got != tt.want {
				t.Errorf("StatusMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
