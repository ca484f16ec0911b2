// Package archive decodes planet, system and galaxy editor archives into
// orbital groups ready to publish into the universe.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/logging"
)

// Format identifies which manifest an archive was decoded from.
type Format int

const (
	FormatPlanet Format = iota
	FormatSystem
	FormatGalaxy
)

func (f Format) String() string {
	switch f {
	case FormatPlanet:
		return "planet"
	case FormatSystem:
		return "system"
	case FormatGalaxy:
		return "galaxy"
	default:
		return "unknown"
	}
}

// Placement and naming defaults.
const (
	DefaultGalaxySystemCap = 4

	DefaultSystemName       = "Imported System"
	DefaultGalaxyName       = "Galaxy"
	DefaultGalaxySystemName = "Galaxy System"

	// systemPlacementOffset is used when a system entry has no orbitDistance.
	systemPlacementOffset = 300.0
	galaxySpread          = 2000.0
)

// Planets land some distance ahead of and above the reference point.
var (
	planetOffsetXZ = [2]float64{800, 1400}
	planetOffsetY  = [2]float64{80, 300}
)

// Result is everything one successful import produced.
type Result struct {
	Format   Format
	Name     string
	Groups   []*body.Group
	Warnings []*ImportError
	Message  string
}

// Bodies returns the number of bodies across all groups.
func (r *Result) Bodies() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Len()
	}
	return n
}

// Importer decodes editor archives. It is not safe for concurrent use; the
// random source is shared between calls.
type Importer struct {
	rng       *rand.Rand
	galaxyCap int
	timeScale float64
	logger    *logging.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithRand sets the random source used for placement and orbit phases.
func WithRand(r *rand.Rand) Option {
	return func(i *Importer) {
		if r != nil {
			i.rng = r
		}
	}
}

// WithGalaxySystemCap limits how many systems a galaxy import creates.
func WithGalaxySystemCap(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.galaxyCap = n
		}
	}
}

// WithTimeScale sets the orbit time scale of every group created.
func WithTimeScale(s float64) Option {
	return func(i *Importer) {
		if s > 0 {
			i.timeScale = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewImporter creates an importer with the given options.
func NewImporter(opts ...Option) *Importer {
	i := &Importer{
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		galaxyCap: DefaultGalaxySystemCap,
		timeScale: body.DefaultTimeScale,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import decodes data and places the result around ref. Galaxy manifests
// take precedence over system manifests, which take precedence over planet
// manifests. On error nothing is returned, so callers never publish a
// partial import.
func (im *Importer) Import(data []byte, ref astro.Vec3) (*Result, error) {
	entries, err := openZip(data)
	if err != nil {
		im.logger.Warn("import: %v", err)
		return nil, err
	}

	var res *Result
	switch {
	case entries[GalaxyManifest] != nil:
		res, err = im.importGalaxy(entries, ref)
	case entries[SystemManifest] != nil:
		res, err = im.importSystem(entries, ref)
	case entries[PlanetManifest] != nil:
		res, err = im.importPlanet(entries, ref)
	default:
		err = &ImportError{Kind: UnrecognizedFormat, Err: ErrUnknownFormat}
	}
	if err != nil {
		im.logger.Warn("import: %v", err)
		return nil, err
	}

	for _, w := range res.Warnings {
		im.logger.Warn("import %s: %v", res.Format, w)
	}
	im.logger.Info("imported %s %q: %d groups, %d bodies, %d warnings",
		res.Format, res.Name, len(res.Groups), res.Bodies(), len(res.Warnings))
	return res, nil
}

func (im *Importer) importPlanet(entries map[string]*zip.File, ref astro.Vec3) (*Result, error) {
	var warnings []*ImportError
	desc, err := readPlanet(entries, "", &warnings)
	if err != nil {
		return nil, err
	}

	pos := ref.Add(astro.Vec3{
		X: im.uniform(planetOffsetXZ[0], planetOffsetXZ[1]),
		Y: im.uniform(planetOffsetY[0], planetOffsetY[1]),
		Z: im.uniform(planetOffsetXZ[0], planetOffsetXZ[1]),
	})

	b := im.newBody(desc, pos)
	g := im.newGroup(desc.Name, pos)
	g.AddBody(b)
	g.ResolveParents()

	return &Result{
		Format:   FormatPlanet,
		Name:     desc.Name,
		Groups:   []*body.Group{g},
		Warnings: warnings,
		Message:  "Loaded planet: " + desc.Name,
	}, nil
}

// importSystem builds one group around ref from nested planet archives.
// Entries that are missing or unreadable are skipped with a warning.
func (im *Importer) importSystem(entries map[string]*zip.File, ref astro.Vec3) (*Result, error) {
	var warnings []*ImportError
	manifest, err := readManifest(entries, SystemManifest)
	if err != nil {
		return nil, err
	}
	f := newFields(SystemManifest, manifest, &warnings)

	name := f.str("name", DefaultSystemName)
	g := im.newGroup(name, ref)

	for i, raw := range f.array("bodies") {
		info, ok := f.elem("bodies", i, raw)
		if !ok {
			continue
		}
		file := info.str("file", "")
		if file == "" {
			info.warn(fmt.Sprintf("bodies[%d].file", i), "missing file name")
			continue
		}
		zf := entries[file]
		if zf == nil {
			warnings = append(warnings, &ImportError{
				Kind:  MissingNestedEntry,
				Entry: file,
				Err:   fmt.Errorf("not in archive"),
			})
			continue
		}

		desc, err := readNestedPlanet(zf, &warnings)
		if err != nil {
			warnings = append(warnings, asImportError(err, file))
			continue
		}

		offset := systemPlacementOffset
		dist, hasDist := info.numOpt("orbitDistance")
		if hasDist {
			offset = dist
		}
		pos := g.Anchor.Add(astro.Vec3{X: offset})
		b := im.newBody(desc, pos)
		b.Orbit.Distance = math.Max(dist, 0)
		b.Orbit.Speed = info.num("orbitSpeed", body.DefaultOrbitSpeed)
		if p, ok := info.intOpt("parentId"); ok && p >= 0 {
			b.Orbit.ParentIndex = p
		}
		g.AddBody(b)
	}

	for _, err := range g.ResolveParents() {
		warnings = append(warnings, &ImportError{Kind: MalformedManifest, Entry: SystemManifest + ":parentId", Err: err})
	}

	return &Result{
		Format:   FormatSystem,
		Name:     name,
		Groups:   []*body.Group{g},
		Warnings: warnings,
		Message:  "Loaded system: " + name,
	}, nil
}

// importGalaxy builds up to the system cap of groups from inline bodies,
// each anchored at a random spot around ref.
func (im *Importer) importGalaxy(entries map[string]*zip.File, ref astro.Vec3) (*Result, error) {
	var warnings []*ImportError
	manifest, err := readManifest(entries, GalaxyManifest)
	if err != nil {
		return nil, err
	}
	f := newFields(GalaxyManifest, manifest, &warnings)
	name := f.str("name", DefaultGalaxyName)

	var groups []*body.Group
	for i, raw := range f.array("systems") {
		if len(groups) >= im.galaxyCap {
			im.logger.Debug("galaxy %q: cap %d reached, ignoring remaining systems", name, im.galaxyCap)
			break
		}
		sys, ok := f.elem("systems", i, raw)
		if !ok {
			continue
		}

		anchor := ref.Add(astro.Vec3{
			X: im.uniform(-galaxySpread, galaxySpread),
			Z: im.uniform(-galaxySpread, galaxySpread),
		})
		g := im.newGroup(sys.str("name", DefaultGalaxySystemName), anchor)

		for j, braw := range sys.array("bodies") {
			bf, ok := sys.elem("bodies", j, braw)
			if !ok {
				continue
			}
			desc := parsePlanet(bf)
			dist := math.Max(desc.OrbitDistance, 0)
			b := im.newBody(desc, g.Anchor.Add(astro.Vec3{X: dist}))
			g.AddBody(b)
		}
		g.ResolveParents()
		groups = append(groups, g)
	}

	return &Result{
		Format:   FormatGalaxy,
		Name:     name,
		Groups:   groups,
		Warnings: warnings,
		Message:  "Loaded galaxy chunk: " + name,
	}, nil
}

func (im *Importer) newGroup(name string, anchor astro.Vec3) *body.Group {
	g := body.NewGroup(name, anchor)
	g.TimeScale = im.timeScale
	return g
}

// newBody builds a body from desc with a random orbit phase and no parent.
func (im *Importer) newBody(desc planetDescriptor, pos astro.Vec3) *body.Body {
	b := body.New(desc.Name, desc.Kind, pos, desc.Radius)
	b.Color = desc.Color
	b.Rings = desc.Rings
	b.Texture = desc.Texture
	b.SetOrbit(desc.OrbitDistance, desc.OrbitSpeed, im.rng.Float64()*2*math.Pi)
	return b
}

func (im *Importer) uniform(lo, hi float64) float64 {
	return lo + im.rng.Float64()*(hi-lo)
}

// openZip indexes the archive's entries by name.
func openZip(data []byte) (map[string]*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ImportError{Kind: UnreadableArchive, Err: err}
	}
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, dup := entries[f.Name]; !dup {
			entries[f.Name] = f
		}
	}
	return entries, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func readManifest(entries map[string]*zip.File, name string) (map[string]json.RawMessage, error) {
	data, err := readEntry(entries[name])
	if err != nil {
		return nil, &ImportError{Kind: UnreadableArchive, Entry: name, Err: err}
	}
	obj, err := decodeObject(data)
	if err != nil {
		return nil, &ImportError{Kind: MalformedManifest, Entry: name, Err: err}
	}
	return obj, nil
}

// readPlanet decodes the planet manifest and optional heightmap in entries.
// prefix names the enclosing archive entry in warnings.
func readPlanet(entries map[string]*zip.File, prefix string, warnings *[]*ImportError) (planetDescriptor, error) {
	if entries[PlanetManifest] == nil {
		return planetDescriptor{}, &ImportError{Kind: MissingNestedEntry, Entry: prefix + PlanetManifest, Err: fmt.Errorf("not in archive")}
	}
	manifest, err := readManifest(entries, PlanetManifest)
	if err != nil {
		return planetDescriptor{}, err
	}

	desc := parsePlanet(newFields(prefix+PlanetManifest, manifest, warnings))
	if hm := entries[HeightmapEntry]; hm != nil {
		tex, err := readEntry(hm)
		if err != nil {
			*warnings = append(*warnings, &ImportError{Kind: UnreadableArchive, Entry: prefix + HeightmapEntry, Err: err})
		} else {
			desc.Texture = tex
		}
	}
	return desc, nil
}

func readNestedPlanet(zf *zip.File, warnings *[]*ImportError) (planetDescriptor, error) {
	data, err := readEntry(zf)
	if err != nil {
		return planetDescriptor{}, &ImportError{Kind: UnreadableArchive, Err: err}
	}
	entries, err := openZip(data)
	if err != nil {
		return planetDescriptor{}, err
	}
	return readPlanet(entries, zf.Name+"/", warnings)
}

// asImportError tags err with entry when it does not already name one.
func asImportError(err error, entry string) *ImportError {
	ie, ok := err.(*ImportError)
	if !ok {
		return &ImportError{Kind: UnreadableArchive, Entry: entry, Err: err}
	}
	if ie.Entry == "" {
		ie.Entry = entry
	}
	return ie
}
