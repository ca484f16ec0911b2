package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/litescript/ls-saucer/internal/body"
)

// Manifest entry names recognized at the archive root.
const (
	PlanetManifest = "planet_data.json"
	SystemManifest = "system_data.json"
	GalaxyManifest = "galaxy_data.json"
	HeightmapEntry = "heightmap.png"
)

// fields reads a JSON object one key at a time. A key that is missing, null
// or of the wrong type yields the caller's default; wrong types also record a
// MalformedManifest warning.
type fields struct {
	entry    string
	obj      map[string]json.RawMessage
	warnings *[]*ImportError
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}
	return obj, nil
}

func newFields(entry string, obj map[string]json.RawMessage, warnings *[]*ImportError) fields {
	return fields{entry: entry, obj: obj, warnings: warnings}
}

func (f fields) warn(key string, format string, args ...interface{}) {
	if f.warnings == nil {
		return
	}
	*f.warnings = append(*f.warnings, &ImportError{
		Kind:  MalformedManifest,
		Entry: f.entry + ":" + key,
		Err:   fmt.Errorf(format, args...),
	})
}

// raw returns the value for key, treating JSON null as absent.
func (f fields) raw(key string) (json.RawMessage, bool) {
	v, ok := f.obj[key]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

// str accepts a string or a number, so numeric editor seeds still name bodies.
func (f fields) str(key, def string) string {
	v, ok := f.raw(key)
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	f.warn(key, "want string, got %s", v)
	return def
}

// numOpt accepts a finite number or a numeric string. NaN and the
// infinities are rejected like any other malformed value.
func (f fields) numOpt(key string) (float64, bool) {
	v, ok := f.raw(key)
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
		if err == nil {
			f.warn(key, "want finite number, got %s", v)
			return 0, false
		}
	}
	f.warn(key, "want number, got %s", v)
	return 0, false
}

func (f fields) num(key string, def float64) float64 {
	if n, ok := f.numOpt(key); ok {
		return n
	}
	return def
}

// intOpt reads a whole number. Fractional values are rejected.
func (f fields) intOpt(key string) (int, bool) {
	n, ok := f.numOpt(key)
	if !ok {
		return 0, false
	}
	if n != float64(int(n)) {
		f.warn(key, "want integer, got %v", n)
		return 0, false
	}
	return int(n), true
}

// boolean accepts true/false, their string forms, or 0/1.
func (f fields) boolean(key string, def bool) bool {
	v, ok := f.raw(key)
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n != 0
	}
	f.warn(key, "want bool, got %s", v)
	return def
}

// color reads a hex colour string.
func (f fields) color(key string, def body.Color) body.Color {
	v, ok := f.raw(key)
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		f.warn(key, "want hex colour, got %s", v)
		return def
	}
	c, ok := body.ParseHexColor(s, def)
	if !ok {
		f.warn(key, "invalid hex colour %q", s)
	}
	return c
}

// object returns the nested object at key. Missing keys yield an empty reader.
func (f fields) object(key string) fields {
	child := fields{entry: f.entry, warnings: f.warnings}
	v, ok := f.raw(key)
	if !ok {
		return child
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		f.warn(key, "want object, got %s", v)
		return child
	}
	child.obj = obj
	return child
}

// array returns the list at key, or nil.
func (f fields) array(key string) []json.RawMessage {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(v, &list); err != nil {
		f.warn(key, "want array, got %s", v)
		return nil
	}
	return list
}

// elem decodes list element i as an object.
func (f fields) elem(key string, i int, raw json.RawMessage) (fields, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		f.warn(fmt.Sprintf("%s[%d]", key, i), "want object, got %s", raw)
		return fields{}, false
	}
	return fields{entry: f.entry, obj: obj, warnings: f.warnings}, true
}

// planetDescriptor is the typed form of a planet manifest or an inline galaxy
// body, with defaults already applied.
type planetDescriptor struct {
	Name   string
	Kind   body.Kind
	Radius float64
	Color  body.Color
	Rings  *body.Rings

	OrbitDistance float64
	HasDistance   bool
	OrbitSpeed    float64

	Texture []byte
}

func parsePlanet(f fields) planetDescriptor {
	name := f.str("name", "")
	if name == "" {
		name = f.str("seed", body.DefaultName)
	}

	d := planetDescriptor{
		Name:       name,
		Kind:       body.ParseKind(strings.ToLower(f.str("type", "planet"))),
		Radius:     body.DefaultRadius,
		Color:      body.DefaultOceanColor,
		OrbitSpeed: body.DefaultOrbitSpeed,
	}

	params := f.object("params")
	if r, ok := params.numOpt("radius"); ok {
		if r > 0 {
			d.Radius = r
		} else {
			params.warn("radius", "radius must be positive, got %v", r)
		}
	}

	d.Color = f.object("colors").color("ocean", body.DefaultOceanColor)

	if params.boolean("enableRings", false) {
		factor := params.num("ringDiameter", body.DefaultRingFactor)
		if factor < 1 {
			params.warn("ringDiameter", "ring diameter must be at least 1, got %v", factor)
			factor = body.DefaultRingFactor
		}
		d.Rings = &body.Rings{
			OuterFactor: factor,
			InnerColor:  params.color("ringColorInner", body.DefaultRingInnerColor),
			OuterColor:  params.color("ringColorOuter", body.DefaultRingOuterColor),
		}
	}

	d.OrbitDistance, d.HasDistance = f.numOpt("orbitDistance")
	d.OrbitSpeed = f.num("orbitSpeed", body.DefaultOrbitSpeed)
	return d
}
