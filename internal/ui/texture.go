package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/logging"
)

// Texture grid size. Heightmaps are sampled down to this many cells so
// per-frame lookups stay cheap.
const (
	textureW = 64
	textureH = 32
)

// Texture is a downsampled equirectangular surface map.
type Texture struct {
	w, h  int
	cells []body.Color
}

// At samples the texture at longitude u and latitude v, both in [0, 1].
// u wraps; v clamps.
func (t *Texture) At(u, v float64) body.Color {
	u -= math.Floor(u)
	x := int(u * float64(t.w))
	y := int(v * float64(t.h))
	if x >= t.w {
		x = t.w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= t.h {
		y = t.h - 1
	}
	return t.cells[y*t.w+x]
}

// DecodeTexture decodes a PNG and box-filters it down to the texture grid.
func DecodeTexture(data []byte) (*Texture, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode heightmap: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode heightmap: empty image")
	}

	w, h := min(textureW, b.Dx()), min(textureH, b.Dy())
	t := &Texture{w: w, h: h, cells: make([]body.Color, w*h)}
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			t.cells[ty*w+tx] = averageRegion(img, image.Rect(
				b.Min.X+tx*b.Dx()/w, b.Min.Y+ty*b.Dy()/h,
				b.Min.X+(tx+1)*b.Dx()/w, b.Min.Y+(ty+1)*b.Dy()/h,
			))
		}
	}
	return t, nil
}

func averageRegion(img image.Image, r image.Rectangle) body.Color {
	var sr, sg, sb float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += float64(cr)
			sg += float64(cg)
			sb += float64(cb)
			n++
		}
	}
	if n == 0 {
		return body.Color{}
	}
	scale := float64(n) * 0xffff
	return body.Color{R: sr / scale, G: sg / scale, B: sb / scale}
}

// TextureCache decodes each body's heightmap the first time it is drawn.
// Failures are remembered too, so a bad image is decoded once and then
// drawn untextured.
type TextureCache struct {
	entries map[string]*Texture
	decodes int
	logger  *logging.Logger
}

// NewTextureCache creates an empty cache.
func NewTextureCache(logger *logging.Logger) *TextureCache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &TextureCache{entries: make(map[string]*Texture), logger: logger}
}

// Get returns the decoded texture for a body, or nil if it has none or the
// payload could not be decoded.
func (c *TextureCache) Get(id string, payload []byte) *Texture {
	if len(payload) == 0 {
		return nil
	}
	if t, ok := c.entries[id]; ok {
		return t
	}

	c.decodes++
	t, err := DecodeTexture(payload)
	if err != nil {
		c.logger.Warn("texture %s: %v", id, err)
		t = nil
	}
	c.entries[id] = t
	return t
}

// Decodes returns how many payloads have been decoded.
func (c *TextureCache) Decodes() int {
	return c.decodes
}
