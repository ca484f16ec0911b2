package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/litescript/ls-saucer/internal/body"
)

// pngBytes encodes a w×h image whose left half is red and right half blue.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeTexture(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"small image keeps its size", 8, 4, 8, 4},
		{"large image is box filtered", 256, 128, textureW, textureH},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := DecodeTexture(pngBytes(t, tt.w, tt.h))
			if err != nil {
				t.Fatalf("DecodeTexture: %v", err)
			}
			if tex.w != tt.wantW || tex.h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", tex.w, tex.h, tt.wantW, tt.wantH)
			}
			red := body.Color{R: 1}
			blue := body.Color{B: 1}
			if got := tex.At(0.1, 0.5); got != red {
				t.Errorf("At(0.1) = %v, want red", got)
			}
			if got := tex.At(0.9, 0.5); got != blue {
				t.Errorf("At(0.9) = %v, want blue", got)
			}
			// u wraps, v clamps.
			if got := tex.At(1.1, 2); got != red {
				t.Errorf("At(1.1, 2) = %v, want red", got)
			}
		})
	}
}

func TestDecodeTextureInvalid(t *testing.T) {
	if _, err := DecodeTexture([]byte("not a png")); err == nil {
		t.Error("expected error for garbage payload")
	}
}

func TestTextureCacheDecodesOnce(t *testing.T) {
	c := NewTextureCache(nil)
	payload := pngBytes(t, 4, 2)

	first := c.Get("a", payload)
	second := c.Get("a", payload)
	if first == nil || first != second {
		t.Fatal("expected the same decoded texture for repeated lookups")
	}
	if c.Decodes() != 1 {
		t.Errorf("Decodes() = %d, want 1", c.Decodes())
	}

	// Failures are memoised too.
	for i := 0; i < 3; i++ {
		if tex := c.Get("bad", []byte("junk")); tex != nil {
			t.Error("expected nil texture for bad payload")
		}
	}
	if c.Decodes() != 2 {
		t.Errorf("Decodes() = %d, want 2", c.Decodes())
	}

	if tex := c.Get("none", nil); tex != nil || c.Decodes() != 2 {
		t.Error("empty payload should not decode")
	}
}
