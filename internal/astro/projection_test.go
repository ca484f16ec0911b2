package astro

import (
	"math"
	"testing"
)

func TestProjectTopDown(t *testing.T) {
	cfg := ProjectionConfig{Unit: 100, Scale: 1, Mode: ScaleLocal}
	center := Vec3{X: 10, Y: 0, Z: 10}

	tests := []struct {
		name  string
		p     Vec3
		wantX float64
		wantY float64
		wantH float64
	}{
		{"center maps to origin", center, 0, 0, 0},
		{"east is right", Vec3{X: 60, Y: 0, Z: 10}, 0.5, 0, 0},
		{"negative z is up", Vec3{X: 10, Y: 5, Z: -40}, 0, 0.5, 5},
		{"clamped past one unit", Vec3{X: 510, Y: 0, Z: 10}, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectTopDown(tt.p, center, cfg)
			if math.Abs(got.X-tt.wantX) > 1e-9 || math.Abs(got.Y-tt.wantY) > 1e-9 {
				t.Errorf("ProjectTopDown = (%v, %v), want (%v, %v)", got.X, got.Y, tt.wantX, tt.wantY)
			}
			if got.H != tt.wantH {
				t.Errorf("H = %v, want %v", got.H, tt.wantH)
			}
		})
	}
}

func TestScaleModesMonotonic(t *testing.T) {
	for _, mode := range []ScaleMode{ScaleLog, ScaleLocal, ScaleWide} {
		t.Run(mode.String(), func(t *testing.T) {
			prev := -1.0
			for u := 0.0; u <= 5; u += 0.25 {
				r := scaleDistance(u, mode)
				if r < prev {
					t.Fatalf("scaleDistance(%v) = %v, less than previous %v", u, r, prev)
				}
				prev = r
			}
		})
	}
}

func TestScaleModeNextCycles(t *testing.T) {
	m := ScaleLog
	for i := 0; i < 3; i++ {
		m = m.Next()
	}
	if m != ScaleLog {
		t.Errorf("three Next calls = %v, want %v", m, ScaleLog)
	}
}
