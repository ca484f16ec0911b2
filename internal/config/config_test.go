package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"SAUCER_CHUNK_SIZE", "SAUCER_ORBIT_TIME_SCALE", "SAUCER_STAR_COUNT",
	"SAUCER_MAX_SPEED", "SAUCER_FRAME_RATE", "SAUCER_GALAXY_SYSTEM_CAP",
	"SAUCER_IMPORT_COOLDOWN_MS", "SAUCER_LOG_LEVEL", "SAUCER_LOG_FILE",
}

// clearEnv blanks every setting; blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
	if got := cfg.Display.FrameInterval(); got != time.Second/30 {
		t.Errorf("FrameInterval = %v", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAUCER_CHUNK_SIZE", "500")
	t.Setenv("SAUCER_MAX_SPEED", "60.5")
	t.Setenv("SAUCER_IMPORT_COOLDOWN_MS", "250")
	t.Setenv("SAUCER_LOG_LEVEL", "debug")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Universe.ChunkSize != 500 || cfg.Flight.MaxSpeed != 60.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Import.Cooldown != 250*time.Millisecond {
		t.Errorf("Cooldown = %v", cfg.Import.Cooldown)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "saucer.env")
	if err := os.WriteFile(path, []byte("SAUCER_STAR_COUNT=99\nSAUCER_FRAME_RATE=60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv leaves already-set variables alone, and blank counts as set,
	// so drop them for the keys the file provides.
	os.Unsetenv("SAUCER_STAR_COUNT")
	os.Unsetenv("SAUCER_FRAME_RATE")
	t.Cleanup(func() {
		os.Unsetenv("SAUCER_STAR_COUNT")
		os.Unsetenv("SAUCER_FRAME_RATE")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Universe.StarCount != 99 || cfg.Display.FrameRate != 60 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"SAUCER_CHUNK_SIZE", "wide", "SAUCER_CHUNK_SIZE"},
		{"SAUCER_CHUNK_SIZE", "-1", "must be positive"},
		{"SAUCER_MAX_SPEED", "0", "must be positive"},
		{"SAUCER_FRAME_RATE", "1000", "between 1 and 240"},
		{"SAUCER_GALAXY_SYSTEM_CAP", "0", "at least 1"},
		{"SAUCER_STAR_COUNT", "3.5", "SAUCER_STAR_COUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load(missingEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
