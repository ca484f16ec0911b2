// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Universe UniverseConfig
	Flight   FlightConfig
	Display  DisplayConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

type UniverseConfig struct {
	ChunkSize      float64
	OrbitTimeScale float64
	StarCount      int
}

type FlightConfig struct {
	MaxSpeed float64
}

type DisplayConfig struct {
	FrameRate int
}

type ImportConfig struct {
	GalaxySystemCap int
	Cooldown        time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

// FrameInterval is the delay between terminal frames.
func (d DisplayConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(d.FrameRate)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Universe: UniverseConfig{ChunkSize: 2000, OrbitTimeScale: 0.3, StarCount: 1400},
		Flight:   FlightConfig{MaxSpeed: 42},
		Display:  DisplayConfig{FrameRate: 30},
		Import:   ImportConfig{GalaxySystemCap: 4, Cooldown: 600 * time.Millisecond},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads envFiles (".env" when none are given) into the process
// environment without overriding it, then builds and validates a Config.
// A missing env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg, err := load()
	if err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func load() (Config, error) {
	cfg := Default()
	p := parser{}

	cfg.Universe.ChunkSize = p.float("SAUCER_CHUNK_SIZE", cfg.Universe.ChunkSize)
	cfg.Universe.OrbitTimeScale = p.float("SAUCER_ORBIT_TIME_SCALE", cfg.Universe.OrbitTimeScale)
	cfg.Universe.StarCount = p.int("SAUCER_STAR_COUNT", cfg.Universe.StarCount)
	cfg.Flight.MaxSpeed = p.float("SAUCER_MAX_SPEED", cfg.Flight.MaxSpeed)
	cfg.Display.FrameRate = p.int("SAUCER_FRAME_RATE", cfg.Display.FrameRate)
	cfg.Import.GalaxySystemCap = p.int("SAUCER_GALAXY_SYSTEM_CAP", cfg.Import.GalaxySystemCap)
	cfg.Import.Cooldown = time.Duration(p.int("SAUCER_IMPORT_COOLDOWN_MS", int(cfg.Import.Cooldown/time.Millisecond))) * time.Millisecond
	cfg.Logging.Level = getEnv("SAUCER_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnv("SAUCER_LOG_FILE", cfg.Logging.File)

	return cfg, p.err
}

func (c Config) validate() error {
	if c.Universe.ChunkSize <= 0 {
		return fmt.Errorf("SAUCER_CHUNK_SIZE must be positive")
	}
	if c.Universe.OrbitTimeScale <= 0 {
		return fmt.Errorf("SAUCER_ORBIT_TIME_SCALE must be positive")
	}
	if c.Universe.StarCount < 0 {
		return fmt.Errorf("SAUCER_STAR_COUNT must not be negative")
	}
	if c.Flight.MaxSpeed <= 0 {
		return fmt.Errorf("SAUCER_MAX_SPEED must be positive")
	}
	if c.Display.FrameRate < 1 || c.Display.FrameRate > 240 {
		return fmt.Errorf("SAUCER_FRAME_RATE must be between 1 and 240")
	}
	if c.Import.GalaxySystemCap < 1 {
		return fmt.Errorf("SAUCER_GALAXY_SYSTEM_CAP must be at least 1")
	}
	if c.Import.Cooldown < 0 {
		return fmt.Errorf("SAUCER_IMPORT_COOLDOWN_MS must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// parser keeps the first conversion error so load can report it once.
type parser struct {
	err error
}

func (p *parser) float(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v)
		return def
	}
	return f
}

func (p *parser) int(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v)
		return def
	}
	return n
}

func (p *parser) fail(key, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: cannot parse %q", key, value)
	}
}
