// Package state owns the running session: the universe cache, the craft,
// imported groups and the event log. One Tick is one simulation frame.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-saucer/internal/archive"
	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/logging"
	"github.com/litescript/ls-saucer/internal/universe"
)

// FrameDT is the simulated time per tick, in seconds.
const FrameDT = 1.0 / 60.0

// EventType represents the type of state change event.
type EventType string

const (
	EventLanded       EventType = "LANDED"
	EventTakeoff      EventType = "TAKEOFF"
	EventBounce       EventType = "BOUNCE"
	EventSectorChange EventType = "SECTOR_CHANGE"
	EventImport       EventType = "IMPORT"
	EventImportFailed EventType = "IMPORT_FAILED"
)

// Event represents a notable change during the session.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	Body      string    `json:"body,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Config holds configuration for the state manager.
type Config struct {
	ChunkSize       float64
	MaxSpeed        float64
	TimeScale       float64
	GalaxySystemCap int
	MaxEvents       int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:       astro.DefaultChunkSize,
		MaxSpeed:        craft.DefaultMaxSpeed,
		TimeScale:       body.DefaultTimeScale,
		GalaxySystemCap: archive.DefaultGalaxySystemCap,
		MaxEvents:       50, // Last 50 events
	}
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithGenerator replaces the procedural chunk generator.
func WithGenerator(g universe.Generator) Option {
	return func(m *Manager) {
		m.generator = g
	}
}

// WithImporter replaces the archive importer.
func WithImporter(im *archive.Importer) Option {
	return func(m *Manager) {
		if im != nil {
			m.importer = im
		}
	}
}

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager is the explicit application state. All mutation goes through
// Tick and Import; readers take a Snapshot.
type Manager struct {
	mu sync.RWMutex

	universe *universe.Store
	craft    *craft.Craft
	groups   []*body.Group
	importer *archive.Importer

	active []*body.Body
	sector astro.ChunkCoord
	ticks  uint64

	lastImport *archive.Result
	lastError  error

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	generator universe.Generator
	logger    *logging.Logger
	now       func() time.Time
}

// NewManager creates a session with the craft at its start position.
func NewManager(cfg Config, opts ...Option) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	m := &Manager{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		logger:    logging.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.importer == nil {
		m.importer = archive.NewImporter(
			archive.WithGalaxySystemCap(cfg.GalaxySystemCap),
			archive.WithTimeScale(cfg.TimeScale),
			archive.WithLogger(m.logger.Named("archive")),
		)
	}

	m.universe = universe.NewStore(cfg.ChunkSize, m.generator)
	m.craft = craft.New(cfg.MaxSpeed)
	m.sector = m.universe.ChunkOf(m.craft.Position)
	m.active = m.universe.Query(m.craft.Position)
	return m
}

// Tick runs one frame: query the chunks around the craft, fly the craft
// against them and every imported body, then advance the orbits.
func (m *Manager) Tick(ctrl craft.Controls) craft.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticks++

	active := m.universe.Query(m.craft.Position)
	targets := make([]*body.Body, 0, len(active)+m.groupBodyCount())
	targets = append(targets, active...)
	for _, g := range m.groups {
		targets = append(targets, g.Bodies...)
	}

	outcome := m.craft.Update(ctrl, targets)

	for _, g := range m.groups {
		g.Advance(FrameDT)
	}

	m.recordOutcome(outcome)

	sector := m.universe.ChunkOf(m.craft.Position)
	if sector != m.sector {
		m.addEvent(Event{Type: EventSectorChange, Sector: sector.String(), Detail: "from " + m.sector.String()})
		m.logger.Debug("sector %s -> %s", m.sector, sector)
		m.sector = sector
		active = m.universe.Query(m.craft.Position)
	}
	m.active = active

	return outcome
}

func (m *Manager) recordOutcome(outcome craft.Outcome) {
	switch outcome {
	case craft.OutcomeLanded:
		name := m.craft.LandedOn.Name
		m.addEvent(Event{Type: EventLanded, Body: name, Sector: m.sector.String()})
		m.logger.Info("landed on %s", name)
	case craft.OutcomeTookOff:
		m.addEvent(Event{Type: EventTakeoff, Sector: m.sector.String()})
		m.logger.Info("took off")
	case craft.OutcomeBounced:
		m.addEvent(Event{Type: EventBounce, Sector: m.sector.String(), Detail: fmt.Sprintf("speed %.1f", m.craft.Speed)})
		m.logger.Debug("bounced off atmosphere")
	}
}

// Import decodes an editor archive next to the craft. Groups are published
// only when the import succeeds; either way the status line reports it.
func (m *Manager) Import(data []byte) (*archive.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.importer.Import(data, m.craft.Position)
	if err != nil {
		m.lastError = err
		m.craft.Message = archive.StatusMessage(err)
		m.addEvent(Event{Type: EventImportFailed, Detail: err.Error()})
		return nil, err
	}

	m.groups = append(m.groups, res.Groups...)
	m.lastImport = res
	m.lastError = nil
	m.craft.Message = res.Message
	m.addEvent(Event{
		Type:   EventImport,
		Body:   res.Name,
		Detail: fmt.Sprintf("%s: %d groups, %d bodies, %d warnings", res.Format, len(res.Groups), res.Bodies(), len(res.Warnings)),
	})
	return res, nil
}

// SetMessage replaces the status line.
func (m *Manager) SetMessage(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.craft.Message = msg
}

func (m *Manager) groupBodyCount() int {
	n := 0
	for _, g := range m.groups {
		n += g.Len()
	}
	return n
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	e.Timestamp = m.now()
	e.Tick = m.ticks
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
