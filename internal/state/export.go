package state

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-saucer/internal/body"
)

// SnapshotExport is the JSON-serializable representation of a session.
type SnapshotExport struct {
	ExportedAt time.Time     `json:"exported_at"`
	Tick       uint64        `json:"tick"`
	Craft      CraftExport   `json:"craft"`
	Sector     [3]int        `json:"sector"`
	Nebula     string        `json:"nebula"`
	Chunks     int           `json:"chunks_loaded"`
	Message    string        `json:"message"`
	Active     []BodyExport  `json:"active_bodies"`
	Groups     []GroupExport `json:"groups"`
	Events     []Event       `json:"events,omitempty"`
}

// CraftExport is a JSON-friendly craft representation.
type CraftExport struct {
	Position     [3]float64 `json:"position"`
	Yaw          float64    `json:"yaw"`
	Pitch        float64    `json:"pitch"`
	Speed        float64    `json:"speed"`
	SpeedPercent int        `json:"speed_percent"`
	State        string     `json:"state"`
	LandedOn     string     `json:"landed_on,omitempty"`
}

// GroupExport is a JSON-friendly group representation.
type GroupExport struct {
	Name   string       `json:"name"`
	Anchor [3]float64   `json:"anchor"`
	Sun    string       `json:"sun,omitempty"`
	Bodies []BodyExport `json:"bodies"`
}

// BodyExport is a JSON-friendly body with derived fields.
type BodyExport struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Position   [3]float64 `json:"position"`
	Radius     float64    `json:"radius"`
	Color      string     `json:"color"`
	RingFactor float64    `json:"ring_factor,omitempty"`
	Textured   bool       `json:"textured,omitempty"`
	Distance   float64    `json:"distance"`
}

// ExportSnapshot converts a snapshot to an exportable format.
func ExportSnapshot(s Snapshot, exportedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{
		ExportedAt: exportedAt,
		Tick:       s.Tick,
		Craft: CraftExport{
			Position:     vec(s.Craft.Position.X, s.Craft.Position.Y, s.Craft.Position.Z),
			Yaw:          s.Craft.Yaw,
			Pitch:        s.Craft.Pitch,
			Speed:        s.Craft.Speed,
			SpeedPercent: s.Craft.SpeedPercent,
			State:        s.Craft.State.String(),
			LandedOn:     s.Craft.LandedOn,
		},
		Sector:  [3]int{s.Sector.X, s.Sector.Y, s.Sector.Z},
		Nebula:  s.Nebula.Hex(),
		Chunks:  s.ChunksLoaded,
		Message: s.Message,
		Active:  []BodyExport{},
		Groups:  []GroupExport{},
		Events:  s.Events,
	}

	for _, b := range s.Active {
		export.Active = append(export.Active, exportBody(b, s))
	}
	for _, g := range s.Groups {
		ge := GroupExport{
			Name:   g.Name,
			Anchor: vec(g.Anchor.X, g.Anchor.Y, g.Anchor.Z),
			Sun:    g.Sun,
			Bodies: []BodyExport{},
		}
		for _, b := range g.Bodies {
			ge.Bodies = append(ge.Bodies, exportBody(b, s))
		}
		export.Groups = append(export.Groups, ge)
	}

	return export
}

func exportBody(b BodyView, s Snapshot) BodyExport {
	e := BodyExport{
		ID:       b.ID,
		Name:     b.Name,
		Kind:     b.Kind.String(),
		Position: vec(b.Position.X, b.Position.Y, b.Position.Z),
		Radius:   b.Radius,
		Color:    b.Color.Hex(),
		Textured: b.Textured,
		Distance: s.Craft.Position.Dist(b.Position),
	}
	if b.Rings != nil {
		e.RingFactor = b.Rings.OuterFactor
	}
	return e
}

func vec(x, y, z float64) [3]float64 {
	return [3]float64{x, y, z}
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Group    string
	Name     string
	Kind     string
	Radius   float64
	Distance float64
	Orbit    string
}

// GenerateSummaryRows lists imported bodies in import order. Orbit is the
// distance from the group anchor, "-" for suns.
func GenerateSummaryRows(s Snapshot) []SummaryRow {
	var rows []SummaryRow
	for _, g := range s.Groups {
		for _, b := range g.Bodies {
			orbit := "-"
			if b.Kind != body.KindSun {
				orbit = fmt.Sprintf("%.0f", b.Position.Sub(g.Anchor).Norm())
			}
			rows = append(rows, SummaryRow{
				Group:    g.Name,
				Name:     b.Name,
				Kind:     b.Kind.String(),
				Radius:   b.Radius,
				Distance: s.Craft.Position.Dist(b.Position),
				Orbit:    orbit,
			})
		}
	}
	return rows
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, s Snapshot, timestamp time.Time) {
	rows := GenerateSummaryRows(s)

	fmt.Fprintf(w, "Saucer @ %s  tick %d  sector %s  speed %d%%  %s\n",
		timestamp.Format(time.RFC3339), s.Tick, s.Sector, s.Craft.SpeedPercent, s.Craft.State)
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No imported bodies")
		return
	}

	// Header
	fmt.Fprintf(w, "%-16s %-16s %-10s %8s %10s %8s\n",
		"Group", "Body", "Kind", "Radius", "Distance", "Orbit")
	fmt.Fprintln(w, strings.Repeat("─", 78))

	// Rows
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s %-16s %-10s %8.0f %10.0f %8s\n",
			truncateStr(r.Group, 16),
			truncateStr(r.Name, 16),
			r.Kind,
			r.Radius,
			r.Distance,
			r.Orbit,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d bodies in %d groups\n", len(rows), len(s.Groups))
}

// WriteEvents writes the last n events, oldest first.
func WriteEvents(w io.Writer, events []Event, n int) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		line := fmt.Sprintf("#%-6d %-14s", e.Tick, e.Type)
		if e.Body != "" {
			line += " " + e.Body
		}
		if e.Sector != "" {
			line += " [" + e.Sector + "]"
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
