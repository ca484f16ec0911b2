package state

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-saucer/internal/craft"
)

func TestExportSnapshot(t *testing.T) {
	m := newTestManager(DefaultConfig())
	if _, err := m.Import(systemAtCraft(t, "Sol")); err != nil {
		t.Fatalf("Import: %v", err)
	}
	m.Tick(craft.Controls{})

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	export := ExportSnapshot(m.Snapshot(), at)

	if export.ExportedAt != at || export.Tick != 1 {
		t.Errorf("header = %v tick %d", export.ExportedAt, export.Tick)
	}
	if export.Craft.State != "landed" || export.Craft.LandedOn != "Helios" {
		t.Errorf("Craft = %+v", export.Craft)
	}
	if len(export.Groups) != 1 || len(export.Groups[0].Bodies) != 2 {
		t.Fatalf("Groups = %+v", export.Groups)
	}
	if export.Groups[0].Sun != "Helios" {
		t.Errorf("Sun = %q", export.Groups[0].Sun)
	}
	if b := export.Groups[0].Bodies[1]; b.Kind != "planet" || b.Color != "#4488ff" {
		t.Errorf("planet export = %+v", b)
	}
	if export.Active == nil {
		t.Error("Active should be an empty list, not null")
	}
}

func TestSnapshotExport_WriteJSON(t *testing.T) {
	m := newTestManager(DefaultConfig())
	export := ExportSnapshot(m.Snapshot(), time.Now())

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"craft", "sector", "nebula", "active_bodies", "groups"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, buf.String())
		}
	}
	if _, ok := decoded["events"]; ok {
		t.Error("events should be omitted when empty")
	}
}

func TestWriteSummaryTable(t *testing.T) {
	m := newTestManager(DefaultConfig())
	if _, err := m.Import(systemAtCraft(t, "Sol")); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var buf bytes.Buffer
	WriteSummaryTable(&buf, m.Snapshot(), time.Now())
	out := buf.String()

	for _, want := range []string{"Helios", "Far", "sun", "planet", "Total: 2 bodies in 1 groups"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	rows := GenerateSummaryRows(m.Snapshot())
	if rows[0].Orbit != "-" || rows[1].Orbit != "900" {
		t.Errorf("orbit column = %q, %q", rows[0].Orbit, rows[1].Orbit)
	}
}

func TestWriteSummaryTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, newTestManager(DefaultConfig()).Snapshot(), time.Now())
	if !strings.Contains(buf.String(), "No imported bodies") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteEvents(t *testing.T) {
	events := []Event{
		{Type: EventSectorChange, Tick: 3, Sector: "0, 0, -1"},
		{Type: EventLanded, Tick: 9, Body: "Rock"},
		{Type: EventImportFailed, Tick: 12, Detail: "boom"},
	}

	var buf bytes.Buffer
	WriteEvents(&buf, events, 2)
	out := buf.String()

	if strings.Contains(out, "SECTOR_CHANGE") {
		t.Error("only the last 2 events should be written")
	}
	if !strings.Contains(out, "LANDED") || !strings.Contains(out, "Rock") || !strings.Contains(out, "boom") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteEvents_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteEvents(&buf, nil, 5)
	if strings.TrimSpace(buf.String()) != "No events" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 8, "much t.."},
		{"abcdef", 3, "abc"},
		{"Ångström station", 6, "Ångs.."},
	}
	for _, tt := range tests {
		if got := truncateStr(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
