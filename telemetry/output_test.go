package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Nil manager swallows writes
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager write: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}

func TestOutputManagerTelemetryRoundtrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	windows := []WindowStats{
		{WindowEndTick: 600, SimTimeSec: 10, Agents: 41, Groups: 3, PlayerGroupSize: 5, Joins: 4, MeanSpeed: 1.5},
		{WindowEndTick: 1200, SimTimeSec: 20, Agents: 41, Groups: 2, PlayerGroupSize: 12, Merges: 1},
	}
	for _, w := range windows {
		if err := om.WriteTelemetry(w); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, TelemetryFile))
	if err != nil {
		t.Fatalf("open telemetry: %v", err)
	}
	defer f.Close()

	got, err := ReadTelemetry(f)
	if err != nil {
		t.Fatalf("ReadTelemetry: %v", err)
	}
	if len(got) != len(windows) {
		t.Fatalf("read %d rows, want %d", len(got), len(windows))
	}
	for i := range windows {
		if got[i].WindowEndTick != windows[i].WindowEndTick ||
			got[i].PlayerGroupSize != windows[i].PlayerGroupSize ||
			got[i].Joins != windows[i].Joins ||
			got[i].Merges != windows[i].Merges ||
			got[i].MeanSpeed != windows[i].MeanSpeed {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], windows[i])
		}
	}
}

func TestOutputManagerHeadersOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := om.WriteBookmark(Bookmark{Type: BookmarkFirstJoin, Tick: int32(i)}); err != nil {
			t.Fatalf("WriteBookmark: %v", err)
		}
		if err := om.WritePerf(PerfStats{AvgTickDuration: time.Millisecond}, int32(i)); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	om.Close()

	for _, name := range []string{BookmarksFile, PerfFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Errorf("%s: expected header + 3 rows, got %d lines", name, len(lines))
		}
	}

	perf, _ := os.ReadFile(filepath.Join(dir, PerfFile))
	if !strings.HasPrefix(string(perf), "window_end,avg_tick_us") {
		t.Errorf("unexpected perf header: %q", strings.SplitN(string(perf), "\n", 2)[0])
	}
}
