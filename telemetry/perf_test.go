package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(windowSize int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(windowSize)
	pc.now = clock.now
	return pc, clock
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGrouping)
		clock.advance(100 * time.Microsecond)
		pc.StartPhase(PhaseForces)
		clock.advance(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration != 300*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want 300µs", stats.AvgTickDuration)
	}
	if got := stats.PhaseAvg[PhaseGrouping]; got != 100*time.Microsecond {
		t.Errorf("grouping avg = %v, want 100µs", got)
	}
	if got := stats.PhaseAvg[PhaseForces]; got != 200*time.Microsecond {
		t.Errorf("forces avg = %v, want 200µs", got)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTestCollector(5)

	// Tick i lasts i ms; only the last five (6..10ms) stay in the window
	for i := 1; i <= 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGrouping)
		clock.advance(time.Duration(i) * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration != 8*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 8ms", stats.AvgTickDuration)
	}
	if stats.MinTickDuration != 6*time.Millisecond || stats.MaxTickDuration != 10*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 6ms/10ms", stats.MinTickDuration, stats.MaxTickDuration)
	}
	if stats.TicksPerSecond != 125 {
		t.Errorf("TicksPerSecond = %v, want 125", stats.TicksPerSecond)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		clock.advance(10 * time.Microsecond)
		pc.StartPhase("slow")
		clock.advance(90 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	tests := []struct {
		phase string
		want  float64
	}{
		{"fast", 10},
		{"slow", 90},
	}
	for _, tt := range tests {
		if got := stats.PhasePct[tt.phase]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s phase = %v%%, want %v%%", tt.phase, got, tt.want)
		}
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if math.Abs(stats.FPS-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}
