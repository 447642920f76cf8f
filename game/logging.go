package game

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/telemetry"
)

// logWriter is the destination for human-readable reports.
var logWriter io.Writer

// SetLogWriter sets the report output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted report line.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogPerfStats writes the per-phase timing breakdown.
func (g *Game) LogPerfStats() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (steps %dx) | FPS: %.0f ===", g.tick, g.stepsPerUpdate, stats.FPS)
	Logf("Avg tick: %s (min %s, max %s)",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MinTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond))

	for _, phase := range telemetry.Phases {
		Logf("  %-12s %10s  %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), stats.PhasePct[phase])
	}
	Logf("")
}

// LogWorldState writes a summary of the schools, largest first.
func (g *Game) LogWorldState() {
	sizes := g.GroupSizes()

	type school struct {
		id   components.GroupID
		size int
	}
	schools := make([]school, 0, len(sizes))
	grouped := 0
	for id, n := range sizes {
		schools = append(schools, school{id, n})
		grouped += n
	}
	sort.Slice(schools, func(i, j int) bool {
		if schools[i].size != schools[j].size {
			return schools[i].size > schools[j].size
		}
		return schools[i].id < schools[j].id
	})

	total := g.FishCount()
	pos := g.PlayerPosition()

	Logf("=== Tick %d (%.1fs) ===", g.tick, g.simTime)
	Logf("Fish: %d (grouped: %d, alone: %d)", total, grouped, total-grouped)
	Logf("Player @ (%.1f, %.1f) school: %d", pos.X, pos.Y, sizes[components.PlayerGroupID])
	Logf("Camera height: %.1f zoom: %.2f", g.camera.Distance(), g.camera.Zoom)
	for i, s := range schools {
		if i >= 10 {
			Logf("  ... %d more", len(schools)-i)
			break
		}
		label := ""
		if s.id == components.PlayerGroupID {
			label = " (player)"
		}
		Logf("  School %d: %d fish%s", s.id, s.size, label)
	}
	Logf("")
}
