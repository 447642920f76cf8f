package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// samplePopulation summarises the current group layout for a stats window.
func (g *Game) samplePopulation() telemetry.Population {
	pop := telemetry.Population{CameraDistance: g.camera.Distance()}
	sizes := make(map[components.GroupID]int)

	query := g.viewFilter.Query()
	for query.Next() {
		_, _, _, vel, grp := query.Get()
		pop.Agents++
		pop.Speeds = append(pop.Speeds, r3.Norm(vel.Vec))
		if !grp.Assigned {
			pop.Ungrouped++
			continue
		}
		sizes[grp.ID]++
	}

	pop.PlayerGroupSize = sizes[components.PlayerGroupID]
	for _, n := range sizes {
		pop.GroupSizes = append(pop.GroupSizes, float64(n))
	}
	return pop
}

// GroupSizes returns the member count of every live group, keyed by id.
func (g *Game) GroupSizes() map[components.GroupID]int {
	sizes := make(map[components.GroupID]int)
	query := g.viewFilter.Query()
	for query.Next() {
		_, _, _, _, grp := query.Get()
		if grp.Assigned {
			sizes[grp.ID]++
		}
	}
	return sizes
}
