package telemetry

import (
	"github.com/pthm-cable/shoal/systems"
)

// Population describes the school layout sampled at the end of a window.
type Population struct {
	Agents          int
	Ungrouped       int
	PlayerGroupSize int
	GroupSizes      []float64 // One entry per live group, the player's included
	Speeds          []float64
	CameraDistance  float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	grouping systems.GroupingStats
	cues     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordGrouping adds grouping activity counters to the current window.
func (c *Collector) RecordGrouping(s systems.GroupingStats) {
	c.grouping.Formed += s.Formed
	c.grouping.Propagated += s.Propagated
	c.grouping.Merges += s.Merges
	c.grouping.Joins += s.Joins
	c.grouping.Contacts += s.Contacts
}

// RecordCue records a join cue being played.
func (c *Collector) RecordCue() {
	c.cues++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop Population) WindowStats {
	mean, std, p50, p90 := ComputeDistribution(pop.GroupSizes)

	largest := 0
	for _, size := range pop.GroupSizes {
		if int(size) > largest {
			largest = int(size)
		}
	}

	var meanSpeed, maxSpeed float64
	if len(pop.Speeds) > 0 {
		var sum float64
		for _, s := range pop.Speeds {
			sum += s
			if s > maxSpeed {
				maxSpeed = s
			}
		}
		meanSpeed = sum / float64(len(pop.Speeds))
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents:          pop.Agents,
		Groups:          len(pop.GroupSizes),
		PlayerGroupSize: pop.PlayerGroupSize,
		Ungrouped:       pop.Ungrouped,
		LargestGroup:    largest,

		GroupSizeMean: mean,
		GroupSizeStd:  std,
		GroupSizeP50:  p50,
		GroupSizeP90:  p90,

		GroupsFormed: c.grouping.Formed,
		Propagations: c.grouping.Propagated,
		Merges:       c.grouping.Merges,
		Joins:        c.grouping.Joins,
		Contacts:     c.grouping.Contacts,
		Cues:         c.cues,

		MeanSpeed:      meanSpeed,
		MaxSpeed:       maxSpeed,
		CameraDistance: pop.CameraDistance,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.grouping = systems.GroupingStats{}
	c.cues = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
