package game

import (
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/telemetry"
)

// CuePlayer plays the join cue. Play reports whether a sound was started.
type CuePlayer interface {
	Play() bool
}

// Options holds configuration for game initialization.
type Options struct {
	Config         *config.Config // Defaults to config.Cfg()
	Seed           int64
	LogStats       bool    // Log window stats and perf to slog
	StatsWindowSec float64 // Overrides telemetry.stats_window when > 0
	OutputDir      string  // Empty disables CSV output
	Headless       bool
	StepsPerUpdate int // Simulation steps per graphical frame (1-10)
	Cue            CuePlayer
	StatsCallback  func(telemetry.WindowStats) // Called on every window flush
}

// DefaultOptions returns options for an interactive run with the global config.
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		StepsPerUpdate: 1,
	}
}
