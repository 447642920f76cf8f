// Package telemetry provides schooling statistics, milestone bookmarks, and perf tracking.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents          int `csv:"agents"`
	Groups          int `csv:"groups"`
	PlayerGroupSize int `csv:"player_group"`
	Ungrouped       int `csv:"ungrouped"`
	LargestGroup    int `csv:"largest_group"`

	// Group size distribution (sampled at window end)
	GroupSizeMean float64 `csv:"group_size_mean"`
	GroupSizeStd  float64 `csv:"group_size_std"`
	GroupSizeP50  float64 `csv:"group_size_p50"`
	GroupSizeP90  float64 `csv:"group_size_p90"`

	// Events during window
	GroupsFormed int `csv:"groups_formed"`
	Propagations int `csv:"propagations"`
	Merges       int `csv:"merges"`
	Joins        int `csv:"joins"`
	Contacts     int `csv:"contacts"`
	Cues         int `csv:"cues"`

	// Motion
	MeanSpeed      float64 `csv:"mean_speed"`
	MaxSpeed       float64 `csv:"max_speed"`
	CameraDistance float64 `csv:"camera_distance"`
}

// Percentile returns the p-th quantile of a sorted slice using the
// empirical distribution. p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, population std, and percentiles.
func ComputeDistribution(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("groups", s.Groups),
		slog.Int("player_group", s.PlayerGroupSize),
		slog.Int("ungrouped", s.Ungrouped),
		slog.Int("largest_group", s.LargestGroup),
		slog.Float64("group_size_mean", s.GroupSizeMean),
		slog.Float64("group_size_std", s.GroupSizeStd),
		slog.Float64("group_size_p50", s.GroupSizeP50),
		slog.Float64("group_size_p90", s.GroupSizeP90),
		slog.Int("groups_formed", s.GroupsFormed),
		slog.Int("propagations", s.Propagations),
		slog.Int("merges", s.Merges),
		slog.Int("joins", s.Joins),
		slog.Int("contacts", s.Contacts),
		slog.Int("cues", s.Cues),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("camera_distance", s.CameraDistance),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"groups", s.Groups,
		"player_group", s.PlayerGroupSize,
		"ungrouped", s.Ungrouped,
		"largest_group", s.LargestGroup,
		"group_size_mean", s.GroupSizeMean,
		"group_size_p90", s.GroupSizeP90,
		"groups_formed", s.GroupsFormed,
		"merges", s.Merges,
		"joins", s.Joins,
		"contacts", s.Contacts,
		"cues", s.Cues,
		"mean_speed", s.MeanSpeed,
		"camera_distance", s.CameraDistance,
	)
}
