package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu           sync.Mutex
	lastSchooled float64 // mean schooled fraction from the most recent Evaluate call
	lastShare    float64 // mean per-window player share from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
	}
}

// LastSchooled returns the mean fraction of NPCs that ended in the player's
// school during the most recent evaluation.
func (fe *FitnessEvaluator) LastSchooled() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSchooled
}

// LastShare returns the player's mean share of the population across stats
// windows during the most recent evaluation.
func (fe *FitnessEvaluator) LastShare() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastShare
}

// runResult holds the results from a single simulation run.
type runResult struct {
	ticks       int32 // ticks until every NPC joined, or maxTicks
	npcs        int
	outside     int                     // NPCs not in the player's school when the run ended
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalSchooled, totalShare float64
	for _, r := range results {
		totalFitness += fe.computeFitness(r)
		totalSchooled += schooledFraction(r)
		totalShare += meanPlayerShare(r.windowStats)
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastSchooled = totalSchooled / n
	fe.lastShare = totalShare / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run. It stops as soon
// as every NPC has joined the player's school.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	result := &runResult{ticks: fe.maxTicks}
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		result.outside = cfg.Spawn.NPCCount
		result.npcs = cfg.Spawn.NPCCount
		return result
	}

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	fish := g.FishCount()
	result.npcs = fish - 1
	if result.npcs == 0 {
		result.ticks = 0
		return result
	}

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
		if !g.Joined() {
			continue
		}
		if g.GroupSizes()[components.PlayerGroupID] == fish {
			result.ticks = g.Tick()
			return result
		}
	}

	result.outside = fish - g.GroupSizes()[components.PlayerGroupID]
	return result
}

// copyConfig returns an independent copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: ticks + missPenalty × outside, where one stray fish costs a full
// run divided by the school size. A run that schools nobody scores about
// twice maxTicks.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	missPenalty := float64(fe.maxTicks) / float64(max(1, r.npcs))
	return float64(r.ticks) + missPenalty*float64(r.outside)
}

// schooledFraction returns the share of NPCs in the player's school at the
// end of a run.
func schooledFraction(r *runResult) float64 {
	if r.npcs <= 0 {
		return 1
	}
	return clamp01(float64(r.npcs-r.outside) / float64(r.npcs))
}

// meanPlayerShare averages the player's share of the population over the
// recorded windows.
func meanPlayerShare(windows []telemetry.WindowStats) float64 {
	var sum float64
	n := 0
	for _, w := range windows {
		if w.Agents == 0 {
			continue
		}
		sum += float64(w.PlayerGroupSize) / float64(w.Agents)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
