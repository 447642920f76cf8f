package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/audio"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/observer"
	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/ui"
)

const controlsLegend = "Hold LMB: steer | Wheel/+/-: zoom | Space: pause | ,/.: speed | F1: overlays | Tab: tuning | Home: reset zoom"

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation steps per graphical frame (1-10)")
	observeAddr := flag.String("observe", "", "Serve live frames on this loopback address (overrides observer.addr)")
	recordPath := flag.String("record", "", "Record frames to a zstd-compressed JSON lines file")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	addr := cfg.Observer.Addr
	if *observeAddr != "" {
		addr = *observeAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	feed, err := observer.OpenFeed(ctx, addr, *recordPath)
	if err != nil {
		slog.Error("failed to open observer feed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := feed.Close(); err != nil {
			slog.Error("failed to close observer feed", "error", err)
		}
	}()

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		runHeadless(ctx, opts, feed, *maxTicks)
		return
	}
	runWindow(ctx, opts, feed, *maxTicks)
}

// runHeadless steps the simulation at the fixed dt with no window or sound.
func runHeadless(ctx context.Context, opts game.Options, feed *observer.Feed, maxTicks int) {
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"fish", g.FishCount(),
		"max_ticks", maxTicks,
	)

	for ctx.Err() == nil {
		g.UpdateHeadless()
		if err := feed.Publish(g.Frame()); err != nil {
			slog.Warn("frame publish failed", "error", err)
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	g.LogWorldState()
}

// runWindow opens the raylib window and drives the interactive loop.
func runWindow(ctx context.Context, opts game.Options, feed *observer.Feed, maxTicks int) {
	cfg := opts.Config
	width, height := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(width, height, "Shoal")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyNull)

	cue := audio.Open(cfg.Audio)
	defer cue.Close()
	opts.Cue = cue

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	scene := renderer.NewScene(width, height)
	scene.FovY = g.Camera().FovY
	scene.MinDistance = cfg.Camera.MinDistance
	controller := renderer.NewController(g, width, height)

	overlays := ui.NewOverlayRegistry()
	hud := ui.NewHUD()
	controls := ui.NewControlsPanel(width-230, 10, 220)
	tuning := ui.NewTuningPanel(width-270, 10, 260, g.ForceParams())
	perf := ui.NewPerfPanel(10, height-200, systems.NewSystemRegistry())

	var joinFlash float32
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if w, h, changed := controller.Resized(); changed {
			scene.Resize(w, h)
			controls.SetPosition(w-230, 10)
			tuning.SetPosition(w-270, 10)
			perf.SetPosition(10, h-200)
			width, height = w, h
		}

		for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
			if key == rl.KeyF1 {
				controls.Toggle()
				continue
			}
			overlays.HandleKeyPress(key)
		}

		showTuning := overlays.IsEnabled(ui.OverlayTuning)
		mouse := rl.GetMousePosition()
		overPanel := showTuning && rl.CheckCollisionPointRec(mouse, rl.Rectangle{
			X: float32(width - 270), Y: 10, Width: 260, Height: float32(tuning.Height()),
		})
		controller.Update(overPanel)

		frameTime := rl.GetFrameTime()
		g.Update(float64(frameTime))
		f := g.Frame()
		if err := feed.Publish(f); err != nil {
			slog.Warn("frame publish failed", "error", err)
		}

		if f.Joined {
			joinFlash = 1
		} else {
			joinFlash = max(0, joinFlash-frameTime*1.5)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		scene.GroupDistance = g.ForceParams().GroupDistance

		scene.Draw(f, layersFrom(overlays))

		hud.Draw(ui.HUDData{
			Title:           "Shoal",
			Fish:            len(f.Agents),
			PlayerGroupSize: f.PlayerGroupSize,
			Groups:          f.Groups,
			Ungrouped:       f.Ungrouped,
			Tick:            f.Tick,
			SimTime:         f.SimTime,
			Speed:           g.StepsPerUpdate(),
			FPS:             rl.GetFPS(),
			Paused:          g.Paused(),
			Zoom:            g.Camera().Zoom,
			CameraDistance:  g.Camera().Distance(),
			JoinFlash:       joinFlash,
		})
		if showTuning {
			if p, changed := tuning.Draw(g.ForceParams()); changed {
				g.SetForceParams(p)
			}
		} else {
			controls.Draw(overlays)
		}
		if overlays.IsEnabled(ui.OverlayPerf) {
			perf.Draw(g.PerfStats())
		}
		hud.DrawControls(height, controlsLegend)

		rl.EndDrawing()
		g.RecordFrame()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	g.LogWorldState()
}

// layersFrom maps the overlay toggles onto scene layers.
func layersFrom(o *ui.OverlayRegistry) renderer.Layers {
	return renderer.Layers{
		GroupColors: o.IsEnabled(ui.OverlayGroupColors),
		Wakes:       o.IsEnabled(ui.OverlayWakes),
		Grid:        o.IsEnabled(ui.OverlayGrid),
		Target:      o.IsEnabled(ui.OverlayTarget),
		Headings:    o.IsEnabled(ui.OverlayHeadings),
		GroupRadius: o.IsEnabled(ui.OverlayGroupRadius),
	}
}
