// Package main runs the school in a terminal: hold the left mouse button to
// steer the player, space to pause, +/- to zoom and q to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/shoal/audio"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/observer"
	"github.com/pthm-cable/shoal/termview"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	fps := flag.Int("fps", 60, "Frames per second")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logFile := flag.String("log-file", "", "Write JSON logs to this file (empty = discard)")
	observeAddr := flag.String("observe", "", "Serve live frames on this loopback address")
	recordPath := flag.String("record", "", "Record frames to a zstd-compressed JSON lines file")
	mute := flag.Bool("mute", false, "Disable the join cue")
	flag.Parse()

	// The terminal belongs to the view, so logs go elsewhere
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))
	game.SetLogWriter(logOut)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mute {
		cfg.Audio.Enabled = false
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if err := run(cfg, rngSeed, *fps, *outputDir, *observeAddr, *recordPath); err != nil {
		fmt.Fprintf(os.Stderr, "shoalterm: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed int64, fps int, outputDir, observeAddr, recordPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	feed, err := observer.OpenFeed(ctx, observeAddr, recordPath)
	if err != nil {
		return err
	}
	defer feed.Close()

	cue := audio.Open(cfg.Audio)
	defer cue.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()

	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		OutputDir:      outputDir,
		StepsPerUpdate: 1,
		Cue:            cue,
	})
	defer g.Unload()

	view := termview.New(screen, g)
	view.OnFrame = func(f game.Frame) {
		if err := feed.Publish(f); err != nil {
			slog.Warn("frame publish failed", "error", err)
		}
	}

	if fps < 1 {
		fps = 1
	}
	err = view.Run(ctx, time.Second/time.Duration(fps))
	g.LogWorldState()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
