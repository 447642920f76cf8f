package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/shoal/config"
)

// Cue plays the join chime through the system speaker. Without a working
// audio device it stays silent and Play reports false.
type Cue struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	initialized bool
}

// NewCue creates a cue from the audio settings. Call Init before Play.
func NewCue(cfg config.AudioConfig) *Cue {
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = 44100
	}
	return &Cue{
		rate:   rate,
		volume: cfg.Volume,
		mixer:  &beep.Mixer{},
	}
}

// Init opens the speaker and starts the mixer.
func (c *Cue) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Play starts a new chime. Chimes overlap if called in quick succession.
func (c *Cue) Play() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return false
	}
	chime := NewChime(c.rate, c.volume)
	speaker.Lock()
	c.mixer.Add(chime)
	speaker.Unlock()
	return true
}

// Enabled reports whether the speaker is open.
func (c *Cue) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Close stops playback and releases the speaker.
func (c *Cue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// Open creates a cue and tries to open the speaker. Failure is logged and
// leaves the cue silent.
func Open(cfg config.AudioConfig) *Cue {
	c := NewCue(cfg)
	if !cfg.Enabled {
		return c
	}
	if err := c.Init(); err != nil {
		slog.Warn("audio disabled", "error", err)
	}
	return c
}
