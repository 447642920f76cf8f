// Package audio synthesises and plays the chime heard when a fish joins the player's school.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
)

// oscillator generates a fixed-length tone
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a tone of the given frequency and length.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in and out
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s with a linear attack and release over duration.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = math.Min(vol, float64(e.totalSamples-e.position)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a gain stage. vol is linear; 0 or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Chime note timings.
const (
	noteDuration = 140 * time.Millisecond
	noteAttack   = 5 * time.Millisecond
	noteRelease  = 110 * time.Millisecond
)

// note is one sine partial pair shaped by the chime envelope.
func note(freq float64, rate beep.SampleRate) beep.Streamer {
	fund := NewEnvelope(NewOscillator(freq, noteDuration, WaveSine, rate), noteDuration, noteAttack, noteRelease, rate)
	over := NewEnvelope(NewOscillator(freq*2, noteDuration, WaveTriangle, rate), noteDuration, noteAttack, noteRelease/2, rate)
	return beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.2))
}

// NewChime builds the rising two-note join chime (E5 then B5).
// exponent is the base-2 volume exponent applied to the whole chime.
func NewChime(rate beep.SampleRate, exponent float64) beep.Streamer {
	seq := beep.Seq(note(659.25, rate), note(987.77, rate))
	return &effects.Volume{Streamer: beep.Take(ChimeSamples(rate), seq), Base: 2, Volume: exponent}
}

// ChimeSamples returns the chime length in samples at the given rate.
func ChimeSamples(rate beep.SampleRate) int {
	return 2 * rate.N(noteDuration)
}
