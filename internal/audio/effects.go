// Package audio plays short synthesized cues for game events.
package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     Wave
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing duration worth of wave at freq.
func NewOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
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

		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = rand.Float64()*2 - 1
		}

		samples[i][0] = v
		samples[i][1] = v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s with a linear attack and release.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		gain := 1.0
		if e.attack > 0 && e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; e.release > 0 && remaining < e.release {
			gain = math.Min(gain, float64(remaining)/float64(e.release))
		}

		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s by a linear gain. Zero or less is silent.
func withVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// note is a single shaped tone.
func note(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// Sound builds the streamer for cue at the given volume. Unknown cues return nil.
func Sound(cue Cue, volume float64, rate beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	switch cue {
	case CueGrab:
		s = note(660, 40*time.Millisecond, WaveSine, rate)
	case CueSorted:
		// rising two-note chime
		s = beep.Seq(
			note(987.77, 70*time.Millisecond, WaveSquare, rate),
			note(1318.51, 140*time.Millisecond, WaveSquare, rate),
		)
	case CueMisplaced:
		s = note(110, 180*time.Millisecond, WaveSaw, rate)
	case CueMissed:
		s = NewEnvelope(NewOscillator(0, 120*time.Millisecond, WaveNoise, rate),
			120*time.Millisecond, 10*time.Millisecond, 80*time.Millisecond, rate)
	case CueLevelUp:
		s = beep.Seq(
			note(523.25, 80*time.Millisecond, WaveSine, rate),
			note(659.25, 80*time.Millisecond, WaveSine, rate),
			note(783.99, 160*time.Millisecond, WaveSine, rate),
		)
	case CueGameOver:
		s = beep.Seq(
			note(392, 150*time.Millisecond, WaveSaw, rate),
			note(311.13, 150*time.Millisecond, WaveSaw, rate),
			note(261.63, 300*time.Millisecond, WaveSaw, rate),
		)
	default:
		return nil
	}
	return withVolume(s, volume*cueGain[cue])
}

// cueGain balances the cues against each other.
var cueGain = map[Cue]float64{
	CueGrab:      0.3,
	CueSorted:    0.5,
	CueMisplaced: 0.6,
	CueMissed:    0.4,
	CueLevelUp:   0.6,
	CueGameOver:  0.7,
}
