package audio

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/wastesort/internal/game"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is used when Config.SampleRate is zero.
const DefaultSampleRate = beep.SampleRate(48000)

// Cue is a sound played for a game event.
type Cue int

const (
	CueNone Cue = iota
	CueGrab
	CueSorted
	CueMisplaced
	CueMissed
	CueLevelUp
	CueGameOver
)

// CueFor maps an event kind to its cue.
func CueFor(kind game.EventKind) Cue {
	switch kind {
	case game.EventGrabbed:
		return CueGrab
	case game.EventSorted:
		return CueSorted
	case game.EventMisplaced:
		return CueMisplaced
	case game.EventMissed:
		return CueMissed
	case game.EventLevelUp:
		return CueLevelUp
	case game.EventGameOver:
		return CueGameOver
	default:
		return CueNone
	}
}

// Config holds audio settings.
type Config struct {
	Enabled bool
	// Volume is a linear gain in [0, 1].
	Volume     float64
	SampleRate beep.SampleRate
}

// DefaultConfig returns audio enabled at 80% volume.
func DefaultConfig() Config {
	return Config{Enabled: true, Volume: 0.8, SampleRate: DefaultSampleRate}
}

// Player mixes cues into the speaker. A disabled or uninitialized Player
// drops every cue.
type Player struct {
	mu          sync.Mutex
	config      Config
	mixer       *beep.Mixer
	initialized bool
	// out receives each cue; it is swapped in tests.
	out func(beep.Streamer)
}

// NewPlayer creates a Player. Volume is clamped to [0, 1].
func NewPlayer(config Config) *Player {
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	config.Volume = min(max(config.Volume, 0), 1)

	p := &Player{config: config, mixer: &beep.Mixer{}}
	p.out = func(s beep.Streamer) {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	}
	return p
}

// Init opens the speaker. Calling it again, or on a disabled Player, is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.config.Enabled {
		return nil
	}

	sr := p.config.SampleRate
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	log.Printf("[AUDIO] Speaker ready at %d Hz", int(sr))
	return nil
}

// Play queues cue.
func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	if !p.initialized || !p.config.Enabled {
		p.mu.Unlock()
		return
	}
	s := Sound(cue, p.config.Volume, p.config.SampleRate)
	out := p.out
	p.mu.Unlock()

	if s != nil {
		out(s)
	}
}

// HandleEvents plays the cue of every event that has one. It is meant to be
// registered as a session observer.
func (p *Player) HandleEvents(events []game.Event) {
	for _, e := range events {
		if cue := CueFor(e.Kind); cue != CueNone {
			p.Play(cue)
		}
	}
}

// SetEnabled turns cues on or off.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Enabled = enabled
}

// SetVolume sets the linear volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Volume = min(max(v, 0), 1)
}

// Config returns the current settings.
func (p *Player) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
