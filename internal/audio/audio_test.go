package audio

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/wastesort/internal/game"
	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(8000)

// drain streams s to the end and returns every sample.
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 256)
	for range 10000 {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func TestOscillator(t *testing.T) {
	tests := []struct {
		name string
		wave Wave
		ok   func(v float64) bool
	}{
		{"sine", WaveSine, func(v float64) bool { return v >= -1 && v <= 1 }},
		{"square", WaveSquare, func(v float64) bool { return v == 1 || v == -1 }},
		{"saw", WaveSaw, func(v float64) bool { return v >= -1 && v < 1 }},
		{"noise", WaveNoise, func(v float64) bool { return v >= -1 && v <= 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := drain(t, NewOscillator(440, 50*time.Millisecond, tt.wave, testRate))
			if len(samples) != testRate.N(50*time.Millisecond) {
				t.Errorf("got %d samples, want %d", len(samples), testRate.N(50*time.Millisecond))
			}
			for i, s := range samples {
				if !tt.ok(s[0]) || s[0] != s[1] {
					t.Fatalf("sample %d = %v out of shape", i, s)
				}
			}
		})
	}
}

func TestEnvelope(t *testing.T) {
	d := 100 * time.Millisecond
	osc := NewOscillator(0, d, WaveSquare, testRate)
	samples := drain(t, NewEnvelope(osc, d, 10*time.Millisecond, 20*time.Millisecond, testRate))

	if samples[0][0] != 0 {
		t.Errorf("first sample = %v, want silent attack start", samples[0][0])
	}
	mid := samples[len(samples)/2][0]
	if mid != 1 {
		t.Errorf("sustain sample = %v, want 1", mid)
	}
	last := samples[len(samples)-1][0]
	if last <= 0 || last > 0.05 {
		t.Errorf("last sample = %v, want near silent", last)
	}
}

func TestSound(t *testing.T) {
	cues := []Cue{CueGrab, CueSorted, CueMisplaced, CueMissed, CueLevelUp, CueGameOver}
	for _, cue := range cues {
		s := Sound(cue, 1, testRate)
		if s == nil {
			t.Fatalf("Sound(%d) = nil", cue)
		}
		samples := drain(t, s)
		if len(samples) == 0 {
			t.Errorf("Sound(%d) produced no samples", cue)
		}
		for _, v := range samples {
			if math.Abs(v[0]) > 1 {
				t.Fatalf("Sound(%d) sample %v clips", cue, v[0])
			}
		}
	}

	if Sound(CueNone, 1, testRate) != nil {
		t.Error("CueNone should have no sound")
	}
}

func TestSound_Silent(t *testing.T) {
	for _, v := range drain(t, Sound(CueSorted, 0, testRate)) {
		if v[0] != 0 {
			t.Fatalf("zero volume produced %v", v[0])
		}
	}
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		kind game.EventKind
		want Cue
	}{
		{game.EventGrabbed, CueGrab},
		{game.EventSorted, CueSorted},
		{game.EventMisplaced, CueMisplaced},
		{game.EventMissed, CueMissed},
		{game.EventLevelUp, CueLevelUp},
		{game.EventGameOver, CueGameOver},
		{game.EventSpawned, CueNone},
		{game.EventReleased, CueNone},
		{game.EventPhaseChanged, CueNone},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := CueFor(tt.kind); got != tt.want {
				t.Errorf("CueFor(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

// recordingPlayer returns a Player that appears initialized and counts the
// streamers it would have mixed.
func recordingPlayer(config Config) (*Player, *int) {
	p := NewPlayer(config)
	p.initialized = true
	n := 0
	p.out = func(beep.Streamer) { n++ }
	return p, &n
}

func TestPlayer_HandleEvents(t *testing.T) {
	p, played := recordingPlayer(DefaultConfig())

	p.HandleEvents([]game.Event{
		{Kind: game.EventSpawned},
		{Kind: game.EventGrabbed},
		{Kind: game.EventSorted},
		{Kind: game.EventLevelUp},
		{Kind: game.EventPhaseChanged},
	})
	if *played != 3 {
		t.Errorf("played %d cues, want 3", *played)
	}

	p.SetEnabled(false)
	p.HandleEvents([]game.Event{{Kind: game.EventMissed}})
	if *played != 3 {
		t.Errorf("disabled player played a cue")
	}
}

func TestPlayer_Uninitialized(t *testing.T) {
	p := NewPlayer(DefaultConfig())
	n := 0
	p.out = func(beep.Streamer) { n++ }

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("uninitialized player panicked: %v", r)
		}
	}()
	p.Play(CueSorted)
	p.HandleEvents([]game.Event{{Kind: game.EventGameOver}})
	p.Close()

	if n != 0 {
		t.Errorf("uninitialized player played %d cues", n)
	}
}

func TestPlayer_InitDisabled(t *testing.T) {
	p := NewPlayer(Config{Enabled: false})
	if err := p.Init(); err != nil {
		t.Errorf("Init() on disabled player = %v", err)
	}
	if p.initialized {
		t.Error("disabled player should not open the speaker")
	}
}

func TestPlayer_Volume(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.25, 0.25},
		{3, 1},
	}
	for _, tt := range tests {
		if got := NewPlayer(Config{Volume: tt.in}).Config().Volume; got != tt.want {
			t.Errorf("NewPlayer volume %v -> %v, want %v", tt.in, got, tt.want)
		}
		p := NewPlayer(DefaultConfig())
		p.SetVolume(tt.in)
		if got := p.Config().Volume; got != tt.want {
			t.Errorf("SetVolume(%v) -> %v, want %v", tt.in, got, tt.want)
		}
	}

	if NewPlayer(Config{}).Config().SampleRate != DefaultSampleRate {
		t.Error("zero sample rate should take the default")
	}
}
