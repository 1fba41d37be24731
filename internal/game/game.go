// Package game implements the waste-sorting simulation: spawning, pinch
// drag-and-drop, drop scoring, misses, level progression and the phase
// state machine. It has no I/O; callers feed one Input per tick.
package game

import (
	"math/rand/v2"
	"time"
)

// Default play-area size, matching the requested capture resolution.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Options configures a new Game.
type Options struct {
	Tuning Tuning
	Width  int
	Height int
	// Categories are bound to zones left to right. Defaults to AllCategories.
	Categories []Category
	// Now is the wall clock used for spawn cadence. Defaults to time.Now.
	Now func() time.Time
	// Rand drives category and position choice. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// Game owns the State of one session and advances it one tick at a time.
type Game struct {
	tuning Tuning
	layout ZoneLayout
	state  State
	now    func() time.Time
	rng    *rand.Rand

	lastSpawn time.Time
	pausedAt  time.Time
	nextID    uint64
}

// New creates a Game in the Start phase.
func New(opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if len(opts.Categories) == 0 {
		opts.Categories = AllCategories()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	g := &Game{
		tuning: opts.Tuning,
		layout: NewZoneLayout(float64(opts.Width), float64(opts.Height), opts.Tuning.BandHeight, opts.Categories),
		now:    opts.Now,
		rng:    opts.Rand,
	}
	g.Reset()
	return g
}

// Reset re-initialises the state and returns to the Start phase.
func (g *Game) Reset() {
	g.state = State{
		Level:         1,
		SpawnInterval: g.tuning.SpawnIntervalFor(1),
		FallSpeed:     g.tuning.FallSpeedFor(1),
		Phase:         PhaseStart,
	}
	g.lastSpawn = g.now()
	g.pausedAt = time.Time{}
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.state.Phase
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.state.Score
}

// Layout returns the current zone layout.
func (g *Game) Layout() ZoneLayout {
	return g.layout
}

// Tuning returns the tuning the game was created with.
func (g *Game) Tuning() Tuning {
	return g.tuning
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Width:         g.layout.Width(),
		Height:        g.layout.Height(),
		Score:         g.state.Score,
		Missed:        g.state.Missed,
		MaxMissed:     g.tuning.MaxMissed,
		Level:         g.state.Level,
		SpawnInterval: g.state.SpawnInterval,
		FallSpeed:     g.state.FallSpeed,
		Phase:         g.state.Phase,
		Sorted:        g.state.Sorted,
		Misplaced:     g.state.Misplaced,
		Zones:         make([]Zone, g.layout.Len()),
		Objects:       make([]Object, len(g.state.Objects)),
	}
	for i := range snap.Zones {
		snap.Zones[i] = Zone{Category: g.layout.Category(i), Rect: g.layout.Zone(i)}
	}
	for i, o := range g.state.Objects {
		snap.Objects[i] = *o
	}
	return snap
}

// Step applies the tick's key, then advances the simulation if playing.
func (g *Game) Step(in Input) StepResult {
	if in.Key == KeyQuit {
		return StepResult{Terminal: true}
	}

	var events []Event
	events = g.handleKey(in.Key, events)

	if in.Width > 0 && in.Height > 0 &&
		(float64(in.Width) != g.layout.Width() || float64(in.Height) != g.layout.Height()) {
		g.layout.Resize(float64(in.Width), float64(in.Height))
	}

	if g.state.Phase != PhasePlaying {
		return StepResult{Events: events}
	}

	events = g.spawn(g.now(), events)
	events = g.update(in, events)
	return StepResult{Events: events}
}

// handleKey runs the phase state machine. Keys that are not valid in the
// current phase are ignored.
func (g *Game) handleKey(key Key, events []Event) []Event {
	from := g.state.Phase

	switch key {
	case KeyStart:
		if from == PhaseStart {
			g.state.Phase = PhasePlaying
			g.lastSpawn = g.now()
		}
	case KeyPause:
		switch from {
		case PhasePlaying:
			g.state.Phase = PhasePaused
			g.pausedAt = g.now()
		case PhasePaused:
			g.state.Phase = PhasePlaying
			// Paused time does not count towards the next spawn.
			if !g.pausedAt.IsZero() {
				g.lastSpawn = g.lastSpawn.Add(g.now().Sub(g.pausedAt))
			}
			g.pausedAt = time.Time{}
		}
	case KeyRestart:
		if from == PhaseStart || from == PhaseOver {
			g.Reset()
		}
	}

	if g.state.Phase != from {
		events = append(events, Event{Kind: EventPhaseChanged, Phase: g.state.Phase, Score: g.state.Score, Level: g.state.Level})
	}
	return events
}
