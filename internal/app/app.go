// Package app wires camera, hand detection, the game and its consumers into
// playable sessions and records their results.
package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/ayusman/wastesort/internal/capture"
	"github.com/ayusman/wastesort/internal/detector"
	"github.com/ayusman/wastesort/internal/game"
	"github.com/ayusman/wastesort/internal/gesture"
	"github.com/ayusman/wastesort/internal/hook"
	"github.com/ayusman/wastesort/internal/render"
	"github.com/ayusman/wastesort/internal/store"
)

// ErrAlreadyPlaying is returned by Play while another session is running.
var ErrAlreadyPlaying = errors.New("a session is already running")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Hooks    *hook.Dispatcher
	Camera   capture.Config
	Detector detector.Config
	Gesture  gesture.Config
	Tuning   game.Tuning
	Player   string
}

// App plays sessions one at a time and persists their results.
type App struct {
	config      Config
	camera      capture.Camera
	detector    detector.Detector
	interpreter *gesture.Interpreter
	renderer    *render.Renderer
	observers   []Observer
	playing     bool
	last        *Result
	mu          sync.RWMutex
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Tuning == (game.Tuning{}) {
		config.Tuning = game.DefaultTuning()
	}
	if config.Detector.MaxHands <= 0 {
		script := config.Detector.ScriptPath
		config.Detector = detector.DefaultConfig()
		config.Detector.ScriptPath = script
	}

	a := &App{
		config:      config,
		camera:      capture.NewCamera(config.Camera),
		interpreter: gesture.NewInterpreter(config.Gesture),
		renderer:    render.New(render.DefaultPalette()),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the video source.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetPlayer sets the name recorded with future sessions.
func (a *App) SetPlayer(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config.Player = name
}

// AddObserver registers callbacks for every future session.
func (a *App) AddObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Play runs one session on display and blocks until it ends. The result is
// stored and offered to the session hooks; failures there are logged and
// never discard the result.
func (a *App) Play(ctx context.Context, display Display) (Result, error) {
	a.mu.Lock()
	if a.playing {
		a.mu.Unlock()
		return Result{}, ErrAlreadyPlaying
	}
	a.playing = true
	cfg := a.config
	runner := NewRunner(RunnerConfig{
		Camera:      a.camera,
		Detector:    a.detector,
		Interpreter: a.interpreter,
		Session: game.New(game.Options{
			Tuning: cfg.Tuning,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
		}),
		Renderer:  a.renderer,
		Display:   display,
		Observers: append([]Observer(nil), a.observers...),
	})
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.playing = false
		a.mu.Unlock()
	}()

	res, err := runner.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	res.Player = cfg.Player

	a.record(ctx, cfg, &res)

	a.mu.Lock()
	last := res
	a.last = &last
	a.mu.Unlock()

	return res, nil
}

// record persists the session and runs the crediting hooks. Hooks still run
// with a canceled play context, since the session has already ended.
func (a *App) record(ctx context.Context, cfg Config, res *Result) {
	if cfg.Store != nil {
		sess := &store.Session{
			ID:        res.SessionID,
			Player:    res.Player,
			Score:     res.Score,
			Level:     res.Level,
			Missed:    res.Missed,
			Sorted:    res.Sorted,
			Misplaced: res.Misplaced,
			StartedAt: res.StartedAt,
			EndedAt:   res.EndedAt,
		}
		if err := cfg.Store.Sessions().Create(sess); err != nil {
			log.Printf("[STORE] Failed to save session %s: %v", res.SessionID, err)
		}
	}

	if cfg.Hooks == nil {
		return
	}

	credited, _, err := cfg.Hooks.SessionFinished(context.WithoutCancel(ctx), hook.SessionInfo{
		ID:        res.SessionID,
		Player:    res.Player,
		Score:     res.Score,
		Level:     res.Level,
		Missed:    res.Missed,
		Sorted:    res.Sorted,
		Misplaced: res.Misplaced,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
	})
	if err != nil {
		log.Printf("[HOOK] Session %s: %v", res.SessionID, err)
	}
	res.Credited = credited

	if credited > 0 && cfg.Store != nil {
		if err := cfg.Store.Sessions().MarkCredited(res.SessionID, credited); err != nil {
			log.Printf("[STORE] Failed to mark session %s credited: %v", res.SessionID, err)
		}
	}
}

// IsPlaying reports whether a session is running.
func (a *App) IsPlaying() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.playing
}

// LastResult returns the result of the most recent finished session.
func (a *App) LastResult() (Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return Result{}, false
	}
	return *a.last, true
}

// Best returns the player's best stored score.
func (a *App) Best() (int, error) {
	a.mu.RLock()
	cfg := a.config
	a.mu.RUnlock()
	if cfg.Store == nil {
		if last, ok := a.LastResult(); ok {
			return last.Score, nil
		}
		return 0, nil
	}
	return cfg.Store.Sessions().Best(cfg.Player)
}

// Close releases the hand detector.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detector != nil {
		return a.detector.Close()
	}
	return nil
}
