package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/wastesort/internal/capture"
	"github.com/ayusman/wastesort/internal/detector"
	"github.com/ayusman/wastesort/internal/gesture"
	"github.com/ayusman/wastesort/internal/game"
	"github.com/ayusman/wastesort/internal/render"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// ErrCaptureUnavailable is returned when the camera cannot be opened. No
// session is played in that case.
var ErrCaptureUnavailable = errors.New("capture device unavailable")

// errorLogInterval limits repeated per-tick error lines.
const errorLogInterval = time.Second

// Observer receives copies of what the runner produces each tick. Nil
// callbacks are skipped; OnFrame is only encoded when set.
type Observer struct {
	OnFrame    func(jpeg []byte)
	OnSnapshot func(game.Snapshot)
	OnEvents   func([]game.Event)
}

// Result is the outcome of one played session.
type Result struct {
	SessionID string    `json:"session_id"`
	Player    string    `json:"player,omitempty"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Missed    int       `json:"missed"`
	Sorted    int       `json:"sorted"`
	Misplaced int       `json:"misplaced"`
	Credited  int       `json:"credited"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// RunnerConfig wires a Runner. Camera, Session and Display are required.
type RunnerConfig struct {
	Camera      capture.Camera
	Detector    detector.Detector
	Interpreter *gesture.Interpreter
	Session     game.Session
	Renderer    *render.Renderer
	Display     Display
	Observers   []Observer
	// Now stamps the session start and end. Defaults to time.Now.
	Now func() time.Time
}

// Runner drives one session: read, mirror, detect, interpret, step, draw,
// show, poll keys. All game state is touched on the goroutine calling Run.
type Runner struct {
	camera      capture.Camera
	detector    detector.Detector
	interpreter *gesture.Interpreter
	session     game.Session
	renderer    *render.Renderer
	display     Display
	observers   []Observer
	wantFrames  bool
	now         func() time.Time

	lastReadErr   time.Time
	lastDetectErr time.Time
}

// NewRunner creates a Runner, filling optional parts with defaults.
func NewRunner(config RunnerConfig) *Runner {
	r := &Runner{
		camera:      config.Camera,
		detector:    config.Detector,
		interpreter: config.Interpreter,
		session:     config.Session,
		renderer:    config.Renderer,
		display:     config.Display,
		observers:   config.Observers,
		now:         config.Now,
	}
	if r.interpreter == nil {
		r.interpreter = gesture.NewInterpreter(gesture.DefaultConfig())
	}
	if r.renderer == nil {
		r.renderer = render.New(render.DefaultPalette())
	}
	if r.display == nil {
		r.display = NewHeadlessDisplay()
	}
	if r.now == nil {
		r.now = time.Now
	}
	for _, o := range r.observers {
		if o.OnFrame != nil {
			r.wantFrames = true
		}
	}
	return r
}

// Run plays until the quit key, a terminal step or ctx cancellation. The
// camera is opened on entry and closed on every exit path.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.camera.Open(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	defer func() {
		if err := r.camera.Close(); err != nil {
			log.Printf("[GAME] Error closing camera: %v", err)
		}
	}()

	res := Result{
		SessionID: uuid.NewString(),
		StartedAt: r.now(),
	}
	log.Printf("[GAME] Session %s started", res.SessionID)

	key := game.KeyNone
	for ctx.Err() == nil {
		stepped, terminal := r.tick(key)
		if terminal {
			break
		}

		next := game.KeyFromCode(r.display.WaitKey(1))
		if next == game.KeyQuit {
			break
		}
		// A key polled after a skipped tick waits for the next step.
		if stepped || next != game.KeyNone {
			key = next
		}
	}

	snap := r.session.Snapshot()
	res.Score = snap.Score
	res.Level = snap.Level
	res.Missed = snap.Missed
	res.Sorted = snap.Sorted
	res.Misplaced = snap.Misplaced
	res.EndedAt = r.now()

	log.Printf("[GAME] Session %s ended: score=%d level=%d sorted=%d misplaced=%d missed=%d",
		res.SessionID, res.Score, res.Level, res.Sorted, res.Misplaced, res.Missed)
	return res, nil
}

// tick runs one frame. stepped is false when no frame could be read.
func (r *Runner) tick(key game.Key) (stepped, terminal bool) {
	frame, err := r.camera.ReadFrame()
	if err != nil {
		r.logLimited(&r.lastReadErr, "Error reading frame: %v", err)
		return false, false
	}
	defer frame.Close()

	if frame.Empty() {
		r.logLimited(&r.lastReadErr, "Error reading frame: %v", capture.ErrEmptyFrame)
		return false, false
	}

	capture.Mirror(frame)
	width, height := frame.Cols(), frame.Rows()

	sig := r.interpreter.Interpret(r.detect(frame), width, height)
	step := r.session.Step(game.Input{
		Width:     width,
		Height:    height,
		Cursor:    game.Point{X: sig.X, Y: sig.Y},
		HasCursor: sig.Present,
		Pinching:  sig.Pinching,
		Key:       key,
	})
	if step.Terminal {
		return true, true
	}

	snap := r.session.Snapshot()
	r.renderer.Draw(frame, snap, sig)
	r.notify(frame, snap, step.Events)
	r.display.Show(frame)

	return true, false
}

// detect treats detector failures as "no hand".
func (r *Runner) detect(frame *gocv.Mat) []detector.HandLandmarks {
	if r.detector == nil {
		return nil
	}
	hands, err := r.detector.Detect(frame)
	if err != nil {
		r.logLimited(&r.lastDetectErr, "Error detecting hands: %v", err)
		return nil
	}
	return hands
}

func (r *Runner) notify(frame *gocv.Mat, snap game.Snapshot, events []game.Event) {
	if len(r.observers) == 0 {
		return
	}

	var jpeg []byte
	if r.wantFrames {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		if err == nil {
			jpeg = bytes.Clone(buf.GetBytes())
			buf.Close()
		}
	}

	for _, o := range r.observers {
		if o.OnFrame != nil && jpeg != nil {
			o.OnFrame(jpeg)
		}
		if o.OnSnapshot != nil {
			o.OnSnapshot(snap)
		}
		if o.OnEvents != nil && len(events) > 0 {
			o.OnEvents(events)
		}
	}
}

func (r *Runner) logLimited(last *time.Time, format string, args ...any) {
	now := r.now()
	if !last.IsZero() && now.Sub(*last) < errorLogInterval {
		return
	}
	*last = now
	log.Printf("[GAME] "+format, args...)
}
