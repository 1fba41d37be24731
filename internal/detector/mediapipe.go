package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/wastesort/internal/retry"
	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the MediaPipe service script cannot be located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

const (
	serviceScript = "mediapipe_service.py"
	// idleTimeout stops the service after this long without frames.
	idleTimeout = 30 * time.Second
	jpegQuality = 80

	// startupTimeout bounds the first exchange, which includes model loading.
	startupTimeout = 20 * time.Second
	// frameTimeout bounds every later exchange.
	frameTimeout = time.Second
	// stopGrace is how long a service may take to exit after stdin closes.
	stopGrace = 2 * time.Second

	// Relaunch delays after a failure double from minRelaunch up to maxRelaunch.
	minRelaunch = time.Second
	maxRelaunch = 30 * time.Second
)

// MediaPipeDetector implements Detector by streaming frames to a Python
// MediaPipe service. Each request is a 4-byte big-endian length followed by
// a JPEG; each reply is one JSON line.
//
// The service starts in the background. Until it answers, and for a growing
// delay after it fails, Detect reports no hands instead of blocking.
type MediaPipeDetector struct {
	config Config
	script string
	// interpreter overrides the python lookup when set.
	interpreter    string
	policy         retry.Policy
	startupTimeout time.Duration
	frameTimeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	svc        *service
	starting   bool
	startErr   error
	backoff    time.Duration
	nextLaunch time.Time
	idle       *time.Timer
	closed     bool
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on the first Detect.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = locate(scriptCandidates()...)
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MediaPipeDetector{
		config:         config,
		script:         script,
		policy:         retry.DefaultPolicy(),
		startupTimeout: startupTimeout,
		frameTimeout:   frameTimeout,
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// Detect sends frame to the service and returns at most MaxHands hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}
	jpeg, err := encodeFrame(frame)
	if err != nil {
		return nil, err
	}
	return d.detect(jpeg)
}

func (d *MediaPipeDetector) detect(jpeg []byte) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.svc == nil {
		if err := d.startErr; err != nil {
			d.startErr = nil
			return nil, err
		}
		if !d.starting && !d.closed && !time.Now().Before(d.nextLaunch) {
			d.starting = true
			d.wg.Add(1)
			go d.launch(jpeg)
		}
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(d.ctx, d.frameTimeout)
	defer cancel()
	rep, err := d.svc.roundTrip(ctx, jpeg)
	if err != nil {
		// The stream is out of sync after a failed exchange.
		d.stop()
		d.delayLaunch()
		return nil, err
	}
	d.backoff = 0
	d.touch()

	if rep.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", rep.Error)
	}

	n := len(rep.Hands)
	if d.config.MaxHands > 0 {
		n = min(n, d.config.MaxHands)
	}
	hands := make([]HandLandmarks, n)
	for i := range n {
		hands[i] = rep.Hands[i].toHandLandmarks()
	}
	return hands, nil
}

// Close shuts down the Python process and waits for a pending start.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	d.closed = true
	d.cancel()
	err := d.stop()
	d.mu.Unlock()

	d.wg.Wait()
	return err
}

// launch starts the service and warms it up with the first frame, retrying
// failures that may be transient. It runs without holding mu.
func (d *MediaPipeDetector) launch(jpeg []byte) {
	defer d.wg.Done()

	svc, err := retry.Do(d.ctx, d.policy, func(ctx context.Context, attempt int) retry.Result[*service] {
		svc, err := startService(d.python(), d.serviceArgs())
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
				return retry.Permanent[*service](err)
			}
			return retry.Transient[*service](err)
		}

		warmCtx, cancel := context.WithTimeout(ctx, d.startupTimeout)
		defer cancel()
		if _, err := svc.roundTrip(warmCtx, jpeg); err != nil {
			svc.stop()
			return retry.Transient[*service](err)
		}
		return retry.Ok(svc)
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.starting = false

	if err != nil {
		d.startErr = fmt.Errorf("start mediapipe service: %w", err)
		d.delayLaunch()
		return
	}
	if d.closed {
		svc.stop()
		return
	}
	d.svc = svc
	d.touch()
}

// delayLaunch holds off the next start. Caller holds mu.
func (d *MediaPipeDetector) delayLaunch() {
	d.backoff = min(max(2*d.backoff, minRelaunch), maxRelaunch)
	d.nextLaunch = time.Now().Add(d.backoff)
}

// serviceArgs returns the command line passed to the service script.
func (d *MediaPipeDetector) serviceArgs() []string {
	return []string{
		d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
}

// python prefers a virtualenv interpreter over the system python3.
func (d *MediaPipeDetector) python() string {
	if d.interpreter != "" {
		return d.interpreter
	}
	if p := locate(pythonCandidates()...); p != "" {
		return p
	}
	return "python3"
}

// touch restarts the idle countdown. Caller holds mu.
func (d *MediaPipeDetector) touch() {
	if d.idle != nil {
		d.idle.Stop()
	}
	d.idle = time.AfterFunc(idleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

// stop ends the service if it runs. Caller holds mu.
func (d *MediaPipeDetector) stop() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	return err
}

func encodeFrame(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), jpegQuality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	// The native buffer is freed on Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// service is one running MediaPipe subprocess.
type service struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	in    *bufio.Writer
	out   *bufio.Reader
}

type reply struct {
	Hands []jsonHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

func startService(python string, args []string) (*service, error) {
	if _, err := os.Stat(args[0]); err != nil {
		return nil, fmt.Errorf("service script: %w", err)
	}

	cmd := exec.Command(python, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	return &service{
		cmd:   cmd,
		stdin: stdin,
		in:    bufio.NewWriter(stdin),
		out:   bufio.NewReader(stdout),
	}, nil
}

// roundTrip exchanges one frame. When ctx ends first the process is killed,
// which also unblocks the pending exchange.
func (s *service) roundTrip(ctx context.Context, jpeg []byte) (reply, error) {
	type result struct {
		rep reply
		err error
	}
	done := make(chan result, 1)
	go func() {
		rep, err := s.exchange(jpeg)
		done <- result{rep, err}
	}()

	select {
	case r := <-done:
		return r.rep, r.err
	case <-ctx.Done():
		s.kill()
		return reply{}, fmt.Errorf("mediapipe service did not answer: %w", ctx.Err())
	}
}

// exchange writes one framed JPEG and reads the reply line.
func (s *service) exchange(jpeg []byte) (reply, error) {
	var rep reply

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(jpeg)))
	if _, err := s.in.Write(header[:]); err != nil {
		return rep, fmt.Errorf("write frame header: %w", err)
	}
	if _, err := s.in.Write(jpeg); err != nil {
		return rep, fmt.Errorf("write frame: %w", err)
	}
	if err := s.in.Flush(); err != nil {
		return rep, fmt.Errorf("write frame: %w", err)
	}

	line, err := s.out.ReadBytes('\n')
	if err != nil {
		return rep, fmt.Errorf("read reply: %w", err)
	}
	if err := json.Unmarshal(line, &rep); err != nil {
		return rep, fmt.Errorf("parse reply: %w", err)
	}
	return rep, nil
}

func (s *service) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}

// stop closes stdin, which the service treats as end of input, and waits.
// A service that does not exit within stopGrace is killed.
func (s *service) stop() error {
	s.stdin.Close()
	if s.cmd == nil {
		return nil
	}
	t := time.AfterFunc(stopGrace, s.kill)
	defer t.Stop()
	return s.cmd.Wait()
}

func scriptCandidates() []string {
	paths := []string{
		filepath.Join("scripts", serviceScript),
		filepath.Join("..", "scripts", serviceScript),
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "scripts", serviceScript))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".wastesort", "scripts", serviceScript))
	}
	return paths
}

func pythonCandidates() []string {
	venv := filepath.Join("venv", "bin", "python")
	paths := []string{venv, filepath.Join("..", venv), filepath.Join("..", "..", venv)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), venv))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".wastesort", venv))
	}
	return paths
}

// locate returns the absolute form of the first existing path, or "".
func locate(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// jsonHand is one hand in a service reply.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	for i, p := range h.Points[:min(len(h.Points), NumLandmarks)] {
		lm.Points[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return lm
}
