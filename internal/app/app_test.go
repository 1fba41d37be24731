package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/ayusman/wastesort/internal/detector"
	"github.com/ayusman/wastesort/internal/hook"
	"github.com/ayusman/wastesort/internal/retry"
	"github.com/ayusman/wastesort/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestApp returns an App on a looping mock camera and an idle mock detector.
func newTestApp(t *testing.T, config Config) *App {
	t.Helper()
	config.Detector = detector.Config{MaxHands: 1, ScriptPath: filepath.Join(t.TempDir(), "missing.py")}
	a := New(config)
	a.SetCamera(loopCamera(t))
	a.SetDetector(detector.NewMockDetector())
	return a
}

// creditingHooks returns a dispatcher over one hook that credits points.
func creditingHooks(t *testing.T, points int) *hook.Dispatcher {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	hookDir := filepath.Join(dir, "credit")
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest, _ := json.Marshal(hook.Manifest{
		Name:       "credit",
		Executable: "run.sh",
		Events:     []string{hook.EventSessionFinished},
	})
	if err := os.WriteFile(filepath.Join(hookDir, hook.ManifestFile), manifest, 0644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\ncat > /dev/null\necho '{\"success\":true,\"credited\":" + strconv.Itoa(points) + "}'\n"
	if err := os.WriteFile(filepath.Join(hookDir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	m := hook.NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	e := hook.NewExecutor(5 * time.Second)
	e.SetPolicy(retry.Policy{Attempts: 1})
	return hook.NewDispatcher(m, e)
}

func TestApp_Play_StoresResult(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, Config{Store: s, Player: "asha"})

	res, err := a.Play(context.Background(), NewHeadlessDisplay(keySpace, keyNone, keyQuit))
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if res.Player != "asha" {
		t.Errorf("Player = %q, want asha", res.Player)
	}

	stored, err := s.Sessions().GetByID(res.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if stored.Player != "asha" || stored.Score != res.Score || stored.Level != res.Level {
		t.Errorf("stored %+v does not match result %+v", stored, res)
	}

	last, ok := a.LastResult()
	if !ok || last.SessionID != res.SessionID {
		t.Errorf("LastResult() = %+v, %v", last, ok)
	}
	if a.IsPlaying() {
		t.Error("IsPlaying() after Play returned")
	}

	best, err := a.Best()
	if err != nil || best != 0 {
		t.Errorf("Best() = %d, %v", best, err)
	}
}

func TestApp_Play_CreditsHooks(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, Config{Store: s, Hooks: creditingHooks(t, 7), Player: "ravi"})

	res, err := a.Play(context.Background(), NewHeadlessDisplay(keyQuit))
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if res.Credited != 7 {
		t.Errorf("Credited = %d, want 7", res.Credited)
	}

	stored, err := s.Sessions().GetByID(res.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if stored.Credited != 7 {
		t.Errorf("stored credited = %d, want 7", stored.Credited)
	}
}

func TestApp_Play_WithoutStore(t *testing.T) {
	a := newTestApp(t, Config{})

	res, err := a.Play(context.Background(), NewHeadlessDisplay(keyQuit))
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	best, err := a.Best()
	if err != nil || best != res.Score {
		t.Errorf("Best() = %d, %v; want %d", best, err, res.Score)
	}
}

func TestApp_Play_CaptureUnavailable(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, Config{Store: s})
	cam := loopCamera(t)
	cam.SetOpenError(errors.New("no device"))
	a.SetCamera(cam)

	if _, err := a.Play(context.Background(), NewHeadlessDisplay(keyQuit)); !errors.Is(err, ErrCaptureUnavailable) {
		t.Fatalf("Play() error = %v, want ErrCaptureUnavailable", err)
	}
	if n, _ := s.Sessions().Count(); n != 0 {
		t.Errorf("%d sessions stored for a game that never started", n)
	}
	if _, ok := a.LastResult(); ok {
		t.Error("LastResult() should be empty")
	}
}

func TestApp_Play_OneAtATime(t *testing.T) {
	a := newTestApp(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := a.Play(ctx, NewHeadlessDisplay())
		done <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !a.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("first session never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := a.Play(context.Background(), NewHeadlessDisplay(keyQuit)); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Play() error = %v, want ErrAlreadyPlaying", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("first Play() failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first session did not stop on cancel")
	}
}

func TestApp_Observers(t *testing.T) {
	a := newTestApp(t, Config{})
	rec := &recorder{}
	a.AddObserver(rec.observer())

	if _, err := a.Play(context.Background(), NewHeadlessDisplay(keySpace, keyQuit)); err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if len(rec.snaps) != 2 {
		t.Errorf("observer saw %d snapshots, want 2", len(rec.snaps))
	}
}

func TestApp_Close(t *testing.T) {
	a := newTestApp(t, Config{})
	det := detector.NewMockDetector()
	a.SetDetector(det)
	if err := a.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !det.Closed() {
		t.Error("detector not closed")
	}
}
