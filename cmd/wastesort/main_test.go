package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/wastesort/internal/app"
	"github.com/ayusman/wastesort/internal/audio"
	"github.com/ayusman/wastesort/internal/config"
	"github.com/ayusman/wastesort/internal/detector"
	"github.com/ayusman/wastesort/internal/store"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestRun_SetupErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"data dir under a file", config.Config{DataDir: filepath.Join(file, "data")}, "data directory"},
		{"database in a missing dir", config.Config{DataDir: dir, DBPath: filepath.Join(dir, "missing", "db.sqlite")}, "store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := run(&cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestPrepareSession_AudioEnabledLater(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:    st,
		Detector: detector.Config{MaxHands: 1, ScriptPath: filepath.Join(t.TempDir(), "missing.py")},
	})
	defer a.Close()

	cfg := &config.Config{Player: "asha", Audio: audio.Config{Enabled: false, Volume: 0.5}}
	player := audio.NewPlayer(audio.DefaultConfig())
	player.SetEnabled(false)
	defer player.Close()

	logs := captureLog(t)

	prepareSession(st, a, player, cfg)
	if strings.Contains(logs.String(), "[AUDIO] Speaker") {
		t.Fatalf("speaker opened while audio is off: %s", logs)
	}

	if err := st.Settings().Set(store.SettingAudioEnabled, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	prepareSession(st, a, player, cfg)

	if !player.Config().Enabled {
		t.Error("saved setting did not enable audio")
	}
	// Either outcome shows the speaker was opened for the new session.
	if out := logs.String(); !strings.Contains(out, "[AUDIO] Speaker ready") && !strings.Contains(out, "[AUDIO] Speaker unavailable") {
		t.Errorf("speaker was not opened after audio was enabled: %q", out)
	}
}
