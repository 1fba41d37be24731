package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/wastesort/internal/game"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, "WASTESORT_") {
			clearEnv(t, key)
		}
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if filepath.Base(cfg.DBPath) != "wastesort.db" || filepath.Dir(cfg.DBPath) != cfg.DataDir {
		t.Errorf("DBPath = %q, want wastesort.db in %q", cfg.DBPath, cfg.DataDir)
	}
	if cfg.Tuning != game.DefaultTuning() {
		t.Errorf("Tuning = %+v, want defaults", cfg.Tuning)
	}
	if cfg.Camera.Width != 800 || cfg.Camera.Height != 600 {
		t.Errorf("camera = %dx%d, want 800x600", cfg.Camera.Width, cfg.Camera.Height)
	}
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WASTESORT_DATA_DIR", dir)
	t.Setenv("WASTESORT_CAMERA_ID", "2")
	t.Setenv("WASTESORT_MAX_MISSED", "3")
	t.Setenv("WASTESORT_SPAWN_INTERVAL", "1500ms")
	t.Setenv("WASTESORT_MIN_SPAWN_INTERVAL", "400")
	t.Setenv("WASTESORT_AUDIO_ENABLED", "false")
	t.Setenv("WASTESORT_FALL_SPEED", "4.5")
	t.Setenv("WASTESORT_CAPTURE_RADIUS", "not-a-number")
	clearEnv(t, "WASTESORT_DB_PATH", "WASTESORT_HOOK_DIR")

	cfg := Load(filepath.Join(dir, "missing.env"))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"db path", cfg.DBPath, filepath.Join(dir, "wastesort.db")},
		{"hook dir", cfg.HookDir, filepath.Join(dir, "hooks")},
		{"camera id", cfg.Camera.DeviceID, 2},
		{"max missed", cfg.Tuning.MaxMissed, 3},
		{"spawn interval", cfg.Tuning.InitialSpawnInterval, 1500 * time.Millisecond},
		{"min spawn interval as millis", cfg.Tuning.MinSpawnInterval, 400 * time.Millisecond},
		{"audio", cfg.Audio.Enabled, false},
		{"fall speed", cfg.Tuning.InitialFallSpeed, 4.5},
		{"bad value keeps default", cfg.Tuning.CaptureRadius, game.DefaultTuning().CaptureRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t, "WASTESORT_PLAYER", "WASTESORT_HTTP_ADDR", "WASTESORT_TRAY")
	t.Setenv("WASTESORT_HTTP_ADDR", "127.0.0.1:9000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "WASTESORT_PLAYER=asha\nWASTESORT_HTTP_ADDR=:7000\nWASTESORT_TRAY=true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("WASTESORT_PLAYER")
		os.Unsetenv("WASTESORT_TRAY")
	})

	cfg := Load(path)

	if cfg.Player != "asha" {
		t.Errorf("Player = %q, want asha", cfg.Player)
	}
	if !cfg.Tray {
		t.Error("Tray = false, want true")
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("HTTPAddr = %q, the environment should win over the file", cfg.HTTPAddr)
	}
}
