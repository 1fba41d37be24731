package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ayusman/wastesort/internal/retry"
)

// writeHook creates dir/name with a hook.json manifest and an executable
// shell script, and returns the hook directory.
func writeHook(t *testing.T, dir, name, script string, events ...string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	hookDir := filepath.Join(dir, name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifest := Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Events:     events,
		Config:     json.RawMessage(`{"ledger":"points.csv"}`),
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return hookDir
}

func testHook(t *testing.T, script string) *Hook {
	t.Helper()
	dir := writeHook(t, t.TempDir(), "test-hook", script, EventSessionFinished)
	return &Hook{
		Manifest:   Manifest{Name: "test-hook", Executable: "run.sh", Events: []string{EventSessionFinished}},
		Path:       dir,
		Executable: filepath.Join(dir, "run.sh"),
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{Attempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2}
}

func sampleRequest() *Request {
	return &Request{
		Event: EventSessionFinished,
		Session: SessionInfo{
			ID:     "s-1",
			Player: "asha",
			Score:  70,
			Level:  2,
		},
	}
}
