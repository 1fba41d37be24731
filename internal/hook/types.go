// Package hook runs external session hooks: executables that receive the
// result of a finished game as JSON on stdin and answer with JSON on stdout.
// The bundled eco-points hook uses this to credit points to a ledger.
package hook

import (
	"encoding/json"
	"slices"
	"time"
)

// Events a hook can subscribe to.
const (
	EventSessionFinished = "session.finished"
)

// ManifestFile is the manifest name expected in every hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and subscriptions.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// SessionInfo is the finished-session payload sent to hooks.
type SessionInfo struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Missed    int       `json:"missed"`
	Sorted    int       `json:"sorted"`
	Misplaced int       `json:"misplaced"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Request represents a request sent to a hook for execution.
type Request struct {
	Event   string          `json:"event"`
	Session SessionInfo     `json:"session"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a hook execution.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Retryable marks a failure the hook expects to clear on a later attempt.
	Retryable bool `json:"retryable,omitempty"`
	// Credited is the number of points the hook accepted.
	Credited int             `json:"credited,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Hook represents a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribes to event.
func (h *Hook) Handles(event string) bool {
	return slices.Contains(h.Manifest.Events, event)
}
