// Package main provides the eco-points session hook. It appends the score of
// each finished game to a CSV ledger of eco actions.
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Request represents the input from the hook executor.
type Request struct {
	Event   string          `json:"event"`
	Session Session         `json:"session"`
	Config  json.RawMessage `json:"config"`
}

// Session is the part of the finished game this hook needs.
type Session struct {
	ID      string    `json:"id"`
	Player  string    `json:"player"`
	Score   int       `json:"score"`
	EndedAt time.Time `json:"ended_at"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Credited  int    `json:"credited,omitempty"`
}

// Config is read from the hook manifest.
type Config struct {
	// Ledger is the CSV file path, relative to the hook directory.
	Ledger string `json:"ledger"`
	Action string `json:"action"`
}

var ledgerHeader = []string{"user", "action", "points", "date"}

func main() {
	json.NewEncoder(os.Stdout).Encode(handle(os.Stdin))
}

func handle(r io.Reader) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}
	if req.Event != "session.finished" {
		return Response{Error: fmt.Sprintf("unknown event: %s", req.Event)}
	}

	cfg := Config{Ledger: "eco-ledger.csv", Action: "Waste Sorting Game"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return Response{Error: fmt.Sprintf("failed to parse config: %v", err)}
		}
	}

	// Nothing to credit.
	if req.Session.Score <= 0 {
		return Response{Success: true}
	}

	user := req.Session.Player
	if user == "" {
		user = "Student_User"
	}
	date := req.Session.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	row := []string{user, cfg.Action, strconv.Itoa(req.Session.Score), date.Format(time.DateOnly)}
	if err := appendRow(cfg.Ledger, row); err != nil {
		// A permission problem will not clear on the next attempt.
		return Response{Error: err.Error(), Retryable: !errors.Is(err, os.ErrPermission)}
	}

	return Response{Success: true, Credited: req.Session.Score}
}

// appendRow writes row to the ledger, adding the header to a new file.
func appendRow(path string, row []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(ledgerHeader)
	}
	w.Write(row)
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}
