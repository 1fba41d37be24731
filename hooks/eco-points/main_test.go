package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func request(t *testing.T, ledger, player string, score int) string {
	t.Helper()
	cfg, _ := json.Marshal(Config{Ledger: ledger, Action: "Waste Sorting Game"})
	return fmt.Sprintf(`{"event":"session.finished","session":{"id":"s1","player":%q,"score":%d,"ended_at":"2026-05-04T10:30:00Z"},"config":%s}`,
		player, score, cfg)
}

func readLedger(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	return rows
}

func TestHandle_AppendsRows(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "data", "ledger.csv")

	for _, tt := range []struct {
		player string
		score  int
	}{
		{"asha", 40},
		{"", 15},
	} {
		resp := handle(strings.NewReader(request(t, ledger, tt.player, tt.score)))
		if !resp.Success || resp.Credited != tt.score {
			t.Fatalf("response = %+v, want success credited %d", resp, tt.score)
		}
	}

	rows := readLedger(t, ledger)
	want := [][]string{
		{"user", "action", "points", "date"},
		{"asha", "Waste Sorting Game", "40", "2026-05-04"},
		{"Student_User", "Waste Sorting Game", "15", "2026-05-04"},
	}
	if len(rows) != len(want) {
		t.Fatalf("ledger has %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		if strings.Join(rows[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestHandle_ZeroScore(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.csv")

	resp := handle(strings.NewReader(request(t, ledger, "asha", 0)))
	if !resp.Success || resp.Credited != 0 {
		t.Errorf("response = %+v, want success with nothing credited", resp)
	}
	if _, err := os.Stat(ledger); !os.IsNotExist(err) {
		t.Error("ledger should not be created for a zero score")
	}
}

func TestHandle_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad json", "{"},
		{"unknown event", `{"event":"session.started","session":{"score":10}}`},
		{"bad config", `{"event":"session.finished","session":{"score":10},"config":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(strings.NewReader(tt.input))
			if resp.Success || resp.Error == "" {
				t.Errorf("response = %+v, want failure", resp)
			}
		})
	}
}
