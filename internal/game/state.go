package game

import (
	"fmt"
	"time"
)

// Phase is the top-level session state.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhasePlaying
	PhasePaused
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseOver:
		return "over"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the mutable game state. It is owned by a Game and only changed
// inside Game.Step.
type State struct {
	Score         int
	Missed        int
	Level         int
	SpawnInterval time.Duration
	FallSpeed     float64
	Phase         Phase
	Objects       []*Object

	Sorted    int
	Misplaced int
}

// Zone is one bin as seen by read-only consumers.
type Zone struct {
	Category Category `json:"category"`
	Rect     Rect     `json:"rect"`
}

// Snapshot is a copy of the game state safe to hand to renderers and other
// goroutines.
type Snapshot struct {
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
	Score         int           `json:"score"`
	Missed        int           `json:"missed"`
	MaxMissed     int           `json:"max_missed"`
	Level         int           `json:"level"`
	SpawnInterval time.Duration `json:"spawn_interval"`
	FallSpeed     float64       `json:"fall_speed"`
	Phase         Phase         `json:"phase"`
	Sorted        int           `json:"sorted"`
	Misplaced     int           `json:"misplaced"`
	Zones         []Zone        `json:"zones"`
	Objects       []Object      `json:"objects"`
}

// Dragged returns the dragged object in the snapshot, if any.
func (s Snapshot) Dragged() (Object, bool) {
	for _, o := range s.Objects {
		if o.State == Dragged {
			return o, true
		}
	}
	return Object{}, false
}
