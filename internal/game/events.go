package game

// EventKind identifies what happened during a step.
type EventKind uint8

const (
	EventSpawned EventKind = iota
	EventGrabbed
	EventReleased // dropped above the bins, back to falling
	EventSorted
	EventMisplaced
	EventMissed
	EventLevelUp
	EventGameOver
	EventPhaseChanged
)

func (k EventKind) String() string {
	switch k {
	case EventSpawned:
		return "spawned"
	case EventGrabbed:
		return "grabbed"
	case EventReleased:
		return "released"
	case EventSorted:
		return "sorted"
	case EventMisplaced:
		return "misplaced"
	case EventMissed:
		return "missed"
	case EventLevelUp:
		return "level_up"
	case EventGameOver:
		return "game_over"
	case EventPhaseChanged:
		return "phase_changed"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event describes one state change produced by Game.Step.
type Event struct {
	Kind     EventKind `json:"kind"`
	ObjectID uint64    `json:"object_id,omitempty"`
	Category Category  `json:"category"`
	// Zone is the bin index for sorted and misplaced drops.
	Zone  int   `json:"zone"`
	Score int   `json:"score"`
	Level int   `json:"level"`
	Phase Phase `json:"phase"`
}
