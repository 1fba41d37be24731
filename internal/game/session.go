package game

// Key is a recognised keyboard command.
type Key uint8

const (
	KeyNone Key = iota
	KeyStart
	KeyPause
	KeyRestart
	KeyQuit
)

// KeyFromCode maps a key code as returned by a window's WaitKey to a Key.
// Unrecognised codes map to KeyNone.
func KeyFromCode(code int) Key {
	if code < 0 {
		return KeyNone
	}
	switch code & 0xFF {
	case ' ':
		return KeyStart
	case 'p', 'P':
		return KeyPause
	case 'r', 'R':
		return KeyRestart
	case 'q', 'Q':
		return KeyQuit
	default:
		return KeyNone
	}
}

// Input is everything a session consumes in one tick.
type Input struct {
	// Width and Height are the current play-area (frame) size in pixels.
	Width  int
	Height int

	// Cursor is only meaningful when HasCursor is true.
	Cursor    Point
	HasCursor bool
	Pinching  bool

	Key Key
}

// StepResult is returned by Session.Step after each tick.
type StepResult struct {
	Events []Event
	// Terminal is set when the session should end (quit).
	Terminal bool
}

// Session is an arcade loop: spawn, move, collide, score.
type Session interface {
	Step(in Input) StepResult
	Snapshot() Snapshot
}

var _ Session = (*Game)(nil)
