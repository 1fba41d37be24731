// Package gesture turns detected hand landmarks into a pointer signal: a
// cursor between the thumb and index fingertips and a pinch flag.
package gesture

import (
	"math"

	"github.com/ayusman/wastesort/internal/detector"
)

// DefaultPinchThreshold is the fingertip distance, in pixels, below which the
// hand counts as pinching.
const DefaultPinchThreshold = 50.0

// Signal is the per-frame interpretation of the tracked hand, in frame pixels.
type Signal struct {
	// Present is false when no usable hand was detected.
	Present bool `json:"present"`
	// X and Y are the cursor, the midpoint of the thumb and index fingertips.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Distance is the thumb-to-index fingertip distance.
	Distance float64 `json:"distance"`
	// Pinching is true when Distance is below the pinch threshold.
	Pinching bool `json:"pinching"`
}

// Config holds the interpreter thresholds.
type Config struct {
	PinchThreshold float64
	// MinScore drops hands the detector is less sure about than this.
	MinScore float64
}

// DefaultConfig returns the thresholds used at 800x600.
func DefaultConfig() Config {
	return Config{
		PinchThreshold: DefaultPinchThreshold,
	}
}

// Interpreter converts landmarks to a Signal.
type Interpreter struct {
	config Config
}

// NewInterpreter creates an Interpreter. A non-positive threshold falls back
// to DefaultPinchThreshold.
func NewInterpreter(config Config) *Interpreter {
	if config.PinchThreshold <= 0 {
		config.PinchThreshold = DefaultPinchThreshold
	}
	return &Interpreter{config: config}
}

// Threshold returns the pinch threshold in pixels.
func (i *Interpreter) Threshold() float64 {
	return i.config.PinchThreshold
}

// Interpret reads the first hand in hands. Landmarks are normalized to the
// frame and are scaled by width and height. An empty slice, a low-score hand
// or a zero-sized frame yield a zero Signal.
func (i *Interpreter) Interpret(hands []detector.HandLandmarks, width, height int) Signal {
	if len(hands) == 0 || width <= 0 || height <= 0 {
		return Signal{}
	}

	hand := hands[0]
	if hand.Score < i.config.MinScore {
		return Signal{}
	}

	ix, iy := hand.Pixel(detector.IndexTip, width, height)
	tx, ty := hand.Pixel(detector.ThumbTip, width, height)
	dist := math.Hypot(ix-tx, iy-ty)

	return Signal{
		Present:  true,
		X:        (ix + tx) / 2,
		Y:        (iy + ty) / 2,
		Distance: dist,
		Pinching: dist < i.config.PinchThreshold,
	}
}
