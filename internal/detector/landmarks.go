// Package detector provides hand detection interfaces and the 21-point hand
// landmark model used to track the player's hand.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel returns landmark i scaled from normalized image coordinates to a
// frame of the given size.
func (h HandLandmarks) Pixel(i, width, height int) (x, y float64) {
	p := h.Points[i]
	return p.X * float64(width), p.Y * float64(height)
}

// PixelDistance returns the 2D distance in pixels between landmarks a and b.
func (h HandLandmarks) PixelDistance(a, b, width, height int) float64 {
	ax, ay := h.Pixel(a, width, height)
	bx, by := h.Pixel(b, width, height)
	return math.Hypot(ax-bx, ay-by)
}
