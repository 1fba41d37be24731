package game

import (
	"math"
	"time"
)

// Point is a position in play-area pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ObjectState is Falling or Dragged.
type ObjectState uint8

const (
	Falling ObjectState = iota
	Dragged
)

func (s ObjectState) String() string {
	if s == Dragged {
		return "dragged"
	}
	return "falling"
}

func (s ObjectState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Object is one falling waste item. X and Y are the top-left corner.
type Object struct {
	ID        uint64      `json:"id"`
	Category  Category    `json:"category"`
	Size      float64     `json:"size"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	State     ObjectState `json:"state"`
	SpawnedAt time.Time   `json:"spawned_at"`
}

// Center returns the center of the object's square.
func (o *Object) Center() Point {
	return Point{X: o.X + o.Size/2, Y: o.Y + o.Size/2}
}

// centerOn moves the object so its center sits on p, keeping it inside a w x h area.
func (o *Object) centerOn(p Point, w, h float64) {
	o.X = clamp(p.X-o.Size/2, 0, w-o.Size)
	o.Y = clamp(p.Y-o.Size/2, 0, h-o.Size)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
