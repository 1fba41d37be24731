package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	queue  [][]HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// QueueHands schedules per-call results. Each Detect consumes one entry;
// once the queue is empty Detect falls back to the hands set by SetHands.
func (m *MockDetector) QueueHands(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		hands := m.queue[0]
		m.queue = m.queue[1:]
		return hands, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PinchLandmarks returns a right hand whose thumb and index tips nearly touch,
// centered on the normalized point (x, y).
func PinchLandmarks(x, y float64) HandLandmarks {
	return handAt(x, y, 0.005)
}

// OpenHandLandmarks returns a right hand with thumb and index tips spread
// apart, their midpoint at the normalized point (x, y).
func OpenHandLandmarks(x, y float64) HandLandmarks {
	return handAt(x, y, 0.1)
}

// handAt builds a hand whose thumb tip sits at x-spread and index tip at
// x+spread on the line y. The rest of the hand hangs below the tips.
func handAt(x, y, spread float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: x, Y: y + 0.25}

	landmarks.Points[ThumbCMC] = Point3D{X: x - 0.04, Y: y + 0.20}
	landmarks.Points[ThumbMCP] = Point3D{X: x - spread - 0.03, Y: y + 0.14}
	landmarks.Points[ThumbIP] = Point3D{X: x - spread - 0.01, Y: y + 0.06}
	landmarks.Points[ThumbTip] = Point3D{X: x - spread, Y: y}

	landmarks.Points[IndexMCP] = Point3D{X: x + 0.02, Y: y + 0.15}
	landmarks.Points[IndexPIP] = Point3D{X: x + spread + 0.02, Y: y + 0.10}
	landmarks.Points[IndexDIP] = Point3D{X: x + spread + 0.01, Y: y + 0.05}
	landmarks.Points[IndexTip] = Point3D{X: x + spread, Y: y}

	for i, dx := range []float64{0.04, 0.06, 0.08} {
		base := MiddleMCP + i*4
		landmarks.Points[base] = Point3D{X: x + dx, Y: y + 0.15, Z: -0.02}
		landmarks.Points[base+1] = Point3D{X: x + dx, Y: y + 0.12, Z: -0.05}
		landmarks.Points[base+2] = Point3D{X: x + dx - 0.01, Y: y + 0.14, Z: -0.04}
		landmarks.Points[base+3] = Point3D{X: x + dx - 0.02, Y: y + 0.16, Z: -0.02}
	}

	return landmarks
}
