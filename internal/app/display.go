package app

import (
	"sync"

	"gocv.io/x/gocv"
)

// Display is the sink for rendered frames and the source of key presses.
type Display interface {
	Show(frame *gocv.Mat)
	// WaitKey waits up to delay milliseconds for a key and returns its code,
	// or -1 when no key was pressed.
	WaitKey(delay int) int
	Close() error
}

// WindowDisplay shows frames in a native window.
type WindowDisplay struct {
	window *gocv.Window
}

// NewWindowDisplay opens a window with the given title.
func NewWindowDisplay(title string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(title)}
}

func (d *WindowDisplay) Show(frame *gocv.Mat) {
	d.window.IMShow(*frame)
}

func (d *WindowDisplay) WaitKey(delay int) int {
	return d.window.WaitKey(delay)
}

func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

// HeadlessDisplay discards frames and replays a script of key codes, one per
// WaitKey call. It is used by tests and by the server-only mode.
type HeadlessDisplay struct {
	mu     sync.Mutex
	keys   []int
	shown  int
	waits  int
	closed bool
}

// NewHeadlessDisplay returns a display that answers WaitKey with keys in
// order, then with -1.
func NewHeadlessDisplay(keys ...int) *HeadlessDisplay {
	return &HeadlessDisplay{keys: keys}
}

func (d *HeadlessDisplay) Show(frame *gocv.Mat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown++
}

func (d *HeadlessDisplay) WaitKey(delay int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits++
	if len(d.keys) == 0 {
		return -1
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *HeadlessDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Shown returns the number of frames passed to Show.
func (d *HeadlessDisplay) Shown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

// Waits returns the number of WaitKey calls.
func (d *HeadlessDisplay) Waits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waits
}

// Closed reports whether Close was called.
func (d *HeadlessDisplay) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
