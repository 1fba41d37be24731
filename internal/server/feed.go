package server

import (
	"sync"

	"github.com/ayusman/wastesort/internal/app"
	"github.com/ayusman/wastesort/internal/game"
)

// Feed holds the latest rendered frame and game snapshot published by the
// game loop, and wakes subscribers when either changes.
type Feed struct {
	mu       sync.RWMutex
	frame    []byte
	frameSeq uint64
	snap     game.Snapshot
	snapSeq  uint64
	subs     map[chan struct{}]struct{}
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[chan struct{}]struct{})}
}

// Observer returns the callbacks that publish a session into the feed.
func (f *Feed) Observer() app.Observer {
	return app.Observer{
		OnFrame:    f.PublishFrame,
		OnSnapshot: f.PublishSnapshot,
	}
}

// PublishFrame stores a JPEG frame. The slice must not be modified afterwards.
func (f *Feed) PublishFrame(jpeg []byte) {
	f.mu.Lock()
	f.frame = jpeg
	f.frameSeq++
	f.mu.Unlock()
	f.notify()
}

// PublishSnapshot stores the latest game state.
func (f *Feed) PublishSnapshot(s game.Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.snapSeq++
	f.mu.Unlock()
	f.notify()
}

// Frame returns the latest frame and its sequence number. Sequence 0 means
// nothing was published yet.
func (f *Feed) Frame() ([]byte, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frame, f.frameSeq
}

// Snapshot returns the latest snapshot and its sequence number.
func (f *Feed) Snapshot() (game.Snapshot, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap, f.snapSeq
}

// Subscribe returns a channel that receives a value after each publish.
// Wake-ups are coalesced; call cancel to unsubscribe.
func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
}

func (f *Feed) notify() {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
