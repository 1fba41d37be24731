// Package tray provides a system tray launcher for the waste sorting game.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onPlay func()
	onOpen func()
	onQuit func()

	playing bool
	last    string
	best    string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuPlay *systray.MenuItem
	menuLast *systray.MenuItem
	menuBest *systray.MenuItem
}

// New creates a new Tray with no recorded scores.
func New() *Tray {
	return &Tray{
		last: lastLabel(0, 0, false),
		best: bestLabel(0, false),
	}
}

// OnPlay sets the callback run when Play is clicked. It runs on its own
// goroutine and is not invoked while a game is in progress.
func (t *Tray) OnPlay(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPlay = fn
}

// OnOpen sets the callback for the spectator view menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("WasteSort")
	systray.SetTooltip("Sort falling waste with your hand")

	t.mu.Lock()
	t.menuPlay = systray.AddMenuItem(playLabel(t.playing), "Start a game")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(t.last, "Score of the last game")
	t.menuLast.Disable()
	t.menuBest = systray.AddMenuItem(t.best, "Best score")
	t.menuBest.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Spectator View...", "Watch the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit WasteSort")

	go func() {
		for {
			select {
			case <-t.menuPlay.ClickedCh:
				t.handlePlay()
			case <-menuOpen.ClickedCh:
				t.call(t.onOpenFn())
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handlePlay starts a game unless one is already running.
func (t *Tray) handlePlay() {
	t.mu.Lock()
	if t.playing || t.onPlay == nil {
		t.mu.Unlock()
		return
	}
	callback := t.onPlay
	t.mu.Unlock()

	t.SetPlaying(true)
	go func() {
		defer t.SetPlaying(false)
		callback()
	}()
}

func (t *Tray) onOpenFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onOpen
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	t.call(callback)
	systray.Quit()
}

// SetPlaying updates the Play item for a running or finished game.
func (t *Tray) SetPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.playing = playing
	if t.menuPlay == nil {
		return
	}
	t.menuPlay.SetTitle(playLabel(playing))
	if playing {
		t.menuPlay.Disable()
	} else {
		t.menuPlay.Enable()
	}
}

// SetLastScore shows the result of the most recent game.
func (t *Tray) SetLastScore(score, level int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = lastLabel(score, level, true)
	if t.menuLast != nil {
		t.menuLast.SetTitle(t.last)
	}
}

// SetBest shows the best score on record.
func (t *Tray) SetBest(score int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.best = bestLabel(score, true)
	if t.menuBest != nil {
		t.menuBest.SetTitle(t.best)
	}
}

// IsPlaying reports whether a game started from the tray is running.
func (t *Tray) IsPlaying() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.playing
}

func playLabel(playing bool) string {
	if playing {
		return "● Playing..."
	}
	return "▶ Play"
}

func lastLabel(score, level int, ok bool) string {
	if !ok {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %d (level %d)", score, level)
}

func bestLabel(score int, ok bool) string {
	if !ok {
		return "Best: none"
	}
	return fmt.Sprintf("Best: %d", score)
}
