package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/ayusman/wastesort/internal/app"
	"github.com/ayusman/wastesort/internal/audio"
	"github.com/ayusman/wastesort/internal/config"
	"github.com/ayusman/wastesort/internal/hook"
	"github.com/ayusman/wastesort/internal/server"
	"github.com/ayusman/wastesort/internal/store"
	"github.com/ayusman/wastesort/internal/tray"
)

func main() {
	fmt.Println("WasteSort - Hand Gesture Waste Sorting")

	if err := run(config.Load()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

// run wires the application and plays until the game or the tray exits.
func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	// Hooks
	manager := hook.NewManager(cfg.HookDir)
	if err := manager.Discover(); err != nil {
		log.Printf("[HOOK] Failed to discover hooks in %s: %v", cfg.HookDir, err)
	}
	log.Printf("[HOOK] %d hook(s) loaded from %s", len(manager.List()), cfg.HookDir)
	dispatcher := hook.NewDispatcher(manager, hook.NewExecutor(cfg.HookTimeout))

	a := app.New(app.Config{
		Store:    st,
		Hooks:    dispatcher,
		Camera:   cfg.Camera,
		Detector: cfg.Detector,
		Gesture:  cfg.Gesture,
		Tuning:   cfg.Tuning,
		Player:   cfg.Player,
	})
	defer a.Close()

	// Audio
	player := audio.NewPlayer(cfg.Audio)
	prepareSession(st, a, player, cfg)
	defer player.Close()
	a.AddObserver(app.Observer{OnEvents: player.HandleEvents})

	// Spectator server
	feed := server.NewFeed()
	a.AddObserver(feed.Observer())

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Feed:      feed,
		Status:    a,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.HTTPAddr)
		if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()

	play := func() (app.Result, error) {
		prepareSession(st, a, player, cfg)
		display := newDisplay(cfg.Headless)
		defer display.Close()
		return a.Play(ctx, display)
	}

	if !cfg.Tray {
		res, err := play()
		if err != nil {
			if errors.Is(err, app.ErrCaptureUnavailable) {
				return fmt.Errorf("camera unavailable: %w", err)
			}
			return fmt.Errorf("game failed: %w", err)
		}
		fmt.Printf("Final score: %d (level %d, sorted %d, misplaced %d)\n",
			res.Score, res.Level, res.Sorted, res.Misplaced)
		return nil
	}

	runTray(ctx, stop, a, cfg.HTTPAddr, play)
	return nil
}

// runTray blocks in the system tray until Quit or a signal.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, addr string, play func() (app.Result, error)) {
	t := tray.New()
	if best, err := a.Best(); err == nil && best > 0 {
		t.SetBest(best)
	}

	t.OnPlay(func() {
		res, err := play()
		if err != nil {
			log.Printf("[GAME] Session failed: %v", err)
			return
		}
		log.Printf("[GAME] Final score %d at level %d", res.Score, res.Level)
		t.SetLastScore(res.Score, res.Level)
		if best, err := a.Best(); err == nil {
			t.SetBest(best)
		}
	})
	t.OnOpen(func() {
		fmt.Printf("Spectator view: http://localhost%s/\n", addr)
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// newDisplay returns the game window, or for headless runs a sink that
// starts the round at once and plays until interrupted.
func newDisplay(headless bool) app.Display {
	if headless {
		return app.NewHeadlessDisplay(' ')
	}
	return app.NewWindowDisplay("WasteSort")
}

// prepareSession applies saved settings before a game and opens the speaker
// if audio was switched on since the last one.
func prepareSession(st *store.Store, a *app.App, player *audio.Player, cfg *config.Config) {
	applySettings(st, a, player, cfg)
	if err := player.Init(); err != nil {
		log.Printf("[AUDIO] Speaker unavailable, playing silently: %v", err)
	}
}

// applySettings lets values saved through the settings API override the
// environment.
func applySettings(st *store.Store, a *app.App, player *audio.Player, cfg *config.Config) {
	settings := st.Settings()

	name, err := settings.GetOr(store.SettingPlayer, cfg.Player)
	if err != nil {
		log.Printf("[STORE] Failed to read player setting: %v", err)
		name = cfg.Player
	}
	a.SetPlayer(name)

	player.SetEnabled(settings.GetBool(store.SettingAudioEnabled, cfg.Audio.Enabled))
	if v, err := settings.Get(store.SettingAudioVolume); err == nil {
		if vol, err := strconv.ParseFloat(v, 64); err == nil {
			player.SetVolume(vol)
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
