// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/wastesort/internal/audio"
	"github.com/ayusman/wastesort/internal/capture"
	"github.com/ayusman/wastesort/internal/detector"
	"github.com/ayusman/wastesort/internal/game"
	"github.com/ayusman/wastesort/internal/gesture"
	"github.com/ayusman/wastesort/internal/hook"
)

type Config struct {
	// Storage
	DataDir string
	DBPath  string

	// Server
	HTTPAddr  string
	StaticDir string

	// Hooks
	HookDir     string
	HookTimeout time.Duration

	// Front end
	Player   string
	Tray     bool
	Headless bool

	Camera   capture.Config
	Detector detector.Config
	Gesture  gesture.Config
	Audio    audio.Config
	Tuning   game.Tuning
}

// Load reads the configuration. Values from the given env files (".env" in
// the working directory when none are given) fill variables that are not
// already set.
func Load(files ...string) *Config {
	// Missing env files are fine
	godotenv.Load(files...)

	dataDir := getEnv("WASTESORT_DATA_DIR", defaultDataDir())

	camera := capture.DefaultConfig()
	det := detector.DefaultConfig()
	gest := gesture.DefaultConfig()
	aud := audio.DefaultConfig()
	tun := game.DefaultTuning()

	return &Config{
		DataDir: dataDir,
		DBPath:  getEnv("WASTESORT_DB_PATH", filepath.Join(dataDir, "wastesort.db")),

		HTTPAddr:  getEnv("WASTESORT_HTTP_ADDR", ":8080"),
		StaticDir: getEnv("WASTESORT_STATIC_DIR", ""),

		HookDir:     getEnv("WASTESORT_HOOK_DIR", filepath.Join(dataDir, "hooks")),
		HookTimeout: getEnvDuration("WASTESORT_HOOK_TIMEOUT", hook.DefaultTimeout),

		Player:   getEnv("WASTESORT_PLAYER", "player"),
		Tray:     getEnvBool("WASTESORT_TRAY", false),
		Headless: getEnvBool("WASTESORT_HEADLESS", false),

		Camera: capture.Config{
			DeviceID: getEnvInt("WASTESORT_CAMERA_ID", camera.DeviceID),
			Width:    getEnvInt("WASTESORT_CAMERA_WIDTH", camera.Width),
			Height:   getEnvInt("WASTESORT_CAMERA_HEIGHT", camera.Height),
			FPS:      getEnvInt("WASTESORT_CAMERA_FPS", camera.FPS),
		},
		Detector: detector.Config{
			MaxHands:        det.MaxHands,
			MinConfidence:   getEnvFloat("WASTESORT_MIN_DETECTION_CONFIDENCE", det.MinConfidence),
			MinTrackingConf: getEnvFloat("WASTESORT_MIN_TRACKING_CONFIDENCE", det.MinTrackingConf),
			ScriptPath:      getEnv("WASTESORT_MEDIAPIPE_SCRIPT", det.ScriptPath),
		},
		Gesture: gesture.Config{
			PinchThreshold: getEnvFloat("WASTESORT_PINCH_THRESHOLD", gest.PinchThreshold),
			MinScore:       getEnvFloat("WASTESORT_MIN_HAND_SCORE", gest.MinScore),
		},
		Audio: audio.Config{
			Enabled:    getEnvBool("WASTESORT_AUDIO_ENABLED", aud.Enabled),
			Volume:     getEnvFloat("WASTESORT_AUDIO_VOLUME", aud.Volume),
			SampleRate: aud.SampleRate,
		},
		Tuning: game.Tuning{
			BandHeight:         getEnvFloat("WASTESORT_BAND_HEIGHT", tun.BandHeight),
			ObjectSizeFraction: getEnvFloat("WASTESORT_OBJECT_SIZE_FRACTION", tun.ObjectSizeFraction),
			MinObjectSize:      getEnvFloat("WASTESORT_MIN_OBJECT_SIZE", tun.MinObjectSize),
			CaptureRadius:      getEnvFloat("WASTESORT_CAPTURE_RADIUS", tun.CaptureRadius),

			InitialSpawnInterval: getEnvDuration("WASTESORT_SPAWN_INTERVAL", tun.InitialSpawnInterval),
			MinSpawnInterval:     getEnvDuration("WASTESORT_MIN_SPAWN_INTERVAL", tun.MinSpawnInterval),
			SpawnIntervalStep:    getEnvDuration("WASTESORT_SPAWN_INTERVAL_STEP", tun.SpawnIntervalStep),

			InitialFallSpeed: getEnvFloat("WASTESORT_FALL_SPEED", tun.InitialFallSpeed),
			MaxFallSpeed:     getEnvFloat("WASTESORT_MAX_FALL_SPEED", tun.MaxFallSpeed),
			FallSpeedStep:    getEnvFloat("WASTESORT_FALL_SPEED_STEP", tun.FallSpeedStep),

			MaxMissed:      getEnvInt("WASTESORT_MAX_MISSED", tun.MaxMissed),
			CorrectReward:  getEnvInt("WASTESORT_CORRECT_REWARD", tun.CorrectReward),
			WrongPenalty:   getEnvInt("WASTESORT_WRONG_PENALTY", tun.WrongPenalty),
			PointsPerLevel: getEnvInt("WASTESORT_POINTS_PER_LEVEL", tun.PointsPerLevel),
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wastesort"
	}
	return filepath.Join(home, ".wastesort")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("750ms") or plain milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
