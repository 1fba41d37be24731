package game

import "time"

// Tuning holds the gameplay constants for one session.
type Tuning struct {
	// BandHeight is the height of the bin strip at the bottom of the play area.
	BandHeight float64
	// ObjectSizeFraction scales object side length with play-area width.
	ObjectSizeFraction float64
	// MinObjectSize is the smallest side length an object spawns with.
	MinObjectSize float64
	// CaptureRadius is the maximum cursor-to-center distance for a grab.
	CaptureRadius float64

	InitialSpawnInterval time.Duration
	MinSpawnInterval     time.Duration
	SpawnIntervalStep    time.Duration

	// Fall speeds are in pixels per tick.
	InitialFallSpeed float64
	MaxFallSpeed     float64
	FallSpeedStep    float64

	MaxMissed      int
	CorrectReward  int
	WrongPenalty   int
	PointsPerLevel int
}

// DefaultTuning returns the tuning of the desktop game at 800x600.
func DefaultTuning() Tuning {
	return Tuning{
		BandHeight:         100,
		ObjectSizeFraction: 0.06,
		MinObjectSize:      30,
		CaptureRadius:      60,

		InitialSpawnInterval: 2 * time.Second,
		MinSpawnInterval:     800 * time.Millisecond,
		SpawnIntervalStep:    150 * time.Millisecond,

		InitialFallSpeed: 3,
		MaxFallSpeed:     7,
		FallSpeedStep:    0.3,

		MaxMissed:      5,
		CorrectReward:  10,
		WrongPenalty:   5,
		PointsPerLevel: 50,
	}
}

// LevelFor returns floor(score/PointsPerLevel)+1.
func (t Tuning) LevelFor(score int) int {
	if t.PointsPerLevel <= 0 || score < 0 {
		return 1
	}
	return score/t.PointsPerLevel + 1
}

// SpawnIntervalFor returns the spawn interval at the given level, floored at MinSpawnInterval.
func (t Tuning) SpawnIntervalFor(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	interval := t.InitialSpawnInterval - time.Duration(level-1)*t.SpawnIntervalStep
	if interval < t.MinSpawnInterval {
		return t.MinSpawnInterval
	}
	return interval
}

// FallSpeedFor returns the fall speed at the given level, capped at MaxFallSpeed.
func (t Tuning) FallSpeedFor(level int) float64 {
	if level < 1 {
		level = 1
	}
	speed := t.InitialFallSpeed + float64(level-1)*t.FallSpeedStep
	if speed > t.MaxFallSpeed {
		return t.MaxFallSpeed
	}
	return speed
}
