package config

import (
	_ "embed"

	"github.com/vovakirdan/shape-clash/internal/core"
)

//go:embed defaults/stages.yaml
var defaultStagesYAML []byte

// Fallback tuning used when a stage leaves an optional field unset.
const (
	DefaultSpawnInterval      = 1.2
	DefaultFallSpeedScale     = 0.9
	DefaultMaxConcurrent      = 30
	DefaultPaletteSize        = 5
	DefaultMusicVolume        = 0.5
	DefaultPointsPerMatch     = 10
	DefaultMoodSlack          = 0.10
	DefaultPausedMusicVolume  = 0.35
	DefaultTargetScore        = 100
	DefaultStageDurationSecs  = 60.0
	DefaultProjectileSpeed    = 18.0
	DefaultProjectileLifetime = 3.0
)

// DefaultProjectileConfig returns the projectile tuning of the original game.
func DefaultProjectileConfig() ProjectileConfig {
	return ProjectileConfig{
		Speed:               DefaultProjectileSpeed,
		LifetimeSeconds:     DefaultProjectileLifetime,
		LateralImpulse:      6,
		UpwardImpulse:       8,
		MinUpwardVelocity:   6,
		ExtraGravity:        1.0,
		ExtraGravitySeconds: 0.45,
	}
}

// DefaultStageConfig returns a single playable stage.
func DefaultStageConfig() StageConfig {
	return StageConfig{
		Name:                  "Stage 1",
		TargetScore:           DefaultTargetScore,
		DurationSeconds:       DefaultStageDurationSecs,
		SpawnIntervalSeconds:  DefaultSpawnInterval,
		BaseFallSpeedScale:    0.8,
		MaxConcurrentEntities: DefaultMaxConcurrent,
		ColorPaletteSize:      core.MaxPaletteSize,
		AllowedKinds:          append([]core.Kind(nil), core.AllKinds...),
		MusicVolume:           0.8,
	}
}

// DefaultGameConfig returns the hardcoded database used if the embedded YAML
// cannot be parsed.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Scoring: ScoringConfig{
			PointsPerMatch: DefaultPointsPerMatch,
			MoodSlack:      DefaultMoodSlack,
		},
		Projectile: DefaultProjectileConfig(),
		Audio: AudioConfig{
			PausedMusicVolume: DefaultPausedMusicVolume,
		},
		Stages: []StageConfig{DefaultStageConfig()},
	}
}

// DefaultYAML returns the embedded default stage database.
func DefaultYAML() []byte {
	return defaultStagesYAML
}

// ApplyDefaults fills unset optional fields. Mandatory fields (target score,
// duration) are left alone so Validate can reject them. Fields where zero is
// a legal value (mood slack, music volume) are defaulted while decoding
// instead, see Parse and StageConfig.UnmarshalYAML.
func ApplyDefaults(cfg *GameConfig) {
	if cfg.Scoring.PointsPerMatch <= 0 {
		cfg.Scoring.PointsPerMatch = DefaultPointsPerMatch
	}
	if cfg.Audio.PausedMusicVolume <= 0 {
		cfg.Audio.PausedMusicVolume = DefaultPausedMusicVolume
	}

	def := DefaultProjectileConfig()
	p := &cfg.Projectile
	if p.Speed <= 0 {
		p.Speed = def.Speed
	}
	if p.LifetimeSeconds <= 0 {
		p.LifetimeSeconds = def.LifetimeSeconds
	}
	if p.LateralImpulse == 0 {
		p.LateralImpulse = def.LateralImpulse
	}
	if p.UpwardImpulse == 0 {
		p.UpwardImpulse = def.UpwardImpulse
	}
	if p.MinUpwardVelocity == 0 {
		p.MinUpwardVelocity = def.MinUpwardVelocity
	}
	if p.ExtraGravity == 0 {
		p.ExtraGravity = def.ExtraGravity
	}
	if p.ExtraGravitySeconds <= 0 {
		p.ExtraGravitySeconds = def.ExtraGravitySeconds
	}

	for i := range cfg.Stages {
		ApplyStageDefaults(&cfg.Stages[i])
	}
}

// ApplyStageDefaults fills unset optional fields of a single stage. Out of
// range values are kept for ValidateStage to reject.
func ApplyStageDefaults(s *StageConfig) {
	if s.SpawnIntervalSeconds <= 0 {
		s.SpawnIntervalSeconds = DefaultSpawnInterval
	}
	if s.BaseFallSpeedScale <= 0 {
		s.BaseFallSpeedScale = DefaultFallSpeedScale
	}
	if s.MaxConcurrentEntities <= 0 {
		s.MaxConcurrentEntities = DefaultMaxConcurrent
	}
	if s.ColorPaletteSize == 0 {
		s.ColorPaletteSize = DefaultPaletteSize
	}
}
