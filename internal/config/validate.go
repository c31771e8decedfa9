package config

import (
	"errors"
	"fmt"
)

// ConfigError reports stage tuning a run must refuse to start with.
type ConfigError struct {
	Stage  int    // Stage index, -1 for database-level problems
	Field  string // YAML field name
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Stage < 0 {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: stage %d: %s: %s", e.Stage, e.Field, e.Reason)
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Validate checks the whole database and returns every problem found joined
// into one error.
func Validate(cfg GameConfig) error {
	var errs []error
	if len(cfg.Stages) == 0 {
		errs = append(errs, &ConfigError{Stage: -1, Field: "stages", Reason: "at least one stage is required"})
	}
	if cfg.Scoring.PointsPerMatch <= 0 {
		errs = append(errs, &ConfigError{Stage: -1, Field: "scoring.points_per_match", Reason: "must be > 0"})
	}
	if cfg.Scoring.MoodSlack < 0 || cfg.Scoring.MoodSlack > 1 {
		errs = append(errs, &ConfigError{Stage: -1, Field: "scoring.mood_slack", Reason: "must be within [0, 1]"})
	}
	for i, s := range cfg.Stages {
		if err := ValidateStage(i, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateStage checks one stage's tuning.
func ValidateStage(index int, s StageConfig) error {
	var errs []error
	fail := func(field, reason string) {
		errs = append(errs, &ConfigError{Stage: index, Field: field, Reason: reason})
	}

	if s.TargetScore <= 0 {
		fail("target_score", "must be > 0")
	}
	if s.DurationSeconds <= 0 {
		fail("duration_seconds", "must be > 0")
	}
	if s.SpawnIntervalSeconds <= 0 {
		fail("spawn_interval_seconds", "must be > 0")
	}
	if s.BaseFallSpeedScale <= 0 {
		fail("base_fall_speed_scale", "must be > 0")
	}
	if s.MaxConcurrentEntities <= 0 {
		fail("max_concurrent_entities", "must be > 0")
	}
	if s.ColorPaletteSize < 3 || s.ColorPaletteSize > 7 {
		fail("color_palette_size", "must be within [3, 7]")
	}
	if s.MusicVolume < 0 || s.MusicVolume > 1 {
		fail("music_volume", "must be within [0, 1]")
	}
	for _, k := range s.AllowedKinds {
		if !k.Valid() {
			fail("allowed_kinds", fmt.Sprintf("unknown kind %d", k))
		}
	}
	return errors.Join(errs...)
}
