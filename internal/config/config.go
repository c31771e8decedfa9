// Package config provides YAML-based stage configuration loading and
// validation for shape-clash.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/shape-clash/internal/core"
)

// GameConfig is the full stage database plus tuning shared by every stage.
type GameConfig struct {
	Scoring    ScoringConfig    `yaml:"scoring"`
	Projectile ProjectileConfig `yaml:"projectile"`
	Audio      AudioConfig      `yaml:"audio"`
	Stages     []StageConfig    `yaml:"stages"`
}

// ScoringConfig defines match rewards and pace feedback.
type ScoringConfig struct {
	PointsPerMatch int     `yaml:"points_per_match"`
	MoodSlack      float64 `yaml:"mood_slack"` // Fraction ahead/behind pace before mood changes
}

// ProjectileConfig defines how a projectile nudges the shape it touches.
type ProjectileConfig struct {
	Speed               float64 `yaml:"speed"`                 // World units per second
	LifetimeSeconds     float64 `yaml:"lifetime_seconds"`      // Despawn time if nothing is hit
	LateralImpulse      float64 `yaml:"lateral_impulse"`       // Sideways shove at contact
	UpwardImpulse       float64 `yaml:"upward_impulse"`        // Upward kick at contact
	MinUpwardVelocity   float64 `yaml:"min_upward_velocity"`   // Vertical speed floor after a hit
	ExtraGravity        float64 `yaml:"extra_gravity"`         // Gravity scale added to the hit shape
	ExtraGravitySeconds float64 `yaml:"extra_gravity_seconds"` // How long the extra gravity lasts
}

// AudioConfig defines music levels the core asks the audio collaborator for.
type AudioConfig struct {
	PausedMusicVolume float64 `yaml:"paused_music_volume"`
}

// StageConfig is the immutable tuning for one stage.
type StageConfig struct {
	Name                  string      `yaml:"name"`
	Description           string      `yaml:"description,omitempty"`
	TargetScore           int         `yaml:"target_score"`
	DurationSeconds       float64     `yaml:"duration_seconds"`
	SpawnIntervalSeconds  float64     `yaml:"spawn_interval_seconds"`
	BaseFallSpeedScale    float64     `yaml:"base_fall_speed_scale"`
	MaxConcurrentEntities int         `yaml:"max_concurrent_entities"`
	ColorPaletteSize      int         `yaml:"color_palette_size"`
	AllowedKinds          []core.Kind `yaml:"allowed_kinds"`
	MusicTrack            string      `yaml:"music_track,omitempty"`
	MusicVolume           float64     `yaml:"music_volume"`
}

// UnmarshalYAML decodes a stage over its decode-time defaults, so a missing
// music_volume defaults while music_volume: 0 stays silent.
func (s *StageConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain StageConfig
	p := plain{MusicVolume: DefaultMusicVolume}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = StageConfig(p)
	return nil
}

// Kinds returns the allowed kinds, falling back to every kind when none are set.
func (s StageConfig) Kinds() []core.Kind {
	if len(s.AllowedKinds) == 0 {
		return core.AllKinds
	}
	return s.AllowedKinds
}

// Allows reports whether kind k may spawn in this stage.
func (s StageConfig) Allows(k core.Kind) bool {
	for _, allowed := range s.Kinds() {
		if allowed == k {
			return true
		}
	}
	return false
}

// Count returns the number of stages in the database.
func (c GameConfig) Count() int {
	return len(c.Stages)
}

// Stage returns the stage at index, or false if the index is out of range.
func (c GameConfig) Stage(index int) (StageConfig, bool) {
	if index < 0 || index >= len(c.Stages) {
		return StageConfig{}, false
	}
	return c.Stages[index], true
}
