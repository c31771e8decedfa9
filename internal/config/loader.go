package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StagesFile is the file name searched for in the user and local config dirs.
const StagesFile = "stages.yaml"

// Load loads the stage database, applies defaults and validates it.
// Search order: customPath -> ~/.clash/stages.yaml -> ./configs/stages.yaml -> embedded default
//
// A custom path that cannot be read or parsed is an error. Unreadable or
// broken files in the implicit locations are skipped.
func Load(customPath string) (GameConfig, error) {
	cfg, _, err := LoadWithSource(customPath)
	return cfg, err
}

// LoadWithSource is Load but also reports which file the database came from
// ("embedded" for the built-in default).
func LoadWithSource(customPath string) (GameConfig, string, error) {
	var cfg GameConfig

	// Try custom path first
	if customPath != "" {
		parsed, err := LoadFile(customPath)
		if err != nil {
			return cfg, customPath, err
		}
		return parsed, customPath, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(StagesFile); userCfgPath != "" {
		if parsed, err := LoadFile(userCfgPath); err == nil {
			return parsed, userCfgPath, nil
		}
	}

	// Try local configs directory
	localPath := filepath.Join("configs", StagesFile)
	if parsed, err := LoadFile(localPath); err == nil {
		return parsed, localPath, nil
	}

	// Use embedded default YAML
	parsed, err := Parse(defaultStagesYAML)
	if err != nil {
		return DefaultGameConfig(), "builtin", nil // Fallback to hardcoded if embed fails
	}
	return parsed, "embedded", nil
}

// LoadFile reads, parses and validates a single stage database file.
func LoadFile(path string) (GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes into a validated GameConfig. Fields absent from
// the document keep their defaults; an explicit zero is kept as zero.
func Parse(data []byte) (GameConfig, error) {
	cfg := GameConfig{Scoring: ScoringConfig{MoodSlack: DefaultMoodSlack}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".clash", filename)
}
