package headless

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/shape-clash/internal/core"
)

// Step is one scripted input. At is host seconds, which keep running while
// the stage is paused.
type Step struct {
	At float64 `yaml:"at"`
	Do string  `yaml:"do"`
	X  float64 `yaml:"x,omitempty"`
}

// Script is an ordered list of inputs plus an optional autofire cadence.
type Script struct {
	Autofire float64 `yaml:"autofire,omitempty"` // Seconds between automatic shots, 0 disables
	Steps    []Step  `yaml:"steps"`
}

// LoadScript reads a script from a YAML file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("headless: cannot read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses and validates script YAML. Steps are sorted by time,
// keeping file order for equal times.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("headless: cannot parse script: %w", err)
	}
	if s.Autofire < 0 {
		return Script{}, fmt.Errorf("headless: autofire must be >= 0")
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return Script{}, fmt.Errorf("headless: step %d: at must be >= 0", i)
		}
		if _, ok := core.ParseAction(st.Do); !ok {
			return Script{}, fmt.Errorf("headless: step %d: unknown action %q", i, st.Do)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return s, nil
}
