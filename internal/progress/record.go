// Package progress keeps the cross-session unlock and high-score ledger.
package progress

import (
	"encoding/json"

	"github.com/vovakirdan/shape-clash/internal/core"
)

// Record is the persisted progression state.
type Record struct {
	LastStageIndex     int   `json:"lastStageIndex"`
	UnlockedStageCount int   `json:"unlockedStageCount"`
	HighScores         []int `json:"highScores"`
	HasStarted         bool  `json:"hasStarted"`
}

// NewRecord returns a fresh record sized for totalStages.
func NewRecord(totalStages int) Record {
	return Record{
		LastStageIndex:     0,
		UnlockedStageCount: 1,
		HighScores:         make([]int, core.Max(1, totalStages)),
	}
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.HighScores = append([]int(nil), r.HighScores...)
	return out
}

// Equal reports field-for-field equality.
func (r Record) Equal(o Record) bool {
	if r.LastStageIndex != o.LastStageIndex ||
		r.UnlockedStageCount != o.UnlockedStageCount ||
		r.HasStarted != o.HasStarted ||
		len(r.HighScores) != len(o.HighScores) {
		return false
	}
	for i := range r.HighScores {
		if r.HighScores[i] != o.HighScores[i] {
			return false
		}
	}
	return true
}

// Resized returns a copy fitted to totalStages: scores are kept by index and
// new entries zero-filled, and unlock count and last index are clamped.
func (r Record) Resized(totalStages int) Record {
	count := core.Max(1, totalStages)
	out := r.Clone()
	if len(out.HighScores) != count {
		scores := make([]int, count)
		copy(scores, r.HighScores)
		out.HighScores = scores
	}
	for i, s := range out.HighScores {
		if s < 0 {
			out.HighScores[i] = 0
		}
	}
	out.UnlockedStageCount = core.Clamp(out.UnlockedStageCount, 1, count)
	out.LastStageIndex = core.Clamp(out.LastStageIndex, 0, count-1)
	return out
}

// Marshal encodes the record as indented JSON.
func Marshal(r Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal decodes a record. Unknown fields are ignored.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
