package stage

import "github.com/vovakirdan/shape-clash/internal/core"

// Mood is the discrete pacing signal shown by the background character.
type Mood int

const (
	MoodInnocent Mood = iota // On pace
	MoodHappy                // Ahead of pace
	MoodCrying               // Behind pace
)

// String returns the mood name.
func (m Mood) String() string {
	switch m {
	case MoodInnocent:
		return "innocent"
	case MoodHappy:
		return "happy"
	case MoodCrying:
		return "crying"
	default:
		return "unknown"
	}
}

// Pace holds the two fractions the mood is derived from.
type Pace struct {
	Elapsed  float64 // Share of stage time used, [0, 1]
	Achieved float64 // Share of target score reached, [0, 1]
}

// ComputePace derives elapsed and achieved fractions. A non-positive duration
// counts as fully elapsed; a non-positive target as nothing achieved.
func ComputePace(score int, timeLeft, duration float64, target int) Pace {
	var p Pace
	if duration > 0 {
		p.Elapsed = core.Clamp01((duration - timeLeft) / duration)
	} else {
		p.Elapsed = 1
	}
	if target > 0 {
		p.Achieved = core.Clamp01(float64(score) / float64(target))
	}
	return p
}

// MoodFor maps a pace to a mood. Happy is checked before Crying.
func MoodFor(p Pace, slack float64) Mood {
	if p.Achieved >= p.Elapsed+slack {
		return MoodHappy
	}
	if p.Achieved <= p.Elapsed-slack {
		return MoodCrying
	}
	return MoodInnocent
}

// PaceMood is the pure pacing function. targetScore <= 0 always yields Innocent.
func PaceMood(score int, timeLeft, duration float64, targetScore int, slack float64) Mood {
	if targetScore <= 0 {
		return MoodInnocent
	}
	return MoodFor(ComputePace(score, timeLeft, duration, targetScore), slack)
}

// MoodTracker remembers the last reported mood so only changes are surfaced.
type MoodTracker struct {
	current Mood
}

// NewMoodTracker starts at Innocent, like a fresh stage.
func NewMoodTracker() *MoodTracker {
	return &MoodTracker{current: MoodInnocent}
}

// Current returns the last computed mood.
func (t *MoodTracker) Current() Mood {
	return t.current
}

// Update recomputes the mood and reports whether it changed.
func (t *MoodTracker) Update(score int, timeLeft, duration float64, targetScore int, slack float64) (Mood, bool) {
	next := PaceMood(score, timeLeft, duration, targetScore, slack)
	if next == t.current {
		return t.current, false
	}
	t.current = next
	return next, true
}
