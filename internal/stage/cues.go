package stage

// CueKind identifies a fire-and-forget notification for the audio and
// navigation collaborators.
type CueKind int

const (
	CueMusic  CueKind = iota // Start the stage track
	CueClash                 // A match happened
	CuePause                 // Stage paused, duck the music
	CueResume                // Stage resumed, restore the music
	CueWin                   // Stage ended at or above target
	CueLose                  // Stage ended below target
)

// String returns the cue name.
func (k CueKind) String() string {
	switch k {
	case CueMusic:
		return "music"
	case CueClash:
		return "clash"
	case CuePause:
		return "pause"
	case CueResume:
		return "resume"
	case CueWin:
		return "win"
	case CueLose:
		return "lose"
	default:
		return "unknown"
	}
}

// Cue is a single notification. Volume is in [0, 1].
type Cue struct {
	Kind   CueKind
	Track  string // Only set for CueMusic
	Volume float64
}

// CueSink receives cues. Implementations must not block the simulation.
type CueSink interface {
	Cue(c Cue)
}

// CueFunc adapts a function to CueSink.
type CueFunc func(c Cue)

// Cue implements CueSink.
func (f CueFunc) Cue(c Cue) { f(c) }

type nopCues struct{}

func (nopCues) Cue(Cue) {}

// Sound effect volumes used by the stage.
const (
	clashVolume  = 0.5
	jingleVolume = 0.9
)
