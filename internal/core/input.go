package core

import "strings"

// Action represents a semantic host action, abstracted from taps and key presses.
// The stage core never polls devices; the host maps raw input to these.
type Action int

const (
	ActionNone        Action = iota
	ActionFire               // Tap/click - launch a projectile at a horizontal position
	ActionPause              // Pause button - freeze the stage
	ActionResume             // Continue button - unfreeze the stage
	ActionTogglePause        // P/Esc - flip between paused and running
	ActionAbort              // Back to menu - force the stage to end
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionFire:
		return "Fire"
	case ActionPause:
		return "Pause"
	case ActionResume:
		return "Resume"
	case ActionTogglePause:
		return "TogglePause"
	case ActionAbort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// ParseAction converts a script keyword (fire, pause, resume, toggle, abort) to an Action.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fire":
		return ActionFire, true
	case "pause":
		return ActionPause, true
	case "resume":
		return ActionResume, true
	case "toggle":
		return ActionTogglePause, true
	case "abort":
		return ActionAbort, true
	default:
		return ActionNone, false
	}
}

// InputFrame represents the input gathered during one host tick.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// FireX holds the world X of every fire tap this frame, in arrival order.
	FireX []float64
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Fire records a tap at world X and marks ActionFire.
func (f *InputFrame) Fire(x float64) {
	f.Set(ActionFire)
	f.FireX = append(f.FireX, x)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.FireX = f.FireX[:0]
}
