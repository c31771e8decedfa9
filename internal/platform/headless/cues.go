package headless

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/shape-clash/internal/stage"
)

// LogCues returns a cue sink that traces audio and navigation cues at debug
// level in place of a speaker.
func LogCues(logger *log.Logger) stage.CueSink {
	return stage.CueFunc(func(c stage.Cue) {
		if c.Track != "" {
			logger.Debug("cue", "kind", c.Kind, "track", c.Track, "volume", c.Volume)
			return
		}
		logger.Debug("cue", "kind", c.Kind, "volume", c.Volume)
	})
}
