package core

// RuntimeConfig contains host settings passed to a stage run at start.
// Stage tuning lives in the config package; this only covers the loop.
type RuntimeConfig struct {
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic spawning
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: 60,
		Seed:     0, // 0 means use current time in the host layer
	}
}

// TickSeconds returns the fixed step length for the configured tick rate.
func (c RuntimeConfig) TickSeconds() float64 {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return 1.0 / float64(rate)
}
