package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged percentile checks.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each check to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Percent rolls d100 (0..99) against chance, which is clamped to [0, 100].
//
// Postcondition: result.Success == (result.Roll < clamped chance); a chance of
// 100 always succeeds and 0 always fails.
func (r *Roller) Percent(label string, chance int) Check {
	if chance < 0 {
		chance = 0
	}
	if chance > 100 {
		chance = 100
	}
	roll := r.src.Intn(100)
	c := Check{Label: label, Roll: roll, Chance: chance, Success: roll < chance}
	r.logger.Debug("percentile check",
		zap.String("label", label),
		zap.Int("roll", roll),
		zap.Int("chance", chance),
		zap.Bool("success", c.Success),
	)
	return c
}

// Intn draws from the underlying Source without logging.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}
