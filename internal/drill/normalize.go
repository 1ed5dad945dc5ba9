package drill

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuitables/internal/model"
)

// Stock practice configuration values, returned by DefaultConfig.
const (
	DefaultMinTable     = 2
	DefaultMaxTable     = 12
	DefaultPerQuestion  = 10.0
	DefaultPerQFloor    = 2.0
	DefaultPerQCeiling  = 30.0
	DefaultTotalSeconds = 180
	DefaultGrace        = 600 * time.Millisecond
)

// Normalize validates a practice configuration, swaps an inverted table range and
// clamps the initial per-question budget into [floor, ceiling].
func Normalize(cfg model.Config) (model.Config, error) {
	if cfg.MinTable > cfg.MaxTable {
		cfg.MinTable, cfg.MaxTable = cfg.MaxTable, cfg.MinTable
	}
	if cfg.MinTable < 1 || cfg.MaxTable > model.MaxMultiplier {
		return model.Config{}, fmt.Errorf("%w: got %d..%d", ErrInvalidRange, cfg.MinTable, cfg.MaxTable)
	}
	if cfg.PerQFloor <= 0 || cfg.PerQCeiling < cfg.PerQFloor {
		return model.Config{}, fmt.Errorf("%w: floor %.1f ceiling %.1f", ErrInvalidTimer, cfg.PerQFloor, cfg.PerQCeiling)
	}
	if cfg.TotalSeconds < 0 {
		return model.Config{}, fmt.Errorf("%w: got %d", ErrInvalidDuration, cfg.TotalSeconds)
	}
	switch cfg.Policy {
	case "":
		cfg.Policy = model.PolicyBand
	case model.PolicyBand, model.PolicyHalf:
	default:
		return model.Config{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, cfg.Policy)
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	}
	if cfg.PerQuestion < cfg.PerQFloor {
		cfg.PerQuestion = cfg.PerQFloor
	}
	if cfg.PerQuestion > cfg.PerQCeiling {
		cfg.PerQuestion = cfg.PerQCeiling
	}
	return cfg, nil
}

// DefaultConfig returns the stock practice configuration.
func DefaultConfig() model.Config {
	return model.Config{
		MinTable:     DefaultMinTable,
		MaxTable:     DefaultMaxTable,
		PerQuestion:  DefaultPerQuestion,
		PerQFloor:    DefaultPerQFloor,
		PerQCeiling:  DefaultPerQCeiling,
		TotalSeconds: DefaultTotalSeconds,
		Policy:       model.PolicyBand,
		CarryOver:    true,
		Grace:        DefaultGrace,
	}
}
