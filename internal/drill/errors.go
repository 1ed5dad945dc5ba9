package drill

import "errors"

// Sentinel errors returned while normalizing a practice configuration.
var (
	ErrInvalidRange    = errors.New("drill: table range must be within 1..12")
	ErrInvalidTimer    = errors.New("drill: per-question floor must be positive and not above the ceiling")
	ErrInvalidDuration = errors.New("drill: session length must not be negative")
	ErrInvalidPolicy   = errors.New("drill: unknown timer policy")
)
