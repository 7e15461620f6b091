package scenario

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLoadScenario    = errors.New("failed to load scenario")
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownAction   = errors.New("unknown scenario action")
)
