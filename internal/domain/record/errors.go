package record

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotPlayback = errors.New("not a playback event kind")
)
