package sink

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrEncode        = errors.New("encode record failed")
)
