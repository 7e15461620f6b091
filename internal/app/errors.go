package service

import "errors"

// ErrNotStarted is returned by Replay before Start.
var ErrNotStarted = errors.New("service not started")
