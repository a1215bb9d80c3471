package session

import "errors"

// Lifecycle and device errors. Device failures are reported at Init time;
// the pipeline itself never errors on "no pitch" conditions.
var (
	ErrNotInitialized     = errors.New("session: not initialized")
	ErrAlreadyInitialized = errors.New("session: already initialized")
	ErrAlreadyStarted     = errors.New("session: already started")
	ErrNotStarted         = errors.New("session: not started")
	ErrStopped            = errors.New("session: already stopped")
	ErrClosed             = errors.New("session: closed")
	ErrDeviceUnavailable  = errors.New("session: audio capture device unavailable")
)
