package client

import "errors"

var (
	// ErrDaemonNotRunning is returned when nothing answers on the daemon socket.
	ErrDaemonNotRunning = errors.New("beltcalc daemon not running")

	// ErrPermissionDenied is returned when the socket exists but is not accessible to the caller.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when the daemon answers 404, usually an older daemon.
	ErrNotFound = errors.New("404 not found")
)
