package device

import "errors"

// Reasons a start request is ignored. They are logged, never returned.
var (
	errNotConnected = errors.New("device not connected")
	errBusy         = errors.New("process already active")
)
