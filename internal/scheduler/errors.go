package scheduler

import "errors"

// Sentinel errors surfaced unchanged to callers (§7).
var (
	ErrCardNotFound      = errors.New("scheduler: card not found")
	ErrSessionNotStarted = errors.New("scheduler: session not started")
	ErrSessionClosed     = errors.New("scheduler: session closed")
	ErrNothingToUndo     = errors.New("scheduler: nothing to undo")
	ErrInvalidParameter  = errors.New("scheduler: invalid parameter")
	ErrStoreUnavailable  = errors.New("scheduler: store unavailable")
)
