package session

import "errors"

// Sentinel errors for session lifecycle misuse (§4.7, §7).
var (
	ErrNotStarted  = errors.New("session: not started")
	ErrClosed      = errors.New("session: closed")
	ErrEmptyQueue  = errors.New("session: no current card")
	ErrNothingToUndo = errors.New("session: nothing to undo")
)
