package session

import "errors"

var (
	// ErrNoClipboard is returned by Copy when the session has no clipboard sink.
	ErrNoClipboard = errors.New("session: clipboard is not configured")
)
