package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound = errors.New("document not found")
	ErrCorrupt  = errors.New("document corrupt")
	ErrClosed   = errors.New("repository closed")
)
