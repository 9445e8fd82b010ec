package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrMissing   = errors.New("feed file missing")
	ErrMalformed = errors.New("feed file malformed")
)
