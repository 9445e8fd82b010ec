package service

import "errors"

// Sentinel kinds for tick errors.
var (
	ErrInvalidMode    = errors.New("invalid tick mode")
	ErrRaceNotStarted = errors.New("race not started")
	ErrStateCorrupt   = errors.New("race state corrupt")
	ErrStorage        = errors.New("storage failure")
	ErrMissingRepo    = errors.New("repository not configured")
	ErrInvalidRoster  = errors.New("roster has no teams")
)
