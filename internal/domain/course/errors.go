package course

import "errors"

// ErrInvalidBoundaries reports an empty or non-increasing boundary list.
var ErrInvalidBoundaries = errors.New("invalid leg boundaries")
