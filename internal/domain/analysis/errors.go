package analysis

import "errors"

// ErrInvalidRequest is the only error an analysis caller can see; everything
// backend-side is absorbed into the result's backend statuses.
var ErrInvalidRequest = errors.New("invalid analysis request")

// ErrNotFound indicates no stored result matches the given ID.
var ErrNotFound = errors.New("analysis not found")
