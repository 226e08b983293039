package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrCorrupt = errors.New("submission file is not a JSON array")
	ErrWrite   = errors.New("submission file write failed")
)
