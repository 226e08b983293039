package app

import "errors"

// Sentinel kinds returned by the service.
var (
	// ErrStore wraps persistence failures of an accepted submission.
	ErrStore = errors.New("store failure")

	// ErrDuplicate marks an alert id that was already ingested.
	ErrDuplicate = errors.New("duplicate alert")
)

// Messages returned to submitters.
const (
	MsgFieldsRequired = "All fields are required."
	MsgInvalidEmail   = "Invalid email address."
)
