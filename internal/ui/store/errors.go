package store

import "errors"

// ErrUnknownTheme is returned when a theme name is not in the catalog.
var ErrUnknownTheme = errors.New("unknown theme")
