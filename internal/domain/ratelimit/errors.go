package ratelimit

import "errors"

// ErrLimited is returned when a client exceeded its window budget.
var ErrLimited = errors.New("rate limited")
