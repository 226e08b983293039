package formservice

import "errors"

// ErrNetwork marks a submission that never got a JSON reply.
var ErrNetwork = errors.New("network error")

// MsgNetwork is shown to the user when ErrNetwork is returned.
const MsgNetwork = "Network error. Please check your connection and try again."
