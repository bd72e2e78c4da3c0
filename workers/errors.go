package workers

import "errors"

// ErrQueueFull is returned when the sink's bounded queue cannot accept a
// submission. Callers log and move on; durable storage is best effort.
var ErrQueueFull = errors.New("result sink queue full")
