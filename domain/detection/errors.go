package detection

import (
	"errors"
	"fmt"
)

// ErrVideoUnreadable indicates the video source cannot be opened or decoded
// at all. The batch pass aborts and produces no outcome; the session treats
// the file as permanently bad.
var ErrVideoUnreadable = errors.New("video source unreadable")

// ErrPlayerPreparationFailed indicates the player could not prepare the
// source. Surfaced as a permanent session failure.
var ErrPlayerPreparationFailed = errors.New("player preparation failed")

// ConfigurationError indicates an invalid parameter or interval. Fails fast
// before any worker starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
