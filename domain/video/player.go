package video

import "context"

// ReadyFunc is called once the player has prepared the source and knows its
// natural dimensions. It may be invoked from the player's own execution
// context; implementations must not assume deterministic interleaving with
// other session work.
type ReadyFunc func(naturalWidth, naturalHeight int)

// Player defines the interface for video playback. The playback position is
// deliberately not observable through this port; callers that need to line
// anything up with playback must keep their own clock.
type Player interface {
	// Load asynchronously prepares the source and calls onReady when the
	// natural dimensions are known. Preparation failure is reported through
	// the returned error or, if it happens later, by never calling onReady.
	Load(ctx context.Context, source string, onReady ReadyFunc) error

	// Start begins playback. Only valid after onReady has fired.
	Start() error

	// Stop halts playback
	Stop() error

	// Release frees all player resources. The player is unusable afterward.
	Release()
}
