package playback

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"drone-detect/domain/detection"
	"drone-detect/domain/video"
)

// State is the lifecycle state of a playback session
type State int

const (
	// StateIdle means the session has not been started
	StateIdle State = iota

	// StatePreparing means the player is asynchronously preparing the source
	StatePreparing

	// StateReady means the player reported its natural dimensions and both
	// playback and the batch detection pass have been triggered
	StateReady

	// StatePlaying means the batch pass completed and results are being
	// published in step with elapsed time
	StatePlaying

	// StateFailed means a session-fatal error occurred
	StateFailed

	// StateFinished means publication ran past the buffered results
	StateFinished
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateFailed:
		return "failed"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Sink receives publication events. Methods are invoked from the session's
// background worker; implementations are responsible for any context switch
// they need before rendering.
type Sink interface {
	// OnResultPublished delivers the detection result for the current
	// elapsed playback time
	OnResultPublished(result detection.DetectionResult, inferenceTimeMs int64)

	// OnNotReady signals that no result is available yet
	OnNotReady()

	// OnSessionFailed delivers a session-fatal error
	OnSessionFailed(err error)
}

// BatchRunner runs a full batch detection pass over a video source
type BatchRunner interface {
	Run(ctx context.Context, source string) (*detection.BatchOutcome, error)
}

// Published is the currently displayed result. A single slot overwritten on
// every publication tick; no history is retained.
type Published struct {
	Result          detection.DetectionResult
	InferenceTimeMs int64
}

// Session reconciles independently started video playback with buffered
// detection results. One dedicated background worker runs the batch pass and
// the subsequent publication timer, so at most one of the two executes at any
// moment within a session.
type Session struct {
	id       string
	player   video.Player
	runner   BatchRunner
	sink     Sink
	clk      clock.Clock
	interval time.Duration
	output   io.Writer

	mu            sync.Mutex
	state         State
	err           error
	closed        bool
	naturalWidth  int
	naturalHeight int

	quit       chan struct{}
	finished   chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once

	published atomic.Pointer[Published]
}

// Option is a functional option for configuring a Session
type Option func(*Session)

// WithClock sets the clock used for the reference timestamp and the
// publication timer (for testing)
func WithClock(clk clock.Clock) Option {
	return func(s *Session) {
		s.clk = clk
	}
}

// WithOutput sets the writer for progress messages
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.output = w
	}
}

// NewSession creates a playback session over the given player and batch
// runner. Results are published every interval.
func NewSession(player video.Player, runner BatchRunner, sink Sink, interval time.Duration, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		player:   player,
		runner:   runner,
		sink:     sink,
		clk:      clock.New(),
		interval: interval,
		output:   io.Discard,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if s.sink == nil {
		s.sink = noopSink{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the session-fatal error, if any
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// NaturalSize returns the player-reported dimensions, zero until ready
func (s *Session) NaturalSize() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.naturalWidth, s.naturalHeight
}

// Latest returns the most recently published result, nil until the first
// publication and after teardown
func (s *Session) Latest() *Published {
	return s.published.Load()
}

// Done is closed once the session reaches a terminal state (Finished or
// Failed) or is closed
func (s *Session) Done() <-chan struct{} {
	return s.finished
}

// Start begins the session: the player prepares the source asynchronously,
// and preparation-complete triggers both playback and the batch detection
// pass. Returns immediately after handing the source to the player.
func (s *Session) Start(ctx context.Context, source string) error {
	if s.interval <= 0 {
		return &detection.ConfigurationError{
			Field:  "interval",
			Reason: fmt.Sprintf("must be positive, got %v", s.interval),
		}
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.id)
	}
	s.state = StatePreparing
	s.mu.Unlock()

	s.sink.OnNotReady()
	fmt.Fprintf(s.output, "Preparing %s...\n", source)

	if err := s.player.Load(ctx, source, func(width, height int) {
		s.onReady(ctx, source, width, height)
	}); err != nil {
		wrapped := fmt.Errorf("%w: %v", detection.ErrPlayerPreparationFailed, err)
		s.fail(wrapped)
		return wrapped
	}
	return nil
}

// onReady runs on the player's execution context when preparation completes.
// It triggers the two race-prone steps: starting playback and kicking off the
// batch pass on the session's dedicated worker.
func (s *Session) onReady(ctx context.Context, source string, width, height int) {
	s.mu.Lock()
	if s.closed || s.state != StatePreparing {
		s.mu.Unlock()
		return
	}
	s.naturalWidth = width
	s.naturalHeight = height
	s.state = StateReady
	s.mu.Unlock()

	fmt.Fprintf(s.output, "Player ready (%dx%d), starting playback\n", width, height)

	if err := s.player.Start(); err != nil {
		s.fail(fmt.Errorf("%w: start: %v", detection.ErrPlayerPreparationFailed, err))
		return
	}

	go s.run(ctx, source)
}

// run is the session's single background worker: it executes the batch pass
// to completion, then drives the publication timer until the buffer is
// exhausted. The reference clock is captured at batch completion, accepting
// that playback may already have been running for the duration of the pass.
func (s *Session) run(ctx context.Context, source string) {
	defer s.finish()

	outcome, err := s.runner.Run(ctx, source)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.fail(err)
		return
	}
	if outcome.Len() == 0 {
		// Index 0 would be immediately out of bounds; never start the timer.
		s.state = StateFinished
		s.mu.Unlock()
		fmt.Fprintf(s.output, "No detection results; nothing to publish\n")
		return
	}
	startedAt := s.clk.Now()
	s.state = StatePlaying
	s.mu.Unlock()

	fmt.Fprintf(s.output, "Publishing %d results every %v\n", outcome.Len(), s.interval)

	ticker := s.clk.Ticker(s.interval)
	defer ticker.Stop()

	// First tick fires at zero delay.
	if !s.publish(outcome, startedAt) {
		return
	}
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			if !s.publish(outcome, startedAt) {
				return
			}
		}
	}
}

// publish computes the sample index for the current elapsed time and
// publishes the matching buffered result. Returns false once the index runs
// past the buffer, which is the loop's sole termination condition.
func (s *Session) publish(outcome *detection.BatchOutcome, startedAt time.Time) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	elapsed := s.clk.Since(startedAt)
	index := int(elapsed / s.interval)
	result, ok := outcome.At(index)
	if !ok {
		s.mu.Lock()
		if !s.closed {
			s.state = StateFinished
		}
		s.mu.Unlock()
		fmt.Fprintf(s.output, "Playback ran past buffered results, stopping\n")
		return false
	}

	s.published.Store(&Published{Result: result, InferenceTimeMs: outcome.InferenceTimeMs})
	s.sink.OnResultPublished(result, outcome.InferenceTimeMs)
	return true
}

// fail records a session-fatal error and surfaces it to the sink
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateFailed
	s.err = err
	s.mu.Unlock()

	s.sink.OnSessionFailed(err)
	s.finish()
}

func (s *Session) finish() {
	s.finishOnce.Do(func() {
		close(s.finished)
	})
}

// Close tears the session down: the publication timer is retired before the
// player is released, and the published slot is dropped so no stale result
// survives the session. Safe to call in any state, including while the batch
// pass is still running.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		close(s.quit)
	})

	s.player.Stop()
	s.player.Release()
	s.published.Store(nil)
	s.finish()
	return nil
}

// noopSink is used when no sink is provided
type noopSink struct{}

func (noopSink) OnResultPublished(detection.DetectionResult, int64) {}
func (noopSink) OnNotReady()                                        {}
func (noopSink) OnSessionFailed(error)                              {}
