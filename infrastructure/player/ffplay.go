package player

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"drone-detect/domain/video"
)

// FFPlayer implements video.Player by probing the source with ffprobe and
// playing it back in an ffplay child process. Playback position is not
// observable, matching the Player port.
type FFPlayer struct {
	ffplayPath  string
	ffprobePath string
	runner      CommandRunner

	mu      sync.Mutex
	ctx     context.Context
	source  string
	ready   bool
	process Process
}

// FFPlayerOption is a functional option for configuring FFPlayer
type FFPlayerOption func(*FFPlayer)

// WithFFPlayPath sets a custom ffplay executable path
func WithFFPlayPath(path string) FFPlayerOption {
	return func(p *FFPlayer) {
		p.ffplayPath = path
	}
}

// WithFFProbePath sets a custom ffprobe executable path
func WithFFProbePath(path string) FFPlayerOption {
	return func(p *FFPlayer) {
		p.ffprobePath = path
	}
}

// WithRunner sets a custom command runner (for testing)
func WithRunner(runner CommandRunner) FFPlayerOption {
	return func(p *FFPlayer) {
		p.runner = runner
	}
}

// NewFFPlayer creates a new ffplay-based player
func NewFFPlayer(opts ...FFPlayerOption) *FFPlayer {
	p := &FFPlayer{
		ffplayPath:  "ffplay",
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Load probes the source for its natural dimensions and signals readiness
// asynchronously, the way a real playback engine would
func (p *FFPlayer) Load(ctx context.Context, source string, onReady video.ReadyFunc) error {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		source,
	)
	if err != nil {
		return fmt.Errorf("ffprobe failed for %s: %w", source, err)
	}

	width, height, err := parseDimensions(string(out))
	if err != nil {
		return fmt.Errorf("ffprobe output for %s: %w", source, err)
	}

	p.mu.Lock()
	p.ctx = ctx
	p.source = source
	p.ready = true
	p.mu.Unlock()

	go onReady(width, height)
	return nil
}

// Start launches the ffplay process
func (p *FFPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return fmt.Errorf("player not prepared")
	}
	if p.process != nil {
		return fmt.Errorf("playback already started")
	}

	process, err := p.runner.Start(p.ctx, p.ffplayPath,
		"-autoexit",
		"-loglevel", "error",
		p.source,
	)
	if err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}
	p.process = process
	return nil
}

// Stop terminates the playback process if one is running
func (p *FFPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.process == nil {
		return nil
	}
	err := p.process.Kill()
	p.process = nil
	return err
}

// Release stops playback and drops all state
func (p *FFPlayer) Release() {
	p.Stop()
	p.mu.Lock()
	p.ready = false
	p.source = ""
	p.ctx = nil
	p.mu.Unlock()
}

// VerifyInstalled checks that ffplay and ffprobe are available
func (p *FFPlayer) VerifyInstalled(ctx context.Context) error {
	if _, err := p.runner.Output(ctx, p.ffprobePath, "-version"); err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	if _, err := p.runner.Output(ctx, p.ffplayPath, "-version"); err != nil {
		return fmt.Errorf("ffplay not found or not executable: %w", err)
	}
	return nil
}

// parseDimensions parses ffprobe's "WIDTHxHEIGHT" output
func parseDimensions(out string) (int, int, error) {
	line := strings.TrimSpace(out)
	parts := strings.Split(line, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected dimensions %q", line)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("non-positive dimensions %q", line)
	}
	return width, height, nil
}

// Ensure FFPlayer implements video.Player
var _ video.Player = (*FFPlayer)(nil)
