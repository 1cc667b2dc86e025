package player

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockRunner implements CommandRunner for testing
type mockRunner struct {
	output    []byte
	outputErr error
	startErr  error
	started   [][]string
	process   *mockProcess
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	return m.output, nil
}

func (m *mockRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started = append(m.started, append([]string{name}, args...))
	if m.process == nil {
		m.process = &mockProcess{}
	}
	return m.process, nil
}

type mockProcess struct {
	killed bool
}

func (p *mockProcess) Kill() error {
	p.killed = true
	return nil
}

func (p *mockProcess) Wait() error { return nil }

func waitReady(t *testing.T, ready chan [2]int) [2]int {
	t.Helper()
	select {
	case dims := <-ready:
		return dims
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ready callback")
		return [2]int{}
	}
}

func TestLoadProbesDimensions(t *testing.T) {
	runner := &mockRunner{output: []byte("1920x1080\n")}
	p := NewFFPlayer(WithRunner(runner))

	ready := make(chan [2]int, 1)
	err := p.Load(context.Background(), "flight.mp4", func(w, h int) {
		ready <- [2]int{w, h}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dims := waitReady(t, ready)
	if dims[0] != 1920 || dims[1] != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", dims[0], dims[1])
	}
}

func TestLoadFailsOnProbeError(t *testing.T) {
	runner := &mockRunner{outputErr: errors.New("no such file")}
	p := NewFFPlayer(WithRunner(runner))

	err := p.Load(context.Background(), "missing.mp4", func(w, h int) {
		t.Error("onReady must not fire on probe failure")
	})
	if err == nil {
		t.Fatal("expected probe error")
	}
}

func TestLoadFailsOnGarbledProbeOutput(t *testing.T) {
	for _, out := range []string{"", "widthxheight", "1920", "0x0", "-1x720"} {
		runner := &mockRunner{output: []byte(out)}
		p := NewFFPlayer(WithRunner(runner))
		err := p.Load(context.Background(), "flight.mp4", func(w, h int) {})
		if err == nil {
			t.Errorf("expected error for probe output %q", out)
		}
	}
}

func TestStartRequiresPreparation(t *testing.T) {
	p := NewFFPlayer(WithRunner(&mockRunner{}))
	if err := p.Start(); err == nil {
		t.Error("expected error starting unprepared player")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	runner := &mockRunner{output: []byte("1280x720")}
	p := NewFFPlayer(WithRunner(runner))

	ready := make(chan [2]int, 1)
	if err := p.Load(context.Background(), "flight.mp4", func(w, h int) {
		ready <- [2]int{w, h}
	}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	waitReady(t, ready)

	if err := p.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if len(runner.started) != 1 {
		t.Fatalf("expected one started process, got %d", len(runner.started))
	}
	if err := p.Start(); err == nil {
		t.Error("expected error starting playback twice")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if !runner.process.killed {
		t.Error("expected playback process to be killed")
	}

	// Stop is idempotent
	if err := p.Stop(); err != nil {
		t.Errorf("unexpected error on second stop: %v", err)
	}
}

func TestReleaseDropsPreparation(t *testing.T) {
	runner := &mockRunner{output: []byte("1280x720")}
	p := NewFFPlayer(WithRunner(runner))

	ready := make(chan [2]int, 1)
	if err := p.Load(context.Background(), "flight.mp4", func(w, h int) {
		ready <- [2]int{w, h}
	}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	waitReady(t, ready)

	p.Release()
	if err := p.Start(); err == nil {
		t.Error("expected error starting released player")
	}
}
