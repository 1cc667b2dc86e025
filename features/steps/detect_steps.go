//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drone-detect/cmd"
	"drone-detect/domain/detection"
	"drone-detect/domain/report"
	"drone-detect/domain/video"
	"drone-detect/infrastructure/config"

	"github.com/cucumber/godog"
)

type detectContext struct {
	tempDir    string
	cfg        *config.Config
	sourcePath string
	durationMs int64
	exists     bool
	output     bytes.Buffer
	err        error
}

var SharedDetectContext = &detectContext{}

// fakeFrameSource serves synthetic frames for a fixed-duration video
type fakeFrameSource struct {
	durationMs int64
}

func (f *fakeFrameSource) Open(source string) (video.FrameSeq, error) {
	return &fakeFrameSeq{durationMs: f.durationMs}, nil
}

type fakeFrameSeq struct {
	durationMs int64
}

func (f *fakeFrameSeq) DurationMs() int64 {
	return f.durationMs
}

func (f *fakeFrameSeq) FrameAt(ctx context.Context, timestampMs int64) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 320, 240)), nil
}

func (f *fakeFrameSeq) Close() error {
	return nil
}

// fakeDetector reports one drone per frame
type fakeDetector struct{}

func (d *fakeDetector) Detect(ctx context.Context, frame image.Image) (detection.DetectionResult, error) {
	return detection.DetectionResult{
		Detections: []detection.Detection{
			{Box: image.Rect(10, 20, 60, 70), Label: "drone", Score: 0.9},
		},
		InferenceTime: 5 * time.Millisecond,
	}, nil
}

func (d *fakeDetector) Close() error {
	return nil
}

// fakePlayer reports readiness immediately and plays silently
type fakePlayer struct{}

func (p *fakePlayer) Load(ctx context.Context, source string, onReady video.ReadyFunc) error {
	go onReady(640, 480)
	return nil
}

func (p *fakePlayer) Start() error { return nil }
func (p *fakePlayer) Stop() error  { return nil }
func (p *fakePlayer) Release()     {}

type fakeChecker struct {
	exists bool
}

func (c *fakeChecker) Exists(path string) bool {
	return c.exists
}

type fakeFinder struct {
	path string
}

func (f *fakeFinder) FindNewestFile(dir, ext string) (string, error) {
	if f.path == "" {
		return "", fmt.Errorf("no video files found in %s", dir)
	}
	return f.path, nil
}

func InitializeDetectScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedDetectContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "detect-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.cfg = config.Default()
		testCtx.cfg.Paths.ReportsDirectory = filepath.Join(tempDir, "reports")
		testCtx.sourcePath = ""
		testCtx.durationMs = 0
		testCtx.exists = true
		testCtx.output.Reset()
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedDetectContext = &detectContext{}
		return c, nil
	})

	ctx.Step(`^a (\d+)ms video "([^"]*)" sampled every (\d+)ms$`, testCtx.aVideoSampledEvery)
	ctx.Step(`^the source video "([^"]*)" does not exist$`, testCtx.theSourceVideoDoesNotExist)
	ctx.Step(`^I run batch detection without playback$`, testCtx.iRunBatchDetectionWithoutPlayback)
	ctx.Step(`^I run batch detection with a report$`, testCtx.iRunBatchDetectionWithAReport)
	ctx.Step(`^I run detection with playback$`, testCtx.iRunDetectionWithPlayback)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	ctx.Step(`^the run should fail with "([^"]*)"$`, testCtx.theRunShouldFailWith)
	ctx.Step(`^a report file should exist$`, testCtx.aReportFileShouldExist)
	ctx.Step(`^(\d+) frames should be reported$`, testCtx.framesShouldBeReported)
}

func (d *detectContext) aVideoSampledEvery(durationMs int, name string, intervalMs int) error {
	d.sourcePath = filepath.Join(d.tempDir, name)
	d.durationMs = int64(durationMs)
	d.cfg.Detection.SampleIntervalMs = int64(intervalMs)
	d.exists = true
	return nil
}

func (d *detectContext) theSourceVideoDoesNotExist(name string) error {
	d.sourcePath = filepath.Join(d.tempDir, name)
	d.exists = false
	return nil
}

func (d *detectContext) runDetect(input cmd.DetectInput) error {
	input.InputPath = d.sourcePath
	d.err = cmd.RunDetectWithDependencies(
		context.Background(),
		d.cfg,
		&fakeFrameSource{durationMs: d.durationMs},
		&fakeDetector{},
		&fakePlayer{},
		&fakeChecker{exists: d.exists},
		&fakeFinder{path: d.sourcePath},
		nil,
		input,
		&d.output,
	)
	return nil
}

func (d *detectContext) iRunBatchDetectionWithoutPlayback() error {
	return d.runDetect(cmd.DetectInput{NoPlayback: true})
}

func (d *detectContext) iRunBatchDetectionWithAReport() error {
	return d.runDetect(cmd.DetectInput{NoPlayback: true, Report: true})
}

func (d *detectContext) iRunDetectionWithPlayback() error {
	return d.runDetect(cmd.DetectInput{})
}

func (d *detectContext) theOutputShouldContain(expected string) error {
	if d.err != nil {
		return fmt.Errorf("detection failed: %w", d.err)
	}
	if !strings.Contains(d.output.String(), expected) {
		return fmt.Errorf("output does not contain %q:\n%s", expected, d.output.String())
	}
	return nil
}

func (d *detectContext) theRunShouldFailWith(expected string) error {
	if d.err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	if !strings.Contains(d.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, d.err.Error())
	}
	return nil
}

func (d *detectContext) reportFiles() ([]string, error) {
	entries, err := os.ReadDir(d.cfg.Paths.ReportsDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			files = append(files, filepath.Join(d.cfg.Paths.ReportsDirectory, entry.Name()))
		}
	}
	return files, nil
}

func (d *detectContext) aReportFileShouldExist() error {
	if d.err != nil {
		return fmt.Errorf("detection failed: %w", d.err)
	}
	files, err := d.reportFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no report file found in %s", d.cfg.Paths.ReportsDirectory)
	}
	return nil
}

func (d *detectContext) framesShouldBeReported(expected int) error {
	files, err := d.reportFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no report file found in %s", d.cfg.Paths.ReportsDirectory)
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}
	if len(rep.Frames) != expected {
		return fmt.Errorf("expected %d reported frames, got %d", expected, len(rep.Frames))
	}
	return nil
}
