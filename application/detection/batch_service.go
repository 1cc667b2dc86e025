package detection

import (
	"context"
	"fmt"
	"io"

	"drone-detect/domain/detection"
	"drone-detect/domain/video"
)

// Service runs a detector over sampled frames of a video file and collects
// the results into a single BatchOutcome. The whole pass is synchronous and
// is expected to run off the interactive path.
type Service struct {
	frames     video.FrameSource
	detector   detection.Detector
	intervalMs int64
	output     io.Writer
}

// NewService creates a new batch detection service. The sampling interval
// must be positive; Run rejects the service otherwise.
func NewService(frames video.FrameSource, detector detection.Detector, intervalMs int64, output io.Writer) *Service {
	if output == nil {
		output = io.Discard
	}
	return &Service{
		frames:     frames,
		detector:   detector,
		intervalMs: intervalMs,
		output:     output,
	}
}

// Run samples the video at the fixed interval, invokes the detector once per
// sample, and returns the fully materialized outcome. Individual frame
// failures are absorbed by substituting an empty result so the outcome's
// index arithmetic always matches the video's duration; only a source that
// cannot be opened at all aborts the pass.
func (s *Service) Run(ctx context.Context, source string) (*detection.BatchOutcome, error) {
	if s.intervalMs <= 0 {
		return nil, &detection.ConfigurationError{
			Field:  "sample_interval_ms",
			Reason: fmt.Sprintf("must be positive, got %d", s.intervalMs),
		}
	}

	seq, err := s.frames.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", detection.ErrVideoUnreadable, source, err)
	}
	defer seq.Close()

	durationMs := seq.DurationMs()
	if durationMs < 0 {
		return nil, fmt.Errorf("%w: %s: negative duration", detection.ErrVideoUnreadable, source)
	}

	sampleCount := int(durationMs / s.intervalMs)
	if durationMs%s.intervalMs != 0 {
		sampleCount++
	}
	fmt.Fprintf(s.output, "Analyzing %s: %d samples at %dms intervals...\n", source, sampleCount, s.intervalMs)

	outcome := &detection.BatchOutcome{
		Results: make([]detection.DetectionResult, 0, sampleCount),
	}

	for t := int64(0); t < durationMs; t += s.intervalMs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		outcome.Results = append(outcome.Results, s.detectAt(ctx, seq, t, outcome))
	}

	fmt.Fprintf(s.output, "Analysis complete: %d frames processed\n", len(outcome.Results))
	return outcome, nil
}

// detectAt decodes and detects one sample. Frame-level failures degrade to
// an empty result; they never shorten the buffer.
func (s *Service) detectAt(ctx context.Context, seq video.FrameSeq, timestampMs int64, outcome *detection.BatchOutcome) detection.DetectionResult {
	img, err := seq.FrameAt(ctx, timestampMs)
	if err != nil {
		fmt.Fprintf(s.output, "  skipping frame at %dms: %v\n", timestampMs, err)
		return detection.EmptyResult(timestampMs)
	}

	result, err := s.detector.Detect(ctx, img)
	if err != nil {
		fmt.Fprintf(s.output, "  skipping frame at %dms: %v\n", timestampMs, err)
		return detection.EmptyResult(timestampMs)
	}

	result.TimestampMs = timestampMs
	if ms := result.InferenceTime.Milliseconds(); ms > 0 {
		outcome.InferenceTimeMs = ms
	}
	return result
}
