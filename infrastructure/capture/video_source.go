//go:build detection

package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"drone-detect/domain/video"
)

// VideoSource implements video.FrameSource using GoCV's VideoCapture
type VideoSource struct{}

// NewVideoSource creates a new GoCV-backed frame source
func NewVideoSource() *VideoSource {
	return &VideoSource{}
}

// Open opens the video file and probes its duration
func (s *VideoSource) Open(source string) (video.FrameSeq, error) {
	capture, err := gocv.VideoCaptureFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", source)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	frames := capture.Get(gocv.VideoCaptureFrameCount)
	if fps <= 0 || frames <= 0 {
		capture.Close()
		return nil, fmt.Errorf("video %s has no decodable frames", source)
	}

	return &videoSeq{
		capture:    capture,
		durationMs: int64(frames / fps * 1000),
	}, nil
}

// videoSeq provides seek-based frame access over an open VideoCapture.
// VideoCapture is not safe for concurrent use; the mutex serializes the
// seek+read pair.
type videoSeq struct {
	mu         sync.Mutex
	capture    *gocv.VideoCapture
	durationMs int64
}

// DurationMs returns the probed video duration
func (s *videoSeq) DurationMs() int64 {
	return s.durationMs
}

// FrameAt seeks to the given position and decodes the nearest frame
func (s *videoSeq) FrameAt(ctx context.Context, timestampMs int64) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.capture.Set(gocv.VideoCapturePosMsec, float64(timestampMs))

	mat := gocv.NewMat()
	defer mat.Close()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("failed to decode frame at %dms", timestampMs)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame at %dms: %w", timestampMs, err)
	}
	return img, nil
}

// Close releases the underlying capture
func (s *videoSeq) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture.Close()
}

// Ensure VideoSource implements video.FrameSource
var _ video.FrameSource = (*VideoSource)(nil)
