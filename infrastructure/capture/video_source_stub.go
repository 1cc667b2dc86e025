//go:build !detection

package capture

import (
	"fmt"

	"drone-detect/domain/video"
)

// VideoSource is a stub when GoCV/OpenCV is not available
type VideoSource struct{}

// NewVideoSource creates a stub frame source (requires building with -tags=detection)
func NewVideoSource() *VideoSource {
	return &VideoSource{}
}

// Open returns an error indicating frame decoding is not available
func (s *VideoSource) Open(source string) (video.FrameSeq, error) {
	return nil, fmt.Errorf("frame decoding not available: build with '-tags=detection' and install OpenCV/GoCV")
}

// Ensure VideoSource implements video.FrameSource
var _ video.FrameSource = (*VideoSource)(nil)
