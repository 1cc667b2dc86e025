//go:build !detection

package detection

import (
	"context"
	"fmt"
	"image"

	"drone-detect/domain/detection"
)

// DNNDetector is a stub when GoCV/OpenCV is not available
type DNNDetector struct{}

// NewDNNDetector creates a stub detector (requires building with -tags=detection)
func NewDNNDetector(params detection.Params, modelsDir string) (*DNNDetector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &DNNDetector{}, nil
}

// Detect returns an error indicating detection is not available
func (d *DNNDetector) Detect(ctx context.Context, frame image.Image) (detection.DetectionResult, error) {
	return detection.DetectionResult{}, fmt.Errorf("detection not available: build with '-tags=detection' and install OpenCV/GoCV")
}

// Close is a no-op in stub mode
func (d *DNNDetector) Close() error { return nil }

// Ensure DNNDetector implements detection.Detector
var _ detection.Detector = (*DNNDetector)(nil)
