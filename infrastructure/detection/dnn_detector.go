//go:build detection

package detection

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"time"

	"gocv.io/x/gocv"

	"drone-detect/domain/detection"
)

// aerialLabels maps SSD class indices to the aerial-object classes the
// bundled models are trained on. Index 0 is the background class.
var aerialLabels = []string{
	"background",
	"drone",
	"airplane",
	"helicopter",
	"bird",
	"kite",
	"balloon",
}

// inputSize is the fixed network input resolution of the bundled models
var inputSize = image.Pt(300, 300)

// DNNDetector implements detection.Detector using a GoCV DNN network
type DNNDetector struct {
	net    gocv.Net
	params detection.Params
}

// NewDNNDetector loads the configured model from modelsDir and prepares the
// network on the requested delegate. The parameter set is fixed for the
// lifetime of the detector.
func NewDNNDetector(params detection.Params, modelsDir string) (*DNNDetector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	modelPath := filepath.Join(modelsDir, fmt.Sprintf("%s.onnx", params.Model))
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}

	if params.Delegate == detection.DelegateGPU {
		net.SetPreferableBackend(gocv.NetBackendCUDA)
		net.SetPreferableTarget(gocv.NetTargetCUDA)
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	return &DNNDetector{net: net, params: params}, nil
}

// Detect runs the network over one frame and returns detections above the
// configured threshold, best first, capped at MaxResults
func (d *DNNDetector) Detect(ctx context.Context, frame image.Image) (detection.DetectionResult, error) {
	select {
	case <-ctx.Done():
		return detection.DetectionResult{}, ctx.Err()
	default:
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return detection.DetectionResult{}, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	started := time.Now()

	blob := gocv.BlobFromImage(mat, 1.0/127.5, inputSize, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	defer prob.Close()

	bounds := frame.Bounds()
	detections := d.parseSSDOutput(prob, bounds.Dx(), bounds.Dy())

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})
	if len(detections) > d.params.MaxResults {
		detections = detections[:d.params.MaxResults]
	}

	return detection.DetectionResult{
		Detections:    detections,
		InferenceTime: time.Since(started),
	}, nil
}

// parseSSDOutput reads the [1,1,N,7] SSD detection matrix: each row is
// (batch, classID, confidence, left, top, right, bottom) with normalized
// box coordinates.
func (d *DNNDetector) parseSSDOutput(prob gocv.Mat, frameWidth, frameHeight int) []detection.Detection {
	var detections []detection.Detection

	rows := prob.Total() / 7
	flat := prob.Reshape(1, rows)
	defer flat.Close()

	for i := 0; i < rows; i++ {
		score := float64(flat.GetFloatAt(i, 2))
		if score < d.params.Threshold {
			continue
		}

		classID := int(flat.GetFloatAt(i, 1))
		label := "unknown"
		if classID >= 0 && classID < len(aerialLabels) {
			label = aerialLabels[classID]
		}

		left := int(flat.GetFloatAt(i, 3) * float32(frameWidth))
		top := int(flat.GetFloatAt(i, 4) * float32(frameHeight))
		right := int(flat.GetFloatAt(i, 5) * float32(frameWidth))
		bottom := int(flat.GetFloatAt(i, 6) * float32(frameHeight))

		box := image.Rect(left, top, right, bottom).Intersect(image.Rect(0, 0, frameWidth, frameHeight))
		if box.Empty() {
			continue
		}

		detections = append(detections, detection.Detection{
			Box:   box,
			Label: label,
			Score: score,
		})
	}

	return detections
}

// Close releases the network
func (d *DNNDetector) Close() error {
	return d.net.Close()
}

// Ensure DNNDetector implements detection.Detector
var _ detection.Detector = (*DNNDetector)(nil)
