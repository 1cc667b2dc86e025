package detection

import (
	"context"
	"fmt"
	"image"
)

// Detector defines the interface for per-frame object detection
// This is a port that can be implemented by different inference backends
type Detector interface {
	// Detect analyzes a single frame and returns the detected objects.
	// The result's sample timestamp is stamped by the caller, not the detector.
	Detect(ctx context.Context, frame image.Image) (DetectionResult, error)

	// Close releases any resources held by the detector
	Close() error
}

// Delegate selects the compute device used for inference
type Delegate string

const (
	// DelegateCPU runs inference on the CPU
	DelegateCPU Delegate = "cpu"

	// DelegateGPU runs inference on the GPU
	DelegateGPU Delegate = "gpu"
)

// Model identifies one of the bundled aerial-object detection models
type Model string

const (
	// ModelDroneNetLite is the small, fast drone detection model
	ModelDroneNetLite Model = "dronenet-lite"

	// ModelDroneNetFull is the larger, more accurate drone detection model
	ModelDroneNetFull Model = "dronenet-full"

	// ModelAerialSSD is the general aerial-object SSD model (drones, birds, aircraft)
	ModelAerialSSD Model = "aerial-ssd"
)

// Models lists all supported models
func Models() []Model {
	return []Model{ModelDroneNetLite, ModelDroneNetFull, ModelAerialSSD}
}

// Params holds detector configuration fixed for the lifetime of one batch pass
type Params struct {
	// Threshold is the minimum confidence score, range [0, 0.8]
	Threshold float64

	// MaxResults caps the number of detections per frame, range [1, 10]
	MaxResults int

	// Delegate selects CPU or GPU inference
	Delegate Delegate

	// Model selects the detection model
	Model Model
}

// DefaultParams returns the parameter set used when nothing is configured
func DefaultParams() Params {
	return Params{
		Threshold:  0.5,
		MaxResults: 3,
		Delegate:   DelegateCPU,
		Model:      ModelDroneNetLite,
	}
}

// Validate checks parameter ranges and enum membership
func (p Params) Validate() error {
	if p.Threshold < 0 || p.Threshold > 0.8 {
		return &ConfigurationError{Field: "threshold", Reason: fmt.Sprintf("must be in [0, 0.8], got %g", p.Threshold)}
	}
	if p.MaxResults < 1 || p.MaxResults > 10 {
		return &ConfigurationError{Field: "max_results", Reason: fmt.Sprintf("must be in [1, 10], got %d", p.MaxResults)}
	}
	switch p.Delegate {
	case DelegateCPU, DelegateGPU:
	default:
		return &ConfigurationError{Field: "delegate", Reason: fmt.Sprintf("unknown delegate %q", p.Delegate)}
	}
	valid := false
	for _, m := range Models() {
		if p.Model == m {
			valid = true
			break
		}
	}
	if !valid {
		return &ConfigurationError{Field: "model", Reason: fmt.Sprintf("unknown model %q", p.Model)}
	}
	return nil
}
