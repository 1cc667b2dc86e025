package detection

import (
	"image"
	"time"
)

// Detection is one detected object in a frame
type Detection struct {
	// Box is the bounding box in frame-pixel coordinates
	Box image.Rectangle

	// Label is the detected object class (e.g. "drone")
	Label string

	// Score is the confidence score (0.0-1.0)
	Score float64
}

// DetectionResult contains one detector invocation's output.
// Immutable once produced.
type DetectionResult struct {
	// TimestampMs is the sample position in the video, in milliseconds
	TimestampMs int64

	// Detections are the detected objects, in detector output order
	Detections []Detection

	// InferenceTime is how long the detector call took
	InferenceTime time.Duration
}

// EmptyResult returns a result with no detections for the given sample
// timestamp. Used to keep the result buffer aligned when a single frame
// fails to decode or detect.
func EmptyResult(timestampMs int64) DetectionResult {
	return DetectionResult{TimestampMs: timestampMs}
}

// BatchOutcome owns the ordered detection results of one batch pass over a
// video. Index order equals temporal sample order. Constructed once by the
// batch driver and read-only afterward.
type BatchOutcome struct {
	// Results holds one DetectionResult per sampling tick, in tick order
	Results []DetectionResult

	// InferenceTimeMs is a representative per-frame inference cost for
	// display (the last successful frame's measurement)
	InferenceTimeMs int64
}

// Len returns the number of buffered results
func (o *BatchOutcome) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Results)
}

// At returns the result at the given sample index and whether it exists.
// An out-of-bounds index is the defined end-of-playback signal, not an error.
func (o *BatchOutcome) At(index int) (DetectionResult, bool) {
	if o == nil || index < 0 || index >= len(o.Results) {
		return DetectionResult{}, false
	}
	return o.Results[index], true
}
