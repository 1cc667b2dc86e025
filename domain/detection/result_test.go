package detection

import (
	"image"
	"testing"
	"time"
)

func TestDetectionResult(t *testing.T) {
	t.Run("stores detections correctly", func(t *testing.T) {
		result := DetectionResult{
			TimestampMs: 600,
			Detections: []Detection{
				{Box: image.Rect(10, 20, 110, 90), Label: "drone", Score: 0.92},
			},
			InferenceTime: 45 * time.Millisecond,
		}

		if result.TimestampMs != 600 {
			t.Errorf("expected timestamp 600, got %d", result.TimestampMs)
		}
		if len(result.Detections) != 1 {
			t.Fatalf("expected 1 detection, got %d", len(result.Detections))
		}
		if result.Detections[0].Label != "drone" {
			t.Errorf("expected label 'drone', got %s", result.Detections[0].Label)
		}
		if result.Detections[0].Score != 0.92 {
			t.Errorf("expected score 0.92, got %f", result.Detections[0].Score)
		}
	})

	t.Run("empty result keeps timestamp", func(t *testing.T) {
		result := EmptyResult(900)
		if result.TimestampMs != 900 {
			t.Errorf("expected timestamp 900, got %d", result.TimestampMs)
		}
		if len(result.Detections) != 0 {
			t.Errorf("expected no detections, got %d", len(result.Detections))
		}
	})
}

func TestBatchOutcome(t *testing.T) {
	outcome := &BatchOutcome{
		Results: []DetectionResult{
			EmptyResult(0),
			EmptyResult(300),
			EmptyResult(600),
		},
		InferenceTimeMs: 42,
	}

	t.Run("length matches results", func(t *testing.T) {
		if outcome.Len() != 3 {
			t.Errorf("expected length 3, got %d", outcome.Len())
		}
	})

	t.Run("in-bounds lookup", func(t *testing.T) {
		res, ok := outcome.At(1)
		if !ok {
			t.Fatal("expected index 1 to be in bounds")
		}
		if res.TimestampMs != 300 {
			t.Errorf("expected timestamp 300, got %d", res.TimestampMs)
		}
	})

	t.Run("out-of-bounds lookup is not an error", func(t *testing.T) {
		if _, ok := outcome.At(3); ok {
			t.Error("expected index 3 to be out of bounds")
		}
		if _, ok := outcome.At(-1); ok {
			t.Error("expected index -1 to be out of bounds")
		}
	})

	t.Run("nil outcome is empty", func(t *testing.T) {
		var nilOutcome *BatchOutcome
		if nilOutcome.Len() != 0 {
			t.Errorf("expected nil outcome length 0, got %d", nilOutcome.Len())
		}
		if _, ok := nilOutcome.At(0); ok {
			t.Error("expected nil outcome lookup to miss")
		}
	})
}
