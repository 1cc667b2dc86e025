package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"os"
	"testing"
	"time"

	"drone-detect/domain/detection"
	"drone-detect/domain/report"
)

// mockUploader implements report.Uploader for testing
type mockUploader struct {
	uploadErr error
	uploaded  []string
	shared    []string
}

func (m *mockUploader) UploadFile(ctx context.Context, path, folderID string) (*report.FileInfo, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploaded = append(m.uploaded, path)
	return &report.FileInfo{ID: "file-123", Name: path}, nil
}

func (m *mockUploader) ShareFilePublicly(ctx context.Context, fileID string) (string, error) {
	m.shared = append(m.shared, fileID)
	return "https://drive.example.com/file-123", nil
}

func sampleOutcome() *detection.BatchOutcome {
	return &detection.BatchOutcome{
		Results: []detection.DetectionResult{
			{
				TimestampMs: 0,
				Detections: []detection.Detection{
					{Box: image.Rect(10, 20, 110, 90), Label: "drone", Score: 0.88},
				},
			},
			{TimestampMs: 300},
		},
		InferenceTimeMs: 37,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

func TestWriteCreatesJSONReport(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir, &bytes.Buffer{}, WithNowFunc(fixedNow))

	result, err := service.Write(context.Background(), Input{
		SessionID:        "abc",
		Source:           "/videos/flight.mp4",
		Model:            detection.ModelDroneNetLite,
		SampleIntervalMs: 300,
		Outcome:          sampleOutcome(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Uploaded {
		t.Error("expected report not to be uploaded without an uploader")
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}

	if rep.Source != "flight.mp4" {
		t.Errorf("expected source 'flight.mp4', got %q", rep.Source)
	}
	if rep.Model != "dronenet-lite" {
		t.Errorf("expected model 'dronenet-lite', got %q", rep.Model)
	}
	if rep.InferenceTimeMs != 37 {
		t.Errorf("expected inference time 37, got %d", rep.InferenceTimeMs)
	}
	if len(rep.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rep.Frames))
	}
	if len(rep.Frames[0].Objects) != 1 {
		t.Fatalf("expected 1 object in first frame, got %d", len(rep.Frames[0].Objects))
	}
	obj := rep.Frames[0].Objects[0]
	if obj.Label != "drone" || obj.Width != 100 || obj.Height != 70 {
		t.Errorf("unexpected object entry: %+v", obj)
	}
	if len(rep.Frames[1].Objects) != 0 {
		t.Errorf("expected empty frame to have no objects")
	}
}

func TestWriteUploadsWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	uploader := &mockUploader{}
	service := NewService(dir, &bytes.Buffer{},
		WithNowFunc(fixedNow),
		WithUploader(uploader, "folder-1"),
	)

	result, err := service.Write(context.Background(), Input{
		SessionID: "abc",
		Source:    "flight.mp4",
		Model:     detection.ModelAerialSSD,
		Outcome:   sampleOutcome(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Uploaded {
		t.Error("expected report to be uploaded")
	}
	if result.WebLink != "https://drive.example.com/file-123" {
		t.Errorf("unexpected link %q", result.WebLink)
	}
	if len(uploader.uploaded) != 1 || len(uploader.shared) != 1 {
		t.Errorf("expected one upload and one share, got %d/%d", len(uploader.uploaded), len(uploader.shared))
	}
}

func TestWriteFailsWhenUploadFails(t *testing.T) {
	dir := t.TempDir()
	uploader := &mockUploader{uploadErr: errors.New("quota exceeded")}
	service := NewService(dir, &bytes.Buffer{},
		WithNowFunc(fixedNow),
		WithUploader(uploader, "folder-1"),
	)

	_, err := service.Write(context.Background(), Input{
		SessionID: "abc",
		Source:    "flight.mp4",
		Model:     detection.ModelDroneNetFull,
		Outcome:   sampleOutcome(),
	})
	if err == nil {
		t.Fatal("expected upload error to surface")
	}
}

func TestWriteRequiresOutcome(t *testing.T) {
	service := NewService(t.TempDir(), &bytes.Buffer{})
	if _, err := service.Write(context.Background(), Input{SessionID: "abc"}); err == nil {
		t.Error("expected error for missing outcome")
	}
}
