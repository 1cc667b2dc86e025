package report

import (
	"context"
	"time"
)

// Report is a serializable summary of one batch detection pass
type Report struct {
	// SessionID identifies the detection session that produced this report
	SessionID string `json:"session_id"`

	// Source is the analyzed video file
	Source string `json:"source"`

	// Model is the detection model used
	Model string `json:"model"`

	// GeneratedAt is when the report was written
	GeneratedAt time.Time `json:"generated_at"`

	// SampleIntervalMs is the sampling interval used for the pass
	SampleIntervalMs int64 `json:"sample_interval_ms"`

	// InferenceTimeMs is the representative per-frame inference cost
	InferenceTimeMs int64 `json:"inference_time_ms"`

	// Frames holds one entry per sampled frame, in sample order
	Frames []FrameReport `json:"frames"`
}

// FrameReport summarizes the detections of one sampled frame
type FrameReport struct {
	TimestampMs int64         `json:"timestamp_ms"`
	Objects     []ObjectEntry `json:"objects"`
}

// ObjectEntry is one detected object in a frame report
type ObjectEntry struct {
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// FileInfo describes an uploaded report file
type FileInfo struct {
	ID      string
	Name    string
	WebLink string
}

// Uploader defines the interface for publishing report files to remote
// storage. This is a port implemented by infrastructure adapters.
type Uploader interface {
	// UploadFile uploads the file at path into the given folder
	UploadFile(ctx context.Context, path, folderID string) (*FileInfo, error)

	// ShareFilePublicly makes the file readable by anyone with the link and
	// returns the shareable link
	ShareFilePublicly(ctx context.Context, fileID string) (string, error)
}
