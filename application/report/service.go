package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"drone-detect/domain/detection"
	"drone-detect/domain/report"
)

// Service writes detection reports and optionally hands them to an uploader
type Service struct {
	uploader  report.Uploader
	outputDir string
	folderID  string
	now       func() time.Time
	output    io.Writer
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithUploader sets the remote storage uploader. Without one, reports are
// only written locally.
func WithUploader(uploader report.Uploader, folderID string) ServiceOption {
	return func(s *Service) {
		s.uploader = uploader
		s.folderID = folderID
	}
}

// WithNowFunc overrides the report timestamp source (for testing)
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a report service writing into outputDir
func NewService(outputDir string, output io.Writer, opts ...ServiceOption) *Service {
	if output == nil {
		output = io.Discard
	}
	s := &Service{
		outputDir: outputDir,
		now:       time.Now,
		output:    output,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input describes the batch pass being reported
type Input struct {
	SessionID        string
	Source           string
	Model            detection.Model
	SampleIntervalMs int64
	Outcome          *detection.BatchOutcome
}

// Result contains where the report ended up
type Result struct {
	Path     string
	WebLink  string // empty unless uploaded
	Uploaded bool
}

// Write serializes the outcome as a JSON report, saves it next to the other
// reports, and uploads it when an uploader is configured
func (s *Service) Write(ctx context.Context, input Input) (*Result, error) {
	if input.Outcome == nil {
		return nil, fmt.Errorf("no batch outcome to report")
	}

	rep := report.Report{
		SessionID:        input.SessionID,
		Source:           filepath.Base(input.Source),
		Model:            string(input.Model),
		GeneratedAt:      s.now().UTC(),
		SampleIntervalMs: input.SampleIntervalMs,
		InferenceTimeMs:  input.Outcome.InferenceTimeMs,
	}
	for _, res := range input.Outcome.Results {
		frame := report.FrameReport{TimestampMs: res.TimestampMs}
		for _, d := range res.Detections {
			frame.Objects = append(frame.Objects, report.ObjectEntry{
				Label:  d.Label,
				Score:  d.Score,
				X:      d.Box.Min.X,
				Y:      d.Box.Min.Y,
				Width:  d.Box.Dx(),
				Height: d.Box.Dy(),
			})
		}
		rep.Frames = append(rep.Frames, frame)
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", rep.GeneratedAt.Format("2006-01-02"), input.SessionID)
	path := filepath.Join(s.outputDir, name)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(s.output, "Report written: %s\n", path)

	result := &Result{Path: path}
	if s.uploader == nil {
		return result, nil
	}

	info, err := s.uploader.UploadFile(ctx, path, s.folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}
	link, err := s.uploader.ShareFilePublicly(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to share report: %w", err)
	}
	result.WebLink = link
	result.Uploaded = true
	fmt.Fprintf(s.output, "Report uploaded: %s\n", link)
	return result, nil
}
