package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"drone-detect/domain/detection"
)

func TestLoad(t *testing.T) {
	t.Run("parses full config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `paths:
  source_directory: /videos
  models_directory: /models
  reports_directory: /reports
detection:
  model: aerial-ssd
  delegate: gpu
  threshold: 0.6
  max_results: 5
  sample_interval_ms: 250
playback:
  ffplay_path: /usr/bin/ffplay
  ffprobe_path: /usr/bin/ffprobe
google:
  credentials_file: creds.json
  token_file: token.json
  reports_folder_id: folder-1
upload:
  enabled: true
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Detection.Model != "aerial-ssd" {
			t.Errorf("expected model 'aerial-ssd', got %q", cfg.Detection.Model)
		}
		if cfg.Detection.SampleIntervalMs != 250 {
			t.Errorf("expected interval 250, got %d", cfg.Detection.SampleIntervalMs)
		}
		if !cfg.Upload.Enabled {
			t.Error("expected upload enabled")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected config to validate, got %v", err)
		}
	})

	t.Run("defaults missing interval", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `detection:
  model: dronenet-lite
  delegate: cpu
  threshold: 0.5
  max_results: 3
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Detection.SampleIntervalMs != DefaultSampleIntervalMs {
			t.Errorf("expected default interval %d, got %d", DefaultSampleIntervalMs, cfg.Detection.SampleIntervalMs)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load("/nonexistent/config.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		if err := Default().Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("negative interval rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Detection.SampleIntervalMs = -1
		err := cfg.Validate()
		var cfgErr *detection.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("bad params rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Detection.Threshold = 0.95
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for threshold out of range")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Paths.SourceDirectory = "/drone/videos"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.Paths.SourceDirectory != "/drone/videos" {
		t.Errorf("expected source directory round-trip, got %q", loaded.Paths.SourceDirectory)
	}
	if loaded.Detection.Model != cfg.Detection.Model {
		t.Errorf("expected model round-trip, got %q", loaded.Detection.Model)
	}
}
