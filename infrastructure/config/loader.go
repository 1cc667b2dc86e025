package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"drone-detect/domain/detection"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Detection DetectionConfig `yaml:"detection"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Google    GoogleConfig    `yaml:"google"`
	Upload    UploadConfig    `yaml:"upload"`
}

// PathsConfig contains directory paths
type PathsConfig struct {
	SourceDirectory  string `yaml:"source_directory"`
	ModelsDirectory  string `yaml:"models_directory"`
	ReportsDirectory string `yaml:"reports_directory"`
}

// DetectionConfig contains detector and sampling settings
type DetectionConfig struct {
	Model            string  `yaml:"model"`
	Delegate         string  `yaml:"delegate"`
	Threshold        float64 `yaml:"threshold"`
	MaxResults       int     `yaml:"max_results"`
	SampleIntervalMs int64   `yaml:"sample_interval_ms"`
}

// PlaybackConfig contains playback tool settings
type PlaybackConfig struct {
	FFPlayPath  string `yaml:"ffplay_path"`
	FFProbePath string `yaml:"ffprobe_path"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	ReportsFolderID string `yaml:"reports_folder_id"`
}

// UploadConfig controls report uploading
type UploadConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultSampleIntervalMs is the sampling and publication interval used when
// none is configured
const DefaultSampleIntervalMs = 300

// Default returns a configuration with sensible defaults
func Default() *Config {
	params := detection.DefaultParams()
	return &Config{
		Paths: PathsConfig{
			SourceDirectory:  "videos",
			ModelsDirectory:  "models",
			ReportsDirectory: "reports",
		},
		Detection: DetectionConfig{
			Model:            string(params.Model),
			Delegate:         string(params.Delegate),
			Threshold:        params.Threshold,
			MaxResults:       params.MaxResults,
			SampleIntervalMs: DefaultSampleIntervalMs,
		},
		Playback: PlaybackConfig{
			FFPlayPath:  "ffplay",
			FFProbePath: "ffprobe",
		},
		Google: GoogleConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "drive_token.json",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Detection.SampleIntervalMs == 0 {
		cfg.Detection.SampleIntervalMs = DefaultSampleIntervalMs
	}
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Params converts the detection section into validated detector parameters
func (c *Config) Params() (detection.Params, error) {
	params := detection.Params{
		Threshold:  c.Detection.Threshold,
		MaxResults: c.Detection.MaxResults,
		Delegate:   detection.Delegate(c.Detection.Delegate),
		Model:      detection.Model(c.Detection.Model),
	}
	if err := params.Validate(); err != nil {
		return detection.Params{}, err
	}
	return params, nil
}

// Validate checks the full configuration
func (c *Config) Validate() error {
	if c.Detection.SampleIntervalMs <= 0 {
		return &detection.ConfigurationError{
			Field:  "sample_interval_ms",
			Reason: fmt.Sprintf("must be positive, got %d", c.Detection.SampleIntervalMs),
		}
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	return nil
}
