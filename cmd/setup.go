package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"drone-detect/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with directory paths, detection parameters, and Google Drive settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to drone-detect setup!")
	fmt.Println()

	cfg := config.Default()

	// Paths section
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	// Detection section
	if err := promptDetection(prompter, cfg); err != nil {
		return err
	}

	// Google section
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	source, err := prompter.Input("Where are recordings stored?", cfg.Paths.SourceDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if source == "" {
		return fmt.Errorf("source directory is required")
	}
	cfg.Paths.SourceDirectory = source

	models, err := prompter.Input("Where are the detection models stored?", cfg.Paths.ModelsDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if models == "" {
		return fmt.Errorf("models directory is required")
	}
	cfg.Paths.ModelsDirectory = models

	reports, err := prompter.Input("Where should detection reports go?", cfg.Paths.ReportsDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if reports == "" {
		return fmt.Errorf("reports directory is required")
	}
	cfg.Paths.ReportsDirectory = reports

	return nil
}

func promptDetection(prompter Prompter, cfg *config.Config) error {
	model, err := prompter.Select("Detection model?", modelNames(), cfg.Detection.Model)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Detection.Model = model

	delegate, err := prompter.Select("Inference delegate?", []string{"cpu", "gpu"}, cfg.Detection.Delegate)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Detection.Delegate = delegate

	threshold, err := prompter.Input("Minimum confidence score (0 to 0.8)?",
		strconv.FormatFloat(cfg.Detection.Threshold, 'g', -1, 64))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if threshold != "" {
		value, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			return fmt.Errorf("invalid threshold %q", threshold)
		}
		cfg.Detection.Threshold = value
	}

	maxResults, err := prompter.Input("Maximum detections per frame (1 to 10)?",
		strconv.Itoa(cfg.Detection.MaxResults))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if maxResults != "" {
		value, err := strconv.Atoi(maxResults)
		if err != nil {
			return fmt.Errorf("invalid max results %q", maxResults)
		}
		cfg.Detection.MaxResults = value
	}

	interval, err := prompter.Input("Sampling interval in milliseconds?",
		strconv.FormatInt(cfg.Detection.SampleIntervalMs, 10))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if interval != "" {
		value, err := strconv.ParseInt(interval, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid interval %q", interval)
		}
		cfg.Detection.SampleIntervalMs = value
	}

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	upload, err := prompter.Confirm("Upload detection reports to Google Drive?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Upload.Enabled = upload
	if !upload {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID for reports?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.ReportsFolderID = folder

	return nil
}
