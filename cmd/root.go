package cmd

import (
	"fmt"
	"os"

	"drone-detect/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "drone-detect",
	Short: "Detect aerial objects in video files and replay results with playback",
	Long: `drone-detect runs an aerial-object detector (drones, aircraft, birds)
over sampled frames of a video file and replays the detection results in
step with video playback:

  - Sample frames at a fixed interval and run batched inference
  - Play the video back while publishing the matching result for "now"
  - Write detection reports, optionally uploaded to Google Drive

Example:
  drone-detect detect --input flight.mp4 --model dronenet-lite --threshold 0.5`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config fall back to defaults
		cfg = nil
	}
}

// GetConfig returns the loaded configuration, or defaults when no config
// file was found
func GetConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}
