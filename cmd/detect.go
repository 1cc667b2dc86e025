package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	appdetection "drone-detect/application/detection"
	"drone-detect/application/playback"
	appreport "drone-detect/application/report"
	"drone-detect/domain/detection"
	"drone-detect/domain/report"
	"drone-detect/domain/video"
	"drone-detect/infrastructure/capture"
	"drone-detect/infrastructure/config"
	infradetection "drone-detect/infrastructure/detection"
	"drone-detect/infrastructure/drive"
	"drone-detect/infrastructure/filesystem"
	"drone-detect/infrastructure/player"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	detectInputPath  string
	detectIntervalMs int64
	detectThreshold  float64
	detectMaxResults int
	detectModel      string
	detectDelegate   string
	detectNoPlayback bool
	detectReport     bool
	detectUpload     bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run detection over a video file and replay results with playback",
	Long: `Run the aerial-object detector over sampled frames of a video file,
then play the video back while publishing the detection result matching the
current elapsed time. Playback and detection start independently; publication
begins once the whole file has been analyzed.

The source video can be specified with --input, or the newest file in the
source directory will be used by default.

With --no-playback, the batch analysis runs alone and results are printed
per sampled frame.

Example:
  drone-detect detect --input flight.mp4 --threshold 0.5 --max-results 3

  drone-detect detect \
    --input "2026-08-21 14-03-22.mp4" \
    --model aerial-ssd \
    --delegate gpu \
    --report --upload`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVar(&detectInputPath, "input", "", "Path to source video file (defaults to newest in source directory)")
	detectCmd.Flags().Int64Var(&detectIntervalMs, "interval", 0, "Sampling/publication interval in milliseconds (default from config)")
	detectCmd.Flags().Float64Var(&detectThreshold, "threshold", -1, "Minimum confidence score, 0 to 0.8 (default from config)")
	detectCmd.Flags().IntVar(&detectMaxResults, "max-results", 0, "Maximum detections per frame, 1 to 10 (default from config)")
	detectCmd.Flags().StringVar(&detectModel, "model", "", "Detection model (default from config)")
	detectCmd.Flags().StringVar(&detectDelegate, "delegate", "", "Inference delegate: cpu or gpu (default from config)")
	detectCmd.Flags().BoolVar(&detectNoPlayback, "no-playback", false, "Run the batch analysis without playing the video")
	detectCmd.Flags().BoolVar(&detectReport, "report", false, "Write a JSON detection report")
	detectCmd.Flags().BoolVar(&detectUpload, "upload", false, "Upload the report to Google Drive (implies --report)")
}

// DetectInput contains the input parameters for the detect command
type DetectInput struct {
	InputPath  string
	NoPlayback bool
	Report     bool
	Upload     bool
}

// FileFinder interface for finding files (allows testing)
type FileFinder interface {
	FindNewestFile(dir, ext string) (string, error)
}

// ProductionFileFinder implements FileFinder for production use
type ProductionFileFinder struct{}

// FindNewestFile returns the newest video in dir, judged by filename
// (recordings are named by date)
func (f *ProductionFileFinder) FindNewestFile(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ext {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no video files found in %s", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i] > files[j]
	})
	return files[0], nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyDetectFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	detector, err := infradetection.NewDNNDetector(params, cfg.Paths.ModelsDirectory)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer detector.Close()

	ffplayer := player.NewFFPlayer(
		player.WithFFPlayPath(cfg.Playback.FFPlayPath),
		player.WithFFProbePath(cfg.Playback.FFProbePath),
	)
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if !detectNoPlayback {
		if err := ffplayer.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("playback verification failed: %w", err)
		}
	}

	var uploader report.Uploader
	if detectUpload {
		client, err := drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
			CredentialsFile: cfg.Google.CredentialsFile,
			TokenFile:       cfg.Google.TokenFile,
		})
		if err != nil {
			return fmt.Errorf("failed to create Google Drive client: %w", err)
		}
		uploader = client
	}

	input := DetectInput{
		InputPath:  detectInputPath,
		NoPlayback: detectNoPlayback,
		Report:     detectReport || detectUpload,
		Upload:     detectUpload,
	}

	return RunDetectWithDependencies(
		ctx,
		cfg,
		capture.NewVideoSource(),
		detector,
		ffplayer,
		filesystem.NewChecker(),
		&ProductionFileFinder{},
		uploader,
		input,
		os.Stdout,
	)
}

// applyDetectFlags overlays command-line flags onto the loaded config
func applyDetectFlags(cfg *config.Config) {
	if detectIntervalMs != 0 {
		cfg.Detection.SampleIntervalMs = detectIntervalMs
	}
	if detectThreshold >= 0 {
		cfg.Detection.Threshold = detectThreshold
	}
	if detectMaxResults != 0 {
		cfg.Detection.MaxResults = detectMaxResults
	}
	if detectModel != "" {
		cfg.Detection.Model = detectModel
	}
	if detectDelegate != "" {
		cfg.Detection.Delegate = detectDelegate
	}
}

// RunDetectWithDependencies runs the detect command with injected
// dependencies (for testing)
func RunDetectWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	frames video.FrameSource,
	detector detection.Detector,
	videoPlayer video.Player,
	fileChecker video.FileChecker,
	fileFinder FileFinder,
	uploader report.Uploader,
	input DetectInput,
	output io.Writer,
) error {
	source := input.InputPath
	if source == "" {
		newest, err := fileFinder.FindNewestFile(cfg.Paths.SourceDirectory, ".mp4")
		if err != nil {
			return err
		}
		source = newest
		fmt.Fprintf(output, "Using newest recording: %s\n", source)
	}
	if !fileChecker.Exists(source) {
		return fmt.Errorf("source video does not exist: %s", source)
	}

	intervalMs := cfg.Detection.SampleIntervalMs
	batch := appdetection.NewService(frames, detector, intervalMs, output)

	var outcome *detection.BatchOutcome
	var sessionID string
	if input.NoPlayback {
		var err error
		outcome, err = batch.Run(ctx, source)
		if err != nil {
			return err
		}
		sessionID = uuid.NewString()
		printOutcome(output, outcome)
	} else {
		// Keep a handle on the outcome so a report can be written after the
		// session finishes without re-running the pass.
		runner := &cachedRunner{runner: batch}
		session := playback.NewSession(
			videoPlayer,
			runner,
			&consoleSink{output: output},
			time.Duration(intervalMs)*time.Millisecond,
			playback.WithOutput(output),
		)
		defer session.Close()
		sessionID = session.ID()

		if err := session.Start(ctx, source); err != nil {
			return err
		}
		select {
		case <-session.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := session.Err(); err != nil {
			return err
		}
		outcome = runner.outcome
	}

	if !input.Report || outcome == nil {
		return nil
	}

	opts := []appreport.ServiceOption{}
	if input.Upload && uploader != nil {
		opts = append(opts, appreport.WithUploader(uploader, cfg.Google.ReportsFolderID))
	}
	reports := appreport.NewService(cfg.Paths.ReportsDirectory, output, opts...)
	_, err := reports.Write(ctx, appreport.Input{
		SessionID:        sessionID,
		Source:           source,
		Model:            detection.Model(cfg.Detection.Model),
		SampleIntervalMs: intervalMs,
		Outcome:          outcome,
	})
	return err
}

// cachedRunner wraps a batch runner and remembers its last outcome
type cachedRunner struct {
	runner  playback.BatchRunner
	outcome *detection.BatchOutcome
}

func (c *cachedRunner) Run(ctx context.Context, source string) (*detection.BatchOutcome, error) {
	outcome, err := c.runner.Run(ctx, source)
	c.outcome = outcome
	return outcome, err
}

// printOutcome lists per-frame results for --no-playback runs
func printOutcome(output io.Writer, outcome *detection.BatchOutcome) {
	for _, res := range outcome.Results {
		if len(res.Detections) == 0 {
			fmt.Fprintf(output, "[%6.2fs] no objects\n", float64(res.TimestampMs)/1000)
			continue
		}
		for _, d := range res.Detections {
			fmt.Fprintf(output, "[%6.2fs] %s %.2f at (%d,%d) %dx%d\n",
				float64(res.TimestampMs)/1000, d.Label, d.Score,
				d.Box.Min.X, d.Box.Min.Y, d.Box.Dx(), d.Box.Dy())
		}
	}
}

// consoleSink renders published results as overlay lines on the terminal
type consoleSink struct {
	output io.Writer
}

func (s *consoleSink) OnResultPublished(result detection.DetectionResult, inferenceTimeMs int64) {
	if len(result.Detections) == 0 {
		fmt.Fprintf(s.output, "[%6.2fs] no objects (inference %dms)\n",
			float64(result.TimestampMs)/1000, inferenceTimeMs)
		return
	}
	for _, d := range result.Detections {
		fmt.Fprintf(s.output, "[%6.2fs] %s %.2f at (%d,%d) %dx%d (inference %dms)\n",
			float64(result.TimestampMs)/1000, d.Label, d.Score,
			d.Box.Min.X, d.Box.Min.Y, d.Box.Dx(), d.Box.Dy(), inferenceTimeMs)
	}
}

func (s *consoleSink) OnNotReady() {
	fmt.Fprintln(s.output, "Waiting for analysis to complete...")
}

func (s *consoleSink) OnSessionFailed(err error) {
	fmt.Fprintf(s.output, "Session failed: %v\n", err)
}
