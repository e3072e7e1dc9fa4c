package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	appvideo "video-translator/application/video"
	"video-translator/domain/media"

	"github.com/spf13/cobra"
)

var (
	extractSourcePath string
	extractOutputPath string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract the audio track of a video as WAV",
	Long: `Extract the audio track of a video file as 16-bit PCM WAV, using the
configured sample rate and channel count (16 kHz mono by default).

The output is saved to the configured audio directory as <video name>.wav
unless --output is given.

Example:
  video-translator extract-audio --source talk.mp4
  video-translator extract-audio --source talk.mp4 --output /tmp/talk.wav`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSourcePath, "source", "", "Path to source video file (required)")
	extractAudioCmd.Flags().StringVar(&extractOutputPath, "output", "", "Output WAV path (default <audio_directory>/<name>.wav)")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps, err := BuildDependencies(cmd.Context(), cfg, 0, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	return RunExtractAudioWithDependencies(
		cmd.Context(),
		deps.Extractor,
		deps.Intake,
		deps.Extract,
		deps.Files,
		cfg.Paths.AudioDirectory,
		extractSourcePath,
		extractOutputPath,
		os.Stdout,
	)
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	extractor media.AudioExtractor,
	intake *appvideo.IntakeService,
	extract *appvideo.ExtractService,
	writer appvideo.AudioWriter,
	outputDir string,
	sourcePath string,
	outputPath string,
	output OutputWriter,
) error {
	// Verify ffmpeg is available if extractor supports it
	if verifiable, ok := extractor.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	file, err := intake.Accept(ctx, sourcePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Extracting audio from %s...\n", file.Path)

	result, err := extract.ExtractToFile(ctx, file, writer, outputDir, outputPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Audio: %s\n", result.Audio)
	fmt.Fprintf(output, "Successfully created: %s\n", result.OutputPath)
	return nil
}
