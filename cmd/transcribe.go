package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	appvideo "video-translator/application/video"
	"video-translator/domain/speech"

	"github.com/spf13/cobra"
)

var transcribeSourcePath string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Extract and recognize the speech in a video without translating it",
	Long: `Run the first two pipeline stages on a video file and print the transcript.
Useful to check the recognizer on its own.

Example:
  video-translator transcribe --source talk.mp4`,
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeSourcePath, "source", "", "Path to source video file (required)")
	transcribeCmd.MarkFlagRequired("source")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps, err := BuildDependencies(cmd.Context(), cfg, NeedRecognizer, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	return RunTranscribeWithDependencies(cmd.Context(), deps.Intake, deps.Extract, deps.Recognizer, transcribeSourcePath, os.Stdout)
}

// RunTranscribeWithDependencies runs the transcribe command with injected dependencies (for testing)
func RunTranscribeWithDependencies(
	ctx context.Context,
	intake *appvideo.IntakeService,
	extract *appvideo.ExtractService,
	recognizer speech.Recognizer,
	sourcePath string,
	output OutputWriter,
) error {
	file, err := intake.Accept(ctx, sourcePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "[1/2] Extracting audio...\n")
	audio, err := extract.Extract(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "      Audio: %s\n\n", audio)

	fmt.Fprintf(output, "[2/2] Recognizing speech...\n")
	transcript, err := recognizer.Recognize(ctx, audio)
	if err != nil {
		if errors.Is(err, speech.ErrRecognition) {
			return err
		}
		return fmt.Errorf("%w: %w", speech.ErrRecognition, err)
	}
	language := transcript.Language
	if language == "" {
		language = speech.SourceLanguage
	}
	transcript, err = speech.NewTranscript(transcript.Text, language)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "      Transcript (%s): %s\n", transcript.Language, transcript.Text)
	return nil
}
