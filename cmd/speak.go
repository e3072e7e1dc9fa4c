package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	domsession "video-translator/domain/session"
	"video-translator/domain/speech"

	"github.com/spf13/cobra"
)

var (
	speakText   string
	speakVolume float64
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Speak Spanish text with the configured synthesizer",
	Long: `Synthesize target-language text with the configured engine. Useful to
check the speech output and volume without running the whole pipeline.

Example:
  video-translator speak --text "Buenos días"
  video-translator speak --text "Buenos días" --volume 0.3`,
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringVar(&speakText, "text", "", "Text to speak (required)")
	speakCmd.Flags().Float64Var(&speakVolume, "volume", -1, "Volume 0-1 (default playback.translated_volume)")
	speakCmd.MarkFlagRequired("text")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	volume := speakVolume
	if volume < 0 {
		volume = cfg.Playback.TranslatedVolume
	}

	deps, err := BuildDependencies(cmd.Context(), cfg, NeedSynthesizer, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	return RunSpeakWithDependencies(cmd.Context(), deps.Synthesizer, speakText, cfg.Languages.Target, volume, os.Stdout)
}

// RunSpeakWithDependencies runs the speak command with injected dependencies (for testing)
func RunSpeakWithDependencies(
	ctx context.Context,
	synth speech.Synthesizer,
	text string,
	language string,
	volume float64,
	output OutputWriter,
) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("--text must not be empty")
	}
	if err := domsession.ValidateVolume(volume); err != nil {
		return fmt.Errorf("--volume: %w", err)
	}

	fmt.Fprintf(output, "Speaking (%s, volume %.2f): %s\n", language, volume, text)

	err := synth.Speak(ctx, speech.Utterance{
		Text:     text,
		Language: language,
		Volume:   volume,
		Rate:     speech.DefaultRate,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", speech.ErrSynthesis, err)
	}
	return nil
}
