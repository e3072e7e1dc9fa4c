package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"video-translator/application/pipeline"
	"video-translator/domain/media"
	domsession "video-translator/domain/session"

	"github.com/spf13/cobra"
)

var (
	translateNoAudio        bool
	translateVolume         float64
	translateOriginalVolume float64
)

var translateCmd = &cobra.Command{
	Use:   "translate [files...]",
	Short: "Translate the speech in one or more video files",
	Long: `Run the translation pipeline on each video file in turn:
1. Extract the audio track
2. Recognize the English speech
3. Translate the transcript
4. Speak the translation

Files that are not videos are skipped. When no file is given, the newest
video in the configured source directory is used.

Example:
  video-translator translate talk.mp4
  video-translator translate --no-audio *.mp4
  video-translator translate --volume 0.5 talk.mp4`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().BoolVar(&translateNoAudio, "no-audio", false, "Do not speak the translations")
	translateCmd.Flags().Float64Var(&translateVolume, "volume", -1, "Translated speech volume 0-1 (default from config)")
	translateCmd.Flags().Float64Var(&translateOriginalVolume, "original-volume", -1, "Original audio volume 0-1 (default from config)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, err := BuildDependencies(ctx, cfg, NeedAll, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	files := args
	if len(files) == 0 {
		found, err := deps.Finder.ListVideos(cfg.Paths.SourceDirectory)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no video files found in %s", cfg.Paths.SourceDirectory)
		}
		files = found[:1]
	}

	session := NewSession(cfg, deps.Synthesizer)
	if translateNoAudio {
		session.SetAudioEnabled(false)
	}
	if translateVolume >= 0 {
		if err := session.SetTranslatedVolume(translateVolume); err != nil {
			return fmt.Errorf("--volume: %w", err)
		}
	}
	if translateOriginalVolume >= 0 {
		if err := session.SetOriginalVolume(translateOriginalVolume); err != nil {
			return fmt.Errorf("--original-volume: %w", err)
		}
	}

	svc := NewPipeline(cfg, deps, session, os.Stdout)
	return RunTranslateWithDependencies(ctx, svc, files, os.Stdout)
}

// RunTranslateWithDependencies runs the pipeline on each file in order and
// prints the resulting history (for testing)
func RunTranslateWithDependencies(ctx context.Context, svc *pipeline.Service, files []string, output OutputWriter) error {
	session := svc.Session()
	var attempted, failed int

	for _, path := range files {
		_, err := svc.Run(ctx, path)
		if errors.Is(err, media.ErrNotVideo) {
			continue
		}
		attempted++

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			return err
		default:
			failed++
			var stageErr *pipeline.StageError
			if !errors.As(err, &stageErr) {
				fmt.Fprintf(output, "Error: %s: %v\n\n", filepath.Base(path), err)
			}
			continue
		}

		// let the utterance finish before the next run starts speaking
		if err := session.WaitSpeech(ctx); err != nil {
			return err
		}
	}

	printHistory(output, session.History())

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, attempted)
	}
	return nil
}

func printHistory(output OutputWriter, entries []domsession.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(output, "No translations recorded.")
		return
	}

	fmt.Fprintf(output, "History (%d):\n", len(entries))
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TIME\tSOURCE\tORIGINAL\tTRANSLATED")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			e.Timestamp.Format("15:04:05"),
			filepath.Base(e.SourceFile),
			e.Original.Text,
			e.Translated.Text,
		)
	}
	w.Flush()
}
