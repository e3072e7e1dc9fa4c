package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"video-translator/infrastructure/logging"
	"video-translator/presentation/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var sessionLogFile string

var sessionCmd = &cobra.Command{
	Use:   "session [dir]",
	Short: "Open the interactive translation session",
	Long: `Open a terminal session listing the videos in a directory (default
paths.source_directory). Select a video and press Enter to translate it.

Keys:
  Enter    translate the selected video
  s        stop the running translation and any speech
  a/Space  toggle audio output
  +/-      translated volume up/down
  ]/[      original volume up/down
  r        reload the file list
  q        quit

Example:
  video-translator session ~/Videos --log-file session.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().StringVar(&sessionLogFile, "log-file", "", "Write diagnostics to this file (default: discarded)")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	dir := cfg.Paths.SourceDirectory
	if len(args) == 1 {
		dir = args[0]
	}

	// the terminal belongs to the UI, so diagnostics go to a file or nowhere
	var logOut io.Writer = io.Discard
	if sessionLogFile != "" {
		f, err := os.OpenFile(sessionLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if err := logging.Setup(cfg.Logging, logOut); err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, err := BuildDependencies(ctx, cfg, NeedAll, os.Stdout)
	if err != nil {
		return err
	}
	defer deps.Close()

	session := NewSession(cfg, deps.Synthesizer)
	svc := NewPipeline(cfg, deps, session, io.Discard)

	return RunSessionWithDependencies(ctx, tui.New(ctx, svc, session, deps.Finder, dir))
}

// RunSessionWithDependencies runs the terminal UI until the user quits
func RunSessionWithDependencies(ctx context.Context, model tui.Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("session ended with error: %w", err)
	}
	slog.Info("session closed")
	return nil
}
