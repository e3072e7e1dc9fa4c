package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"video-translator/infrastructure/config"
	"video-translator/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	cfg       *config.Config
	cfgErr    error
	logFormat string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "video-translator",
	Short: "Translate the speech in a video file from English to Spanish",
	Long: `video-translator runs a local video through a translation pipeline:

  - Extract the audio track as 16 kHz mono WAV
  - Recognize the English speech
  - Translate the transcript to Spanish
  - Speak the translation

Example:
  video-translator translate talk.mp4
  video-translator session ~/Videos`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging.format (text, json)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	cfg, cfgErr = config.Load(cfgFile)
	if errors.Is(cfgErr, fs.ErrNotExist) {
		// every key has a default, so a missing file is not an error
		cfg, cfgErr = config.Default(), nil
	}
	if cfgErr != nil {
		cfg = nil
		return
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := logging.Setup(cfg.Logging, os.Stderr); err != nil {
		cfgErr = err
		cfg = nil
	}
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr == nil {
			cfgErr = fmt.Errorf("configuration not loaded")
		}
		return nil, cfgErr
	}
	return cfg, nil
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
