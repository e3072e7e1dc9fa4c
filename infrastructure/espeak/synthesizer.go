package espeak

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"video-translator/domain/speech"
)

// CommandRunner runs the espeak executable
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// wordsPerMinute is espeak's default speed, used for rate 1.0
const wordsPerMinute = 175

// maxAmplitude is espeak's loudest amplitude setting
const maxAmplitude = 200

// Synthesizer implements speech.Synthesizer with espeak-ng
type Synthesizer struct {
	espeakPath string
	runner     CommandRunner
	logger     *slog.Logger
}

// Option is a functional option for configuring Synthesizer
type Option func(*Synthesizer)

// WithEspeakPath sets a custom espeak executable path
func WithEspeakPath(path string) Option {
	return func(s *Synthesizer) {
		s.espeakPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(s *Synthesizer) {
		s.runner = runner
	}
}

// NewSynthesizer creates a new espeak-backed synthesizer. runner is
// normally an ffmpeg.ExecCommandRunner.
func NewSynthesizer(runner CommandRunner, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		espeakPath: "espeak-ng",
		runner:     runner,
		logger:     slog.With("component", "espeak"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Speak implements speech.Synthesizer. Cancelling ctx kills espeak and stops output.
func (s *Synthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	args := Args(u)
	s.logger.Debug("speaking", "voice", speech.LanguageBase(u.Language), "args", args[:len(args)-1])

	if err := s.runner.Run(ctx, s.espeakPath, args...); err != nil {
		return fmt.Errorf("espeak failed: %w", err)
	}
	return nil
}

// Args builds the espeak command line for an utterance
func Args(u speech.Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = speech.DefaultRate
	}
	voice := speech.LanguageBase(u.Language)
	if voice == "" {
		voice = speech.LanguageBase(speech.TargetLanguage)
	}

	return []string{
		"-v", voice,
		"-a", strconv.Itoa(int(math.Round(clamp(u.Volume) * maxAmplitude))),
		"-s", strconv.Itoa(int(math.Round(rate * wordsPerMinute))),
		"--", u.Text,
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

var _ speech.Synthesizer = (*Synthesizer)(nil)
