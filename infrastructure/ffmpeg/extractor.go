package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"video-translator/domain/media"
)

// Extractor implements media.AudioExtractor using ffmpeg
type Extractor struct {
	ffmpegPath string
	workDir    string
	runner     CommandRunner
	prober     media.Prober
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithExtractorFFmpegPath sets a custom ffmpeg executable path
func WithExtractorFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		e.ffmpegPath = path
	}
}

// WithExtractorCommandRunner sets a custom command runner (for testing)
func WithExtractorCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// WithWorkDirectory sets where intermediate WAV files are written
func WithWorkDirectory(dir string) ExtractorOption {
	return func(e *Extractor) {
		e.workDir = dir
	}
}

// WithProber checks for a video stream and an audio stream before decoding
func WithProber(p media.Prober) ExtractorOption {
	return func(e *Extractor) {
		e.prober = p
	}
}

// NewExtractor creates a new FFmpeg-based audio extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract implements media.AudioExtractor. ffmpeg decodes the whole audio
// track, so the buffer is complete when the process exits.
func (e *Extractor) Extract(ctx context.Context, req *media.ExtractionRequest) (*media.AudioBuffer, error) {
	if e.prober != nil {
		info, err := e.prober.Probe(ctx, req.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
		}
		if err := info.Check(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", media.ErrExtraction, req.Source.Path, err)
		}
	}

	tmp, err := os.CreateTemp(e.workDir, req.Source.BaseName()+"-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create work file: %w", media.ErrExtraction, err)
	}
	outputPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outputPath)

	args := []string{
		"-loglevel", "error",
		"-i", req.Source.Path,
		"-vn", // No video
		"-ac", strconv.Itoa(req.Channels),
		"-ar", strconv.Itoa(req.SampleRate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"-y", // Overwrite the work file
		outputPath,
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %w", media.ErrExtraction, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
	}

	buf, err := media.NewAudioBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
	}
	return buf, nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Extractor implements media.AudioExtractor
var _ media.AudioExtractor = (*Extractor)(nil)
