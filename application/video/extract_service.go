package video

import (
	"context"
	"errors"
	"fmt"

	"video-translator/domain/media"
)

// AudioWriter persists an extracted WAV
type AudioWriter interface {
	WriteFile(path string, data []byte) error
}

// ExtractResult contains the result of an audio extraction operation
type ExtractResult struct {
	Audio      *media.AudioBuffer
	OutputPath string
}

// ExtractService coordinates audio extraction operations
type ExtractService struct {
	extractor  media.AudioExtractor
	validator  media.VideoValidator
	sampleRate int
	channels   int
}

// ExtractOption is a functional option for configuring ExtractService
type ExtractOption func(*ExtractService)

// WithValidator checks that the file decodes as video before extracting
func WithValidator(v media.VideoValidator) ExtractOption {
	return func(s *ExtractService) {
		s.validator = v
	}
}

// NewExtractService creates a new ExtractService. Zero sampleRate or channels
// select the speech defaults.
func NewExtractService(extractor media.AudioExtractor, sampleRate, channels int, opts ...ExtractOption) *ExtractService {
	s := &ExtractService{
		extractor:  extractor,
		sampleRate: sampleRate,
		channels:   channels,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Extract renders the audio track of file. Every failure matches ErrExtraction.
func (s *ExtractService) Extract(ctx context.Context, file *media.VideoFile) (*media.AudioBuffer, error) {
	req, err := media.NewExtractionRequest(file, s.sampleRate, s.channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
	}

	if s.validator != nil {
		if err := s.validator.Validate(ctx, file); err != nil {
			return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
		}
	}

	buf, err := s.extractor.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, media.ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", media.ErrExtraction, err)
	}

	return buf, nil
}

// ExtractToFile extracts the audio of file and writes it under outputDir,
// or to outputPath when it is set.
func (s *ExtractService) ExtractToFile(ctx context.Context, file *media.VideoFile, writer AudioWriter, outputDir, outputPath string) (*ExtractResult, error) {
	buf, err := s.Extract(ctx, file)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		req, err := media.NewExtractionRequest(file, s.sampleRate, s.channels)
		if err != nil {
			return nil, err
		}
		outputPath = req.OutputPath(outputDir)
	}

	if err := writer.WriteFile(outputPath, buf.WAV); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return &ExtractResult{
		Audio:      buf,
		OutputPath: outputPath,
	}, nil
}
