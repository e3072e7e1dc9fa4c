package media

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultSampleRate is the sample rate speech engines expect
	DefaultSampleRate = 16000

	// DefaultChannels is mono
	DefaultChannels = 1
)

// ExtractionRequest represents a request to extract the audio track of a video
type ExtractionRequest struct {
	Source     *VideoFile
	SampleRate int
	Channels   int
}

// NewExtractionRequest creates a new ExtractionRequest with validation
func NewExtractionRequest(source *VideoFile, sampleRate, channels int) (*ExtractionRequest, error) {
	if source == nil || source.Path == "" {
		return nil, fmt.Errorf("source video is required")
	}

	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if sampleRate < 8000 || sampleRate > 48000 {
		return nil, fmt.Errorf("sample rate %d out of range (8000-48000)", sampleRate)
	}

	if channels == 0 {
		channels = DefaultChannels
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2, got %d", channels)
	}

	return &ExtractionRequest{
		Source:     source,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}

// OutputFilename returns the WAV filename derived from the source video name
func (r *ExtractionRequest) OutputFilename() string {
	return r.Source.BaseName() + ".wav"
}

// OutputPath returns the full output path including the directory
func (r *ExtractionRequest) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, r.OutputFilename())
}
