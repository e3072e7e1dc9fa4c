package media

import (
	"context"
	"time"
)

// AudioExtractor defines the interface for audio extraction operations
// This is a port that can be implemented by different infrastructure adapters
type AudioExtractor interface {
	// Extract renders the full audio track of the requested video into a WAV buffer
	Extract(ctx context.Context, req *ExtractionRequest) (*AudioBuffer, error)
}

// StreamInfo describes the streams found in a media container
type StreamInfo struct {
	HasVideo   bool
	HasAudio   bool
	AudioCodec string
	Duration   time.Duration
}

// Check requires both a video stream and an audio stream
func (i *StreamInfo) Check() error {
	if !i.HasVideo {
		return ErrNoVideoStream
	}
	if !i.HasAudio {
		return ErrNoAudioStream
	}
	return nil
}

// Prober inspects a media container without decoding it
type Prober interface {
	Probe(ctx context.Context, path string) (*StreamInfo, error)
}

// VideoValidator confirms that a file really decodes as video before its audio is extracted
type VideoValidator interface {
	Validate(ctx context.Context, file *VideoFile) error
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// TypeDetector resolves the media type of a file
type TypeDetector interface {
	DetectType(path string) (string, error)
}

// Player renders an audio buffer audibly at the given volume in [0,1]
type Player interface {
	Play(ctx context.Context, buf *AudioBuffer, volume float64) error
}
