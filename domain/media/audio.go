package media

import (
	"fmt"
	"time"
)

// AudioBuffer is the WAV-encoded audio track of one video
type AudioBuffer struct {
	WAV        []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// NewAudioBuffer wraps WAV bytes, reading the format from the header.
// A buffer without samples is rejected with ErrEmptyAudio.
func NewAudioBuffer(data []byte) (*AudioBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	pcm, err := DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	if len(pcm.Samples) == 0 {
		return nil, ErrEmptyAudio
	}

	return &AudioBuffer{
		WAV:        data,
		SampleRate: pcm.SampleRate,
		Channels:   pcm.Channels,
		Duration:   pcm.Duration(),
	}, nil
}

// PCM decodes the buffer into samples
func (b *AudioBuffer) PCM() (*PCM, error) {
	if b == nil || len(b.WAV) == 0 {
		return nil, ErrEmptyAudio
	}
	return DecodeWAV(b.WAV)
}

// String describes the buffer format for progress output
func (b *AudioBuffer) String() string {
	return fmt.Sprintf("%s, %d Hz, %d ch, %d bytes", b.Duration.Round(time.Millisecond), b.SampleRate, b.Channels, len(b.WAV))
}
