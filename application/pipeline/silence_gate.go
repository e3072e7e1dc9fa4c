package pipeline

import (
	"context"
	"fmt"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// SilenceGate fails recognition with no speech detected when the audio
// energy is below a threshold, without calling the wrapped recognizer.
type SilenceGate struct {
	next      speech.Recognizer
	threshold float64
}

var _ speech.Recognizer = (*SilenceGate)(nil)

// NewSilenceGate wraps next. threshold is a normalized RMS level; 0 disables the gate.
func NewSilenceGate(next speech.Recognizer, threshold float64) *SilenceGate {
	return &SilenceGate{next: next, threshold: threshold}
}

// Recognize implements speech.Recognizer
func (g *SilenceGate) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	if g.threshold > 0 {
		pcm, err := audio.PCM()
		if err != nil {
			return speech.Transcript{}, fmt.Errorf("%w: %w", speech.ErrRecognition, err)
		}
		if pcm.IsSilent(g.threshold) {
			return speech.Transcript{}, speech.NoSpeech(fmt.Sprintf("audio level %.4f below %.4f", pcm.RMS(), g.threshold))
		}
	}
	return g.next.Recognize(ctx, audio)
}
