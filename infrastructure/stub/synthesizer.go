package stub

import (
	"context"
	"log/slog"
	"sync"

	"video-translator/domain/speech"
)

// Synthesizer is the "none" speech backend. It produces no sound and keeps
// the utterances it was asked to speak.
type Synthesizer struct {
	mu     sync.Mutex
	spoken []speech.Utterance
	logger *slog.Logger
}

// NewSynthesizer creates a silent synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{logger: slog.With("component", "stub-synthesizer")}
}

// Speak implements speech.Synthesizer
func (s *Synthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.mu.Unlock()

	s.logger.Debug("utterance discarded", "text", u.Text, "volume", u.Volume)
	return nil
}

// Spoken returns the utterances received so far
func (s *Synthesizer) Spoken() []speech.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]speech.Utterance(nil), s.spoken...)
}

var _ speech.Synthesizer = (*Synthesizer)(nil)
