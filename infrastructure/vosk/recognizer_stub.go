//go:build !vosk

package vosk

import (
	"context"
	"errors"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// ErrUnavailable is returned when the binary was built without Vosk
var ErrUnavailable = errors.New("vosk recognition not available: build with '-tags=vosk' and install libvosk")

// Recognizer is a stub when libvosk is not available
type Recognizer struct{}

// Available reports whether the binary was built with Vosk support
func Available() bool {
	return false
}

// NewRecognizer returns ErrUnavailable (requires building with -tags=vosk)
func NewRecognizer(modelPath, language string) (*Recognizer, error) {
	return nil, ErrUnavailable
}

// Recognize returns ErrUnavailable
func (r *Recognizer) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	return speech.Transcript{}, ErrUnavailable
}

// Close is a no-op in stub mode
func (r *Recognizer) Close() {}

var _ speech.Recognizer = (*Recognizer)(nil)
