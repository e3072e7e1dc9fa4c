package speech

import (
	"context"
	"strings"

	"video-translator/domain/media"
)

const (
	// SourceLanguage is the fixed recognition language
	SourceLanguage = "en-US"

	// TargetLanguage is the fixed translation and voice language
	TargetLanguage = "es-ES"

	// DefaultRate is the normal speaking rate
	DefaultRate = 1.0
)

// Transcript is recognized source-language text for one audio buffer
type Transcript struct {
	Text     string
	Language string
}

// NewTranscript trims recognizer output; whitespace-only text counts as no speech
func NewTranscript(text, language string) (Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Transcript{}, NoSpeech("")
	}
	return Transcript{Text: text, Language: language}, nil
}

// Translation is target-language text derived from exactly one Transcript
type Translation struct {
	Text     string
	Language string
	Source   Transcript
}

// Utterance is one request to the synthesizer
type Utterance struct {
	Text     string
	Language string
	Volume   float64
	Rate     float64
}

// Recognizer turns an audio buffer into a single finalized transcript
type Recognizer interface {
	Recognize(ctx context.Context, audio *media.AudioBuffer) (Transcript, error)
}

// Translator turns a transcript into target-language text
type Translator interface {
	Translate(ctx context.Context, transcript Transcript) (Translation, error)
}

// Synthesizer speaks an utterance, blocking until playback ends or ctx is cancelled
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// LanguageBase returns the primary subtag of a BCP 47 tag ("es-ES" -> "es")
func LanguageBase(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
