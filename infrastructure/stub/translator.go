package stub

import (
	"context"

	"video-translator/domain/speech"
)

// Prefix is prepended to the source text by the placeholder translator
const Prefix = "Translated: "

// Translator is the default placeholder backend. It performs no translation.
type Translator struct {
	target string
}

// NewTranslator creates a placeholder translator for the target language
func NewTranslator(target string) *Translator {
	if target == "" {
		target = speech.TargetLanguage
	}
	return &Translator{target: target}
}

// Translate implements speech.Translator
func (t *Translator) Translate(ctx context.Context, transcript speech.Transcript) (speech.Translation, error) {
	if err := ctx.Err(); err != nil {
		return speech.Translation{}, err
	}
	return speech.Translation{
		Text:     Prefix + transcript.Text,
		Language: t.target,
		Source:   transcript,
	}, nil
}

var _ speech.Translator = (*Translator)(nil)
