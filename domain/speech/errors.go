package speech

import "errors"

var (
	// ErrRecognition is the error kind for every failure of the recognition stage
	ErrRecognition = errors.New("speech recognition failed")

	// ErrNoSpeech is returned when the audio contains no recognizable speech
	ErrNoSpeech = errors.New("no speech detected")

	// ErrTranslation is the error kind for every failure of the translation stage
	ErrTranslation = errors.New("translation failed")

	// ErrUnsupportedLanguage is returned when a backend cannot serve the language pair
	ErrUnsupportedLanguage = errors.New("unsupported language pair")

	// ErrSynthesis is the error kind for speech synthesis failures; never fatal to a run
	ErrSynthesis = errors.New("speech synthesis failed")
)

// NoSpeech returns an error matching both ErrNoSpeech and ErrRecognition
func NoSpeech(detail string) error {
	return &noSpeechError{detail: detail}
}

type noSpeechError struct {
	detail string
}

func (e *noSpeechError) Error() string {
	if e.detail == "" {
		return ErrNoSpeech.Error()
	}
	return ErrNoSpeech.Error() + ": " + e.detail
}

func (e *noSpeechError) Is(target error) bool {
	return target == ErrNoSpeech || target == ErrRecognition
}
