//go:build vosk

package vosk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

var setLogLevelOnce sync.Once

// Recognizer implements speech.Recognizer with an offline Vosk model
type Recognizer struct {
	mu       sync.Mutex
	model    *vosk.VoskModel
	language string
	logger   *slog.Logger
}

// Available reports whether the binary was built with Vosk support
func Available() bool {
	return true
}

// NewRecognizer loads the model at modelPath
func NewRecognizer(modelPath, language string) (*Recognizer, error) {
	setLogLevelOnce.Do(func() {
		vosk.SetLogLevel(-1) // suppress vosk's own logs
	})

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("vosk model directory not found: %s", modelPath)
	}

	logger := slog.With("component", "vosk_recognizer")
	logger.Info("loading vosk model", "path", modelPath)
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load vosk model: %w", err)
	}

	return &Recognizer{
		model:    model,
		language: language,
		logger:   logger,
	}, nil
}

// Recognize implements speech.Recognizer. Only the first finalized result is used.
func (r *Recognizer) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	pcm, err := audio.PCM()
	if err != nil {
		return speech.Transcript{}, fmt.Errorf("%w: %w", speech.ErrRecognition, err)
	}
	if pcm.Channels != 1 {
		return speech.Transcript{}, fmt.Errorf("%w: vosk needs mono audio, got %d channels", speech.ErrRecognition, pcm.Channels)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model == nil {
		return speech.Transcript{}, fmt.Errorf("%w: recognizer closed", speech.ErrRecognition)
	}

	rec, err := vosk.NewRecognizer(r.model, float64(pcm.SampleRate))
	if err != nil {
		return speech.Transcript{}, fmt.Errorf("%w: %w", speech.ErrRecognition, err)
	}
	defer rec.Free()
	rec.SetWords(0) // no word-level timing

	text := ""
	for _, chunk := range chunks(pcm.Int16LE(), chunkBytes) {
		if err := ctx.Err(); err != nil {
			return speech.Transcript{}, err
		}
		if rec.AcceptWaveform(chunk) != 0 {
			resultJSON := rec.Result()
			r.logger.Debug("vosk final result", "json", resultJSON)
			if text = parseText(resultJSON); text != "" {
				break
			}
		}
	}
	if text == "" {
		text = parseText(rec.FinalResult())
	}

	if text == "" {
		return speech.Transcript{}, speech.NoSpeech("recognizer returned no text")
	}
	return speech.NewTranscript(text, r.language)
}

// Close releases the model
func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	r.logger.Debug("recognizer closed")
}

var _ speech.Recognizer = (*Recognizer)(nil)
