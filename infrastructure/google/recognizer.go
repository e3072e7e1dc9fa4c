package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// SpeechService defines the Cloud Speech-to-Text operations used
// This allows mocking the Google API in tests
type SpeechService interface {
	Recognize(ctx context.Context, req *speechapi.RecognizeRequest) (*speechapi.RecognizeResponse, error)
}

// GoogleSpeechService is the production implementation using the Speech v1 API
type GoogleSpeechService struct {
	service *speechapi.Service
}

// Recognize runs synchronous recognition
func (s *GoogleSpeechService) Recognize(ctx context.Context, req *speechapi.RecognizeRequest) (*speechapi.RecognizeResponse, error) {
	return s.service.Speech.Recognize(req).Context(ctx).Do()
}

// SpeechRecognizer implements speech.Recognizer with Google Cloud Speech-to-Text
type SpeechRecognizer struct {
	service  SpeechService
	language string
}

// SpeechRecognizerOption is a functional option for configuring SpeechRecognizer
type SpeechRecognizerOption func(*SpeechRecognizer)

// WithSpeechService sets a custom speech service (for testing)
func WithSpeechService(svc SpeechService) SpeechRecognizerOption {
	return func(r *SpeechRecognizer) {
		r.service = svc
	}
}

// WithRecognitionLanguage sets the source language
func WithRecognitionLanguage(language string) SpeechRecognizerOption {
	return func(r *SpeechRecognizer) {
		r.language = language
	}
}

// NewSpeechRecognizer creates a new Speech-to-Text client.
// If no service option is provided, it authenticates with auth.
func NewSpeechRecognizer(ctx context.Context, auth AuthConfig, opts ...SpeechRecognizerOption) (*SpeechRecognizer, error) {
	r := &SpeechRecognizer{language: speech.SourceLanguage}

	for _, opt := range opts {
		opt(r)
	}

	if r.service == nil {
		client, err := HTTPClient(ctx, auth)
		if err != nil {
			return nil, err
		}
		srv, err := speechapi.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to create speech service: %w", err)
		}
		r.service = &GoogleSpeechService{service: srv}
	}

	return r, nil
}

// Recognize implements speech.Recognizer. Only the first result is used.
func (r *SpeechRecognizer) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	pcm, err := audio.PCM()
	if err != nil {
		return speech.Transcript{}, fmt.Errorf("%w: %w", speech.ErrRecognition, err)
	}

	req := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			Encoding:          "LINEAR16",
			SampleRateHertz:   int64(pcm.SampleRate),
			AudioChannelCount: int64(pcm.Channels),
			LanguageCode:      r.language,
			MaxAlternatives:   1,
		},
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(pcm.Int16LE()),
		},
	}

	resp, err := r.service.Recognize(ctx, req)
	if err != nil {
		return speech.Transcript{}, classify(speech.ErrRecognition, err)
	}

	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			if text := strings.TrimSpace(alt.Transcript); text != "" {
				return speech.NewTranscript(text, r.language)
			}
		}
	}

	return speech.Transcript{}, speech.NoSpeech("no results from speech-to-text")
}

var _ speech.Recognizer = (*SpeechRecognizer)(nil)
