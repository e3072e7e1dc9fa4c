package google

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// synthesisSampleRate is the LINEAR16 rate requested from text-to-speech
const synthesisSampleRate = 24000

// TextToSpeechService defines the Cloud Text-to-Speech operations used
// This allows mocking the Google API in tests
type TextToSpeechService interface {
	Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error)
}

// GoogleTextToSpeechService is the production implementation using the Text-to-Speech v1 API
type GoogleTextToSpeechService struct {
	service *texttospeech.Service
}

// Synthesize renders text to audio
func (s *GoogleTextToSpeechService) Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error) {
	return s.service.Text.Synthesize(req).Context(ctx).Do()
}

// Synthesizer implements speech.Synthesizer with Google Cloud Text-to-Speech,
// playing the result through a media.Player
type Synthesizer struct {
	service TextToSpeechService
	player  media.Player
}

// SynthesizerOption is a functional option for configuring Synthesizer
type SynthesizerOption func(*Synthesizer)

// WithTextToSpeechService sets a custom text-to-speech service (for testing)
func WithTextToSpeechService(svc TextToSpeechService) SynthesizerOption {
	return func(s *Synthesizer) {
		s.service = svc
	}
}

// NewSynthesizer creates a new Text-to-Speech client playing through player.
// If no service option is provided, it authenticates with auth.
func NewSynthesizer(ctx context.Context, auth AuthConfig, player media.Player, opts ...SynthesizerOption) (*Synthesizer, error) {
	s := &Synthesizer{player: player}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		client, err := HTTPClient(ctx, auth)
		if err != nil {
			return nil, err
		}
		srv, err := texttospeech.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to create text-to-speech service: %w", err)
		}
		s.service = &GoogleTextToSpeechService{service: srv}
	}

	return s, nil
}

// Speak implements speech.Synthesizer
func (s *Synthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	rate := u.Rate
	if rate <= 0 {
		rate = speech.DefaultRate
	}
	language := u.Language
	if language == "" {
		language = speech.TargetLanguage
	}

	resp, err := s.service.Synthesize(ctx, &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: u.Text},
		Voice: &texttospeech.VoiceSelectionParams{LanguageCode: language},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding:   "LINEAR16",
			SampleRateHertz: synthesisSampleRate,
			SpeakingRate:    rate,
		},
	})
	if err != nil {
		return classify(speech.ErrSynthesis, err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("%w: invalid audio content: %w", speech.ErrSynthesis, err)
	}

	buf, err := media.NewAudioBuffer(data)
	if err != nil {
		return fmt.Errorf("%w: %w", speech.ErrSynthesis, err)
	}

	return s.player.Play(ctx, buf, u.Volume)
}

var _ speech.Synthesizer = (*Synthesizer)(nil)
