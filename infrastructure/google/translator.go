package google

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"video-translator/domain/speech"
)

// TranslateService defines the Cloud Translation operations used
// This allows mocking the Google API in tests
type TranslateService interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleTranslateService is the production implementation using the Translation v2 API
type GoogleTranslateService struct {
	service *translate.Service
}

// Translate translates one text
func (s *GoogleTranslateService) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := s.service.Translations.List([]string{text}, target).
		Source(source).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", errors.New("empty translation response")
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// Translator implements speech.Translator with Google Cloud Translation
type Translator struct {
	service TranslateService
	source  string
	target  string
}

// TranslatorOption is a functional option for configuring Translator
type TranslatorOption func(*Translator)

// WithTranslateService sets a custom translate service (for testing)
func WithTranslateService(svc TranslateService) TranslatorOption {
	return func(t *Translator) {
		t.service = svc
	}
}

// WithTranslateLanguages sets the source and target languages
func WithTranslateLanguages(source, target string) TranslatorOption {
	return func(t *Translator) {
		t.source = source
		t.target = target
	}
}

// NewTranslator creates a new Cloud Translation client.
// If no service option is provided, it authenticates with auth.
func NewTranslator(ctx context.Context, auth AuthConfig, opts ...TranslatorOption) (*Translator, error) {
	t := &Translator{
		source: speech.SourceLanguage,
		target: speech.TargetLanguage,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.service == nil {
		client, err := HTTPClient(ctx, auth)
		if err != nil {
			return nil, err
		}
		srv, err := translate.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to create translate service: %w", err)
		}
		t.service = &GoogleTranslateService{service: srv}
	}

	return t, nil
}

// Translate implements speech.Translator
func (t *Translator) Translate(ctx context.Context, transcript speech.Transcript) (speech.Translation, error) {
	text, err := t.service.Translate(ctx, transcript.Text, speech.LanguageBase(t.source), speech.LanguageBase(t.target))
	if err != nil {
		return speech.Translation{}, classify(speech.ErrTranslation, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return speech.Translation{}, fmt.Errorf("%w: empty translation", speech.ErrTranslation)
	}

	return speech.Translation{
		Text:     text,
		Language: t.target,
		Source:   transcript,
	}, nil
}

// classify wraps an API error in kind, naming rate limits and language problems
func classify(kind, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: rate limited: %w", kind, err)
		case gerr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(gerr.Message), "language"):
			return fmt.Errorf("%w: %w: %w", kind, speech.ErrUnsupportedLanguage, err)
		}
	}
	return fmt.Errorf("%w: %w", kind, err)
}

var _ speech.Translator = (*Translator)(nil)
