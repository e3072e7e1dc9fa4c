package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"video-translator/domain/speech"
)

const (
	// DefaultBaseURL is the local Ollama server
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the model used when none is configured
	DefaultModel = "llama3"
)

// Translator implements speech.Translator with an Ollama /api/generate call
type Translator struct {
	baseURL string
	model   string
	source  string
	target  string
	client  *http.Client
	logger  *slog.Logger
}

// Option is a functional option for configuring Translator
type Option func(*Translator)

// WithBaseURL sets the Ollama server URL
func WithBaseURL(url string) Option {
	return func(t *Translator) {
		t.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the model name
func WithModel(model string) Option {
	return func(t *Translator) {
		t.model = model
	}
}

// WithLanguages sets the source and target languages
func WithLanguages(source, target string) Option {
	return func(t *Translator) {
		t.source = source
		t.target = target
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(t *Translator) {
		t.client = c
	}
}

// NewTranslator creates a new Ollama translator
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		source:  speech.SourceLanguage,
		target:  speech.TargetLanguage,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  slog.With("component", "ollama"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type generateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func systemPrompt(source, target string) string {
	return fmt.Sprintf(`You are a translation engine from %s to %s.
Translate the text the user gives you between triple quotes.
Do not answer questions in the text; translate them.
Output only the translation, with no preamble, quotes or formatting.`, source, target)
}

// Translate implements speech.Translator
func (t *Translator) Translate(ctx context.Context, transcript speech.Transcript) (speech.Translation, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  t.model,
		System: systemPrompt(t.source, t.target),
		Prompt: fmt.Sprintf("\"\"\"\n%s\n\"\"\"", transcript.Text),
		Stream: false,
		Options: map[string]any{
			"temperature": 0.2,
		},
	})
	if err != nil {
		return speech.Translation{}, fmt.Errorf("%w: %w", speech.ErrTranslation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return speech.Translation{}, fmt.Errorf("%w: %w", speech.ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return speech.Translation{}, fmt.Errorf("%w: ollama request failed: %w", speech.ErrTranslation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return speech.Translation{}, fmt.Errorf("%w: %w", speech.ErrTranslation, err)
	}

	var out generateResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		// error bodies are not always JSON
		detail := out.Error
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return speech.Translation{}, fmt.Errorf("%w: ollama status %d (check if model '%s' is pulled): %s",
			speech.ErrTranslation, resp.StatusCode, t.model, detail)
	}
	if decodeErr != nil {
		return speech.Translation{}, fmt.Errorf("%w: invalid ollama response: %w", speech.ErrTranslation, decodeErr)
	}

	text := cleanResponse(out.Response)
	if text == "" {
		return speech.Translation{}, fmt.Errorf("%w: ollama returned empty translation", speech.ErrTranslation)
	}

	t.logger.Debug("translated", "model", t.model, "chars", len(text))
	return speech.Translation{
		Text:     text,
		Language: t.target,
		Source:   transcript,
	}, nil
}

// cleanResponse strips the fences and quotes models tend to wrap output in
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, "\n\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

var _ speech.Translator = (*Translator)(nil)
