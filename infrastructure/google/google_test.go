package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	speechapi "google.golang.org/api/speech/v1"
	"google.golang.org/api/texttospeech/v1"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// --- Mock implementations for testing ---

type mockTranslateService struct {
	source, target, text string
	result               string
	err                  error
}

func (m *mockTranslateService) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.text, m.source, m.target = text, source, target
	return m.result, m.err
}

type mockSpeechService struct {
	lastRequest *speechapi.RecognizeRequest
	response    *speechapi.RecognizeResponse
	err         error
}

func (m *mockSpeechService) Recognize(ctx context.Context, req *speechapi.RecognizeRequest) (*speechapi.RecognizeResponse, error) {
	m.lastRequest = req
	return m.response, m.err
}

type mockTTSService struct {
	lastRequest *texttospeech.SynthesizeSpeechRequest
	audio       []byte
	err         error
}

func (m *mockTTSService) Synthesize(ctx context.Context, req *texttospeech.SynthesizeSpeechRequest) (*texttospeech.SynthesizeSpeechResponse, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return &texttospeech.SynthesizeSpeechResponse{AudioContent: base64.StdEncoding.EncodeToString(m.audio)}, nil
}

type mockPlayer struct {
	played *media.AudioBuffer
	volume float64
}

func (m *mockPlayer) Play(ctx context.Context, buf *media.AudioBuffer, volume float64) error {
	m.played = buf
	m.volume = volume
	return nil
}

func testAudio(t *testing.T, rate int) []byte {
	t.Helper()
	samples := make([]int, rate/10)
	for i := range samples {
		samples[i] = (i % 50) * 100
	}
	data, err := media.EncodeWAV(&media.PCM{Samples: samples, SampleRate: rate, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestTranslator_Translate(t *testing.T) {
	svc := &mockTranslateService{result: " Buenos días "}
	tr, err := NewTranslator(context.Background(), AuthConfig{}, WithTranslateService(svc))
	if err != nil {
		t.Fatal(err)
	}

	src := speech.Transcript{Text: "good morning", Language: "en-US"}
	out, err := tr.Translate(context.Background(), src)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out.Text != "Buenos días" || out.Language != "es-ES" || out.Source != src {
		t.Errorf("Translate() = %+v", out)
	}
	if svc.source != "en" || svc.target != "es" || svc.text != "good morning" {
		t.Errorf("service called with %q %s->%s", svc.text, svc.source, svc.target)
	}
}

func TestTranslator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		result   string
		wantKind error
		wantSub  string
	}{
		{"rate limit", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}, "", speech.ErrTranslation, "rate limited"},
		{"bad language", &googleapi.Error{Code: http.StatusBadRequest, Message: "Invalid Value for target language"}, "", speech.ErrUnsupportedLanguage, ""},
		{"network", errors.New("dial tcp: timeout"), "", speech.ErrTranslation, "dial tcp"},
		{"empty", nil, "   ", speech.ErrTranslation, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := NewTranslator(context.Background(), AuthConfig{}, WithTranslateService(&mockTranslateService{err: tt.err, result: tt.result}))

			_, err := tr.Translate(context.Background(), speech.Transcript{Text: "hi"})
			if !errors.Is(err, tt.wantKind) || !errors.Is(err, speech.ErrTranslation) {
				t.Errorf("Translate() error = %v, want %v", err, tt.wantKind)
			}
			if tt.wantSub != "" && !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestSpeechRecognizer_Recognize(t *testing.T) {
	svc := &mockSpeechService{response: &speechapi.RecognizeResponse{
		Results: []*speechapi.SpeechRecognitionResult{
			{Alternatives: []*speechapi.SpeechRecognitionAlternative{{Transcript: " good morning "}}},
			{Alternatives: []*speechapi.SpeechRecognitionAlternative{{Transcript: "ignored"}}},
		},
	}}
	r, err := NewSpeechRecognizer(context.Background(), AuthConfig{}, WithSpeechService(svc))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := media.NewAudioBuffer(testAudio(t, 16000))
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.Recognize(context.Background(), buf)
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if got.Text != "good morning" || got.Language != "en-US" {
		t.Errorf("Recognize() = %+v", got)
	}

	cfg := svc.lastRequest.Config
	if cfg.Encoding != "LINEAR16" || cfg.SampleRateHertz != 16000 || cfg.LanguageCode != "en-US" {
		t.Errorf("config = %+v", cfg)
	}
	raw, err := base64.StdEncoding.DecodeString(svc.lastRequest.Audio.Content)
	if err != nil || len(raw) != 1600*2 {
		t.Errorf("audio content = %d bytes, %v; want raw PCM16", len(raw), err)
	}
}

func TestSpeechRecognizer_Failures(t *testing.T) {
	buf, _ := media.NewAudioBuffer(testAudio(t, 16000))

	r, _ := NewSpeechRecognizer(context.Background(), AuthConfig{}, WithSpeechService(&mockSpeechService{response: &speechapi.RecognizeResponse{}}))
	if _, err := r.Recognize(context.Background(), buf); !errors.Is(err, speech.ErrNoSpeech) {
		t.Errorf("empty results error = %v, want ErrNoSpeech", err)
	}

	r, _ = NewSpeechRecognizer(context.Background(), AuthConfig{}, WithSpeechService(&mockSpeechService{err: errors.New("unavailable")}))
	if _, err := r.Recognize(context.Background(), buf); !errors.Is(err, speech.ErrRecognition) {
		t.Errorf("service error = %v, want ErrRecognition", err)
	}
}

func TestSynthesizer_Speak(t *testing.T) {
	svc := &mockTTSService{audio: testAudio(t, synthesisSampleRate)}
	player := &mockPlayer{}
	s, err := NewSynthesizer(context.Background(), AuthConfig{}, player, WithTextToSpeechService(svc))
	if err != nil {
		t.Fatal(err)
	}

	err = s.Speak(context.Background(), speech.Utterance{Text: "Hola", Language: "es-ES", Volume: 0, Rate: 1})
	if err != nil {
		t.Fatalf("Speak() error: %v", err)
	}

	if svc.lastRequest.Voice.LanguageCode != "es-ES" || svc.lastRequest.AudioConfig.SpeakingRate != 1 {
		t.Errorf("request = %+v", svc.lastRequest)
	}
	if player.played == nil || player.played.SampleRate != synthesisSampleRate {
		t.Fatal("synthesized audio was not played")
	}
	if player.volume != 0 {
		t.Errorf("volume = %v, want 0", player.volume)
	}
}

func TestSynthesizer_Failure(t *testing.T) {
	s, _ := NewSynthesizer(context.Background(), AuthConfig{}, &mockPlayer{}, WithTextToSpeechService(&mockTTSService{err: errors.New("quota")}))

	if err := s.Speak(context.Background(), speech.Utterance{Text: "Hola"}); !errors.Is(err, speech.ErrSynthesis) {
		t.Errorf("Speak() error = %v, want ErrSynthesis", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	if err := saveToken(path, want); err != nil {
		t.Fatalf("saveToken() error: %v", err)
	}
	got, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken() error: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("loadToken() = %+v", got)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	if _, err := HTTPClient(context.Background(), AuthConfig{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("HTTPClient() should fail for a missing credentials file")
	}

	path := filepath.Join(t.TempDir(), "creds.json")
	if err := saveToken(path, &oauth2.Token{}); err != nil {
		t.Fatal(err)
	}
	var prompt bytes.Buffer
	if _, err := HTTPClient(context.Background(), AuthConfig{Mode: "kerberos", CredentialsFile: path, Prompt: &prompt}); err == nil || !strings.Contains(err.Error(), "unknown google auth mode") {
		t.Errorf("HTTPClient() error = %v, want unknown mode", err)
	}
	if _, err := HTTPClient(context.Background(), AuthConfig{Mode: AuthServiceAccount, CredentialsFile: path}); err == nil {
		t.Error("HTTPClient() should reject a file that is not a service account key")
	}
}
