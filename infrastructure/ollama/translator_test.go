package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"video-translator/domain/speech"
)

func TestTranslator_Translate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "\"\"\"\nBuenos días\n\"\"\"", "done": true}`))
	}))
	defer srv.Close()

	tr := NewTranslator(WithBaseURL(srv.URL+"/"), WithModel("mistral"))
	src := speech.Transcript{Text: "good morning", Language: speech.SourceLanguage}

	out, err := tr.Translate(context.Background(), src)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out.Text != "Buenos días" || out.Language != speech.TargetLanguage || out.Source != src {
		t.Errorf("Translate() = %+v", out)
	}
	if got.Model != "mistral" || got.Stream || !strings.Contains(got.Prompt, "good morning") {
		t.Errorf("request = %+v", got)
	}
	if !strings.Contains(got.System, "en-US") || !strings.Contains(got.System, "es-ES") {
		t.Errorf("system prompt should name both languages: %q", got.System)
	}
}

func TestTranslator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"model missing", http.StatusNotFound, `{"error":"model 'llama3' not found"}`, "not found"},
		{"server error", http.StatusInternalServerError, `boom`, "boom"},
		{"empty response", http.StatusOK, `{"response":"  "}`, "empty translation"},
		{"non-JSON body", http.StatusOK, `<html>proxy error</html>`, "invalid ollama response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTranslator(WithBaseURL(srv.URL)).Translate(context.Background(), speech.Transcript{Text: "hi"})
			if !errors.Is(err, speech.ErrTranslation) {
				t.Fatalf("Translate() error = %v, want ErrTranslation", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestTranslator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewTranslator(WithBaseURL(url)).Translate(context.Background(), speech.Transcript{Text: "hi"})
	if !errors.Is(err, speech.ErrTranslation) {
		t.Errorf("Translate() error = %v, want ErrTranslation", err)
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hola", "Hola"},
		{"```text\nHola\n```", "Hola"},
		{"\"Hola mundo\"", "Hola mundo"},
		{"Hola\n\nmundo", "Hola mundo"},
	}
	for _, tt := range tests {
		if got := cleanResponse(tt.in); got != tt.want {
			t.Errorf("cleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
