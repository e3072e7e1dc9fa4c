package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Playback.TranslatedVolume != 0.8 || cfg.Playback.OriginalVolume != 0.3 || !cfg.Playback.AudioEnabled {
		t.Errorf("playback defaults = %+v", cfg.Playback)
	}
	if cfg.Engines.Translator != TranslatorStub {
		t.Errorf("translator default = %q, want stub", cfg.Engines.Translator)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
engines:
  translator: ollama
playback:
  translated_volume: 0.5
pipeline:
  stage_timeout: 45s
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engines.Translator != TranslatorOllama {
		t.Errorf("translator = %q", cfg.Engines.Translator)
	}
	if cfg.Playback.TranslatedVolume != 0.5 {
		t.Errorf("translated volume = %v", cfg.Playback.TranslatedVolume)
	}
	if cfg.Pipeline.StageTimeout != 45*time.Second {
		t.Errorf("stage timeout = %v", cfg.Pipeline.StageTimeout)
	}
	// untouched keys keep their defaults
	if cfg.Engines.Recognizer != RecognizerVosk || cfg.Audio.SampleRate != 16000 {
		t.Errorf("defaults lost: %+v %+v", cfg.Engines, cfg.Audio)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"volume out of range", "playback:\n  translated_volume: 1.5\n", "playback.translated_volume"},
		{"unknown engine", "engines:\n  synthesizer: festival\n", "engines.synthesizer"},
		{"bad sample rate", "audio:\n  sample_rate: 100\n", "audio.sample_rate"},
		{"not yaml", "paths: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestConfigManager_GetSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	cfg := Default()
	mgr := NewConfigManager(cfg, path)

	tests := []struct {
		key, value, want string
	}{
		{"playback.translated_volume", "0.25", "0.25"},
		{"playback.audio_enabled", "false", "false"},
		{"engines.translator", "Google", "google"},
		{"pipeline.stage_timeout", "2m", "2m0s"},
		{"audio.channels", "2", "2"},
		{"paths.work_directory", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := mgr.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%s) error: %v", tt.key, err)
			}
			got, err := mgr.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%s) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Set error: %v", err)
	}
	if reloaded.Playback.TranslatedVolume != 0.25 || reloaded.Playback.AudioEnabled {
		t.Errorf("saved playback = %+v", reloaded.Playback)
	}
}

func TestConfigManager_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	mgr := NewConfigManager(Default(), path)

	tests := []struct {
		key, value string
		want       error
	}{
		{"playback.translated_volume", "-0.1", ErrInvalidValue},
		{"playback.original_volume", "loud", ErrInvalidValue},
		{"engines.recognizer", "whisper", ErrInvalidValue},
		{"pipeline.stage_timeout", "-5s", ErrInvalidValue},
		{"paths.source_directory", " ", ErrInvalidValue},
		{"playback.speed", "2", ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if err := mgr.Set(tt.key, tt.value); !errors.Is(err, tt.want) {
				t.Errorf("Set() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected values should not write the config file")
	}
}

func TestKeysSortedAndComplete(t *testing.T) {
	keys := Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("Keys() not sorted at %q", keys[i])
		}
	}

	entries := NewConfigManager(Default(), "").Entries()
	if len(entries) != len(keys) {
		t.Fatalf("Entries() = %d, want %d", len(entries), len(keys))
	}
	if got := SuggestSetCommand("engines.translator", "ollama"); got != "video-translator config set engines.translator ollama" {
		t.Errorf("SuggestSetCommand() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Message: "vosk model not found", Suggestion: SuggestSetCommand("vosk.model_path", "<dir>")}
	if !strings.Contains(err.Error(), "To fix this, run:\n  video-translator config set vosk.model_path <dir>") {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&ValidationError{Message: "bad"}).Error() != "bad" {
		t.Error("Error() without suggestion should be the message")
	}
}
