package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and writes single dotted keys of the config
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Get returns the value of key as text
func (m *ConfigManager) Get(key string) (string, error) {
	f, err := lookup(key)
	if err != nil {
		return "", err
	}
	return f.get(m.config), nil
}

// Set validates and stores value under key, then saves the file
func (m *ConfigManager) Set(key, value string) error {
	f, err := lookup(key)
	if err != nil {
		return err
	}
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return Save(m.config, m.configPath)
}

// Entries returns every key with its current value, sorted by key
func (m *ConfigManager) Entries() [][2]string {
	keys := Keys()
	out := make([][2]string, len(keys))
	for i, k := range keys {
		out[i] = [2]string{k, fields[k].get(m.config)}
	}
	return out
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SuggestSetCommand returns the command that sets key
func SuggestSetCommand(key, value string) string {
	return fmt.Sprintf("video-translator config set %s %s", key, value)
}

func lookup(key string) (field, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return field{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f, nil
}

// field binds a dotted key to a Config member
type field struct {
	get   func(*Config) string
	set   func(*Config, string) error
	check func(*Config) error
}

var fields = map[string]field{
	"paths.source_directory":     textField(func(c *Config) *string { return &c.Paths.SourceDirectory }, true),
	"paths.audio_directory":      textField(func(c *Config) *string { return &c.Paths.AudioDirectory }, true),
	"paths.work_directory":       textField(func(c *Config) *string { return &c.Paths.WorkDirectory }, false),
	"audio.sample_rate":          intField(func(c *Config) *int { return &c.Audio.SampleRate }, 8000, 48000),
	"audio.channels":             intField(func(c *Config) *int { return &c.Audio.Channels }, 1, 2),
	"audio.silence_threshold":    floatField(func(c *Config) *float64 { return &c.Audio.SilenceThreshold }, 0, 1),
	"languages.source":           textField(func(c *Config) *string { return &c.Languages.Source }, true),
	"languages.target":           textField(func(c *Config) *string { return &c.Languages.Target }, true),
	"playback.translated_volume": floatField(func(c *Config) *float64 { return &c.Playback.TranslatedVolume }, 0, 1),
	"playback.original_volume":   floatField(func(c *Config) *float64 { return &c.Playback.OriginalVolume }, 0, 1),
	"playback.audio_enabled":     boolField(func(c *Config) *bool { return &c.Playback.AudioEnabled }),
	"engines.recognizer":         choiceField(func(c *Config) *string { return &c.Engines.Recognizer }, RecognizerVosk, RecognizerGoogle),
	"engines.translator":         choiceField(func(c *Config) *string { return &c.Engines.Translator }, TranslatorStub, TranslatorGoogle, TranslatorOllama),
	"engines.synthesizer":        choiceField(func(c *Config) *string { return &c.Engines.Synthesizer }, SynthesizerEspeak, SynthesizerGoogle, SynthesizerNone),
	"vosk.model_path":            textField(func(c *Config) *string { return &c.Vosk.ModelPath }, false),
	"google.auth":                choiceField(func(c *Config) *string { return &c.Google.Auth }, "service_account", "oauth"),
	"google.credentials_file":    textField(func(c *Config) *string { return &c.Google.CredentialsFile }, false),
	"google.token_file":          textField(func(c *Config) *string { return &c.Google.TokenFile }, false),
	"ollama.base_url":            textField(func(c *Config) *string { return &c.Ollama.BaseURL }, true),
	"ollama.model":               textField(func(c *Config) *string { return &c.Ollama.Model }, true),
	"tools.ffmpeg":               textField(func(c *Config) *string { return &c.Tools.FFmpeg }, true),
	"tools.ffprobe":              textField(func(c *Config) *string { return &c.Tools.FFprobe }, true),
	"tools.ffplay":               textField(func(c *Config) *string { return &c.Tools.FFplay }, true),
	"tools.espeak":               textField(func(c *Config) *string { return &c.Tools.Espeak }, true),
	"intake.validator":           choiceField(func(c *Config) *string { return &c.Intake.Validator }, ValidatorNone, ValidatorFFprobe, ValidatorOpenCV),
	"pipeline.stage_timeout":     durationField(func(c *Config) *time.Duration { return &c.Pipeline.StageTimeout }),
	"logging.level":              choiceField(func(c *Config) *string { return &c.Logging.Level }, "debug", "info", "warn", "error"),
	"logging.format":             choiceField(func(c *Config) *string { return &c.Logging.Format }, "text", "json"),
}

func textField(p func(*Config) *string, required bool) field {
	valid := func(v string) error {
		if required && strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: value is required", ErrInvalidValue)
		}
		return nil
	}
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			if err := valid(v); err != nil {
				return err
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return valid(*p(c)) },
	}
}

func choiceField(p func(*Config) *string, allowed ...string) field {
	valid := func(v string) error {
		if !slices.Contains(allowed, v) {
			return fmt.Errorf("%w: %q (allowed: %s)", ErrInvalidValue, v, strings.Join(allowed, ", "))
		}
		return nil
	}
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			v = strings.ToLower(v)
			if err := valid(v); err != nil {
				return err
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return valid(*p(c)) },
	}
}

func intField(p func(*Config) *int, lo, hi int) field {
	valid := func(v int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %d out of range (%d-%d)", ErrInvalidValue, v, lo, hi)
		}
		return nil
	}
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, s string) error {
			v, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
			}
			if err := valid(v); err != nil {
				return err
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return valid(*p(c)) },
	}
}

func floatField(p func(*Config) *float64, lo, hi float64) field {
	valid := func(v float64) error {
		if !(v >= lo && v <= hi) {
			return fmt.Errorf("%w: %v out of range (%v-%v)", ErrInvalidValue, v, lo, hi)
		}
		return nil
	}
	return field{
		get: func(c *Config) string { return strconv.FormatFloat(*p(c), 'f', -1, 64) },
		set: func(c *Config, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
			}
			if err := valid(v); err != nil {
				return err
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return valid(*p(c)) },
	}
}

func boolField(p func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, s string) error {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("%w: %q is not true or false", ErrInvalidValue, s)
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return nil },
	}
}

func durationField(p func(*Config) *time.Duration) field {
	valid := func(v time.Duration) error {
		if v < 0 {
			return fmt.Errorf("%w: duration must not be negative", ErrInvalidValue)
		}
		return nil
	}
	return field{
		get: func(c *Config) string { return p(c).String() },
		set: func(c *Config, s string) error {
			v, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("%w: %q is not a duration (e.g. 30s, 2m)", ErrInvalidValue, s)
			}
			if err := valid(v); err != nil {
				return err
			}
			*p(c) = v
			return nil
		},
		check: func(c *Config) error { return valid(*p(c)) },
	}
}
