package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the configuration file is looked up
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Audio     AudioConfig     `yaml:"audio"`
	Languages LanguagesConfig `yaml:"languages"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Engines   EnginesConfig   `yaml:"engines"`
	Vosk      VoskConfig      `yaml:"vosk"`
	Google    GoogleConfig    `yaml:"google"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Tools     ToolsConfig     `yaml:"tools"`
	Intake    IntakeConfig    `yaml:"intake"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig contains directory paths for media processing
type PathsConfig struct {
	SourceDirectory string `yaml:"source_directory"`
	AudioDirectory  string `yaml:"audio_directory"`
	WorkDirectory   string `yaml:"work_directory,omitempty"`
}

// AudioConfig contains audio extraction settings
type AudioConfig struct {
	SampleRate       int     `yaml:"sample_rate"`
	Channels         int     `yaml:"channels"`
	SilenceThreshold float64 `yaml:"silence_threshold"`
}

// LanguagesConfig holds the fixed language pair
type LanguagesConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// PlaybackConfig holds the initial playback settings
type PlaybackConfig struct {
	TranslatedVolume float64 `yaml:"translated_volume"`
	OriginalVolume   float64 `yaml:"original_volume"`
	AudioEnabled     bool    `yaml:"audio_enabled"`
}

// EnginesConfig selects the backend for each capability
type EnginesConfig struct {
	Recognizer  string `yaml:"recognizer"`
	Translator  string `yaml:"translator"`
	Synthesizer string `yaml:"synthesizer"`
}

// VoskConfig contains offline recognition settings
type VoskConfig struct {
	ModelPath string `yaml:"model_path"`
}

// GoogleConfig contains Google Cloud API settings
type GoogleConfig struct {
	Auth            string `yaml:"auth"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// OllamaConfig contains local LLM translation settings
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ToolsConfig contains external executable paths
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	FFplay  string `yaml:"ffplay"`
	Espeak  string `yaml:"espeak"`
}

// IntakeConfig controls how uploaded files are validated
type IntakeConfig struct {
	Validator string `yaml:"validator"`
}

// PipelineConfig contains orchestration settings
type PipelineConfig struct {
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

// LoggingConfig contains diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Engine and validator names
const (
	RecognizerVosk   = "vosk"
	RecognizerGoogle = "google"

	TranslatorStub   = "stub"
	TranslatorGoogle = "google"
	TranslatorOllama = "ollama"

	SynthesizerEspeak = "espeak"
	SynthesizerGoogle = "google"
	SynthesizerNone   = "none"

	ValidatorNone    = "none"
	ValidatorFFprobe = "ffprobe"
	ValidatorOpenCV  = "opencv"
)

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			SourceDirectory: ".",
			AudioDirectory:  "audio",
		},
		Audio: AudioConfig{
			SampleRate:       16000,
			Channels:         1,
			SilenceThreshold: 0.01,
		},
		Languages: LanguagesConfig{
			Source: "en-US",
			Target: "es-ES",
		},
		Playback: PlaybackConfig{
			TranslatedVolume: 0.8,
			OriginalVolume:   0.3,
			AudioEnabled:     true,
		},
		Engines: EnginesConfig{
			Recognizer:  RecognizerVosk,
			Translator:  TranslatorStub,
			Synthesizer: SynthesizerEspeak,
		},
		Vosk: VoskConfig{
			ModelPath: "models/vosk-model-small-en-us-0.15",
		},
		Google: GoogleConfig{
			Auth:            "service_account",
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3",
		},
		Tools: ToolsConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			FFplay:  "ffplay",
			Espeak:  "espeak-ng",
		},
		Intake: IntakeConfig{
			Validator: ValidatorFFprobe,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every value that has a closed set or a range
func (c *Config) Validate() error {
	for _, k := range Keys() {
		if err := fields[k].check(c); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}
