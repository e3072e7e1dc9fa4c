package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"video-translator/application/pipeline"
	appsession "video-translator/application/session"
	appvideo "video-translator/application/video"
	"video-translator/domain/media"
	domsession "video-translator/domain/session"
	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/detection"
	"video-translator/infrastructure/espeak"
	"video-translator/infrastructure/ffmpeg"
	"video-translator/infrastructure/filesystem"
	"video-translator/infrastructure/google"
	"video-translator/infrastructure/ollama"
	"video-translator/infrastructure/stub"
	"video-translator/infrastructure/vosk"
)

// Component selects which engines BuildDependencies creates
type Component int

const (
	NeedRecognizer Component = 1 << iota
	NeedTranslator
	NeedSynthesizer

	NeedAll = NeedRecognizer | NeedTranslator | NeedSynthesizer
)

// Dependencies holds the production adapters selected by configuration
type Dependencies struct {
	Extractor   *ffmpeg.Extractor
	Intake      *appvideo.IntakeService
	Extract     *appvideo.ExtractService
	Recognizer  speech.Recognizer
	Translator  speech.Translator
	Synthesizer speech.Synthesizer
	Files       *filesystem.Checker
	Finder      *filesystem.FileFinder

	closers []func()
}

// Close releases engine resources such as loaded models
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		c()
	}
	d.closers = nil
}

// BuildDependencies wires the engines named in cfg. Problems with the
// configuration are returned as *config.ValidationError.
func BuildDependencies(ctx context.Context, cfg *config.Config, need Component, prompt io.Writer) (*Dependencies, error) {
	runner := &ffmpeg.ExecCommandRunner{}
	files := filesystem.NewChecker()

	extractorOpts := []ffmpeg.ExtractorOption{
		ffmpeg.WithExtractorFFmpegPath(cfg.Tools.FFmpeg),
		ffmpeg.WithExtractorCommandRunner(runner),
		ffmpeg.WithWorkDirectory(cfg.Paths.WorkDirectory),
	}
	if cfg.Intake.Validator == config.ValidatorFFprobe {
		prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.Tools.FFprobe), ffmpeg.WithProberCommandRunner(runner))
		extractorOpts = append(extractorOpts, ffmpeg.WithProber(prober))
	}
	extractor := ffmpeg.NewExtractor(extractorOpts...)

	validator, err := buildValidator(cfg)
	if err != nil {
		return nil, err
	}
	var extractOpts []appvideo.ExtractOption
	if validator != nil {
		extractOpts = append(extractOpts, appvideo.WithValidator(validator))
	}

	d := &Dependencies{
		Extractor: extractor,
		Intake:    appvideo.NewIntakeService(files, filesystem.NewDetector()),
		Extract:   appvideo.NewExtractService(extractor, cfg.Audio.SampleRate, cfg.Audio.Channels, extractOpts...),
		Files:     files,
		Finder:    filesystem.NewFileFinder(),
	}

	auth := google.AuthConfig{
		Mode:            cfg.Google.Auth,
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
		Prompt:          prompt,
	}

	if need&NeedRecognizer != 0 {
		if d.Recognizer, err = d.buildRecognizer(ctx, cfg, auth); err != nil {
			d.Close()
			return nil, err
		}
	}
	if need&NeedTranslator != 0 {
		if d.Translator, err = buildTranslator(ctx, cfg, auth); err != nil {
			d.Close()
			return nil, err
		}
	}
	if need&NeedSynthesizer != 0 {
		if d.Synthesizer, err = buildSynthesizer(ctx, cfg, auth, runner); err != nil {
			d.Close()
			return nil, err
		}
	}

	return d, nil
}

// buildValidator returns the decode check run before extraction. The ffprobe
// validator needs none: the extractor's single probe checks both streams.
func buildValidator(cfg *config.Config) (media.VideoValidator, error) {
	switch cfg.Intake.Validator {
	case config.ValidatorNone, config.ValidatorFFprobe:
		return nil, nil
	case config.ValidatorOpenCV:
		if !detection.Available() {
			return nil, &config.ValidationError{
				Message:    detection.ErrUnavailable.Error(),
				Suggestion: config.SuggestSetCommand("intake.validator", config.ValidatorFFprobe),
			}
		}
		return detection.NewFrameValidator(), nil
	}
	return nil, unknownEngine("intake.validator", cfg.Intake.Validator, config.ValidatorFFprobe)
}

func (d *Dependencies) buildRecognizer(ctx context.Context, cfg *config.Config, auth google.AuthConfig) (speech.Recognizer, error) {
	var recognizer speech.Recognizer

	switch cfg.Engines.Recognizer {
	case config.RecognizerVosk:
		if !vosk.Available() {
			return nil, &config.ValidationError{
				Message:    vosk.ErrUnavailable.Error(),
				Suggestion: config.SuggestSetCommand("engines.recognizer", config.RecognizerGoogle),
			}
		}
		if _, err := os.Stat(cfg.Vosk.ModelPath); err != nil {
			return nil, &config.ValidationError{
				Message:    fmt.Sprintf("vosk model not found at %s (download one from https://alphacephei.com/vosk/models)", cfg.Vosk.ModelPath),
				Suggestion: config.SuggestSetCommand("vosk.model_path", "<model directory>"),
			}
		}
		r, err := vosk.NewRecognizer(cfg.Vosk.ModelPath, cfg.Languages.Source)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, r.Close)
		recognizer = r

	case config.RecognizerGoogle:
		if err := checkCredentials(cfg); err != nil {
			return nil, err
		}
		r, err := google.NewSpeechRecognizer(ctx, auth, google.WithRecognitionLanguage(cfg.Languages.Source))
		if err != nil {
			return nil, err
		}
		recognizer = r

	default:
		return nil, unknownEngine("engines.recognizer", cfg.Engines.Recognizer, config.RecognizerVosk)
	}

	return pipeline.NewSilenceGate(recognizer, cfg.Audio.SilenceThreshold), nil
}

func buildTranslator(ctx context.Context, cfg *config.Config, auth google.AuthConfig) (speech.Translator, error) {
	switch cfg.Engines.Translator {
	case config.TranslatorStub:
		return stub.NewTranslator(cfg.Languages.Target), nil
	case config.TranslatorGoogle:
		if err := checkCredentials(cfg); err != nil {
			return nil, err
		}
		return google.NewTranslator(ctx, auth, google.WithTranslateLanguages(cfg.Languages.Source, cfg.Languages.Target))
	case config.TranslatorOllama:
		return ollama.NewTranslator(
			ollama.WithBaseURL(cfg.Ollama.BaseURL),
			ollama.WithModel(cfg.Ollama.Model),
			ollama.WithLanguages(cfg.Languages.Source, cfg.Languages.Target),
		), nil
	}
	return nil, unknownEngine("engines.translator", cfg.Engines.Translator, config.TranslatorStub)
}

func buildSynthesizer(ctx context.Context, cfg *config.Config, auth google.AuthConfig, runner *ffmpeg.ExecCommandRunner) (speech.Synthesizer, error) {
	switch cfg.Engines.Synthesizer {
	case config.SynthesizerEspeak:
		return espeak.NewSynthesizer(runner, espeak.WithEspeakPath(cfg.Tools.Espeak)), nil
	case config.SynthesizerGoogle:
		if err := checkCredentials(cfg); err != nil {
			return nil, err
		}
		player := ffmpeg.NewPlayer(ffmpeg.WithFFplayPath(cfg.Tools.FFplay), ffmpeg.WithPlayerCommandRunner(runner))
		return google.NewSynthesizer(ctx, auth, player)
	case config.SynthesizerNone:
		return stub.NewSynthesizer(), nil
	}
	return nil, unknownEngine("engines.synthesizer", cfg.Engines.Synthesizer, config.SynthesizerEspeak)
}

func checkCredentials(cfg *config.Config) error {
	if _, err := os.Stat(cfg.Google.CredentialsFile); err != nil {
		return &config.ValidationError{
			Message:    fmt.Sprintf("Google credentials file not found: %s", cfg.Google.CredentialsFile),
			Suggestion: config.SuggestSetCommand("google.credentials_file", "<path to credentials.json>"),
		}
	}
	return nil
}

func unknownEngine(key, value, fallback string) error {
	return &config.ValidationError{
		Message:    fmt.Sprintf("unknown %s %q", key, value),
		Suggestion: config.SuggestSetCommand(key, fallback),
	}
}

// NewSession creates a session with the configured playback settings
func NewSession(cfg *config.Config, synth speech.Synthesizer) *appsession.Session {
	return appsession.New(synth,
		appsession.WithSettings(domsession.PlaybackSettings{
			TranslatedVolume: cfg.Playback.TranslatedVolume,
			OriginalVolume:   cfg.Playback.OriginalVolume,
			AudioEnabled:     cfg.Playback.AudioEnabled,
		}),
		appsession.WithVoice(cfg.Languages.Target, speech.DefaultRate),
	)
}

// NewPipeline creates the orchestrator over d and session
func NewPipeline(cfg *config.Config, d *Dependencies, session *appsession.Session, output io.Writer) *pipeline.Service {
	return pipeline.NewService(d.Intake, d.Extract, d.Recognizer, d.Translator, session, output,
		pipeline.WithStageTimeout(cfg.Pipeline.StageTimeout),
	)
}
