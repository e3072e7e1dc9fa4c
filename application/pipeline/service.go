package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	appsession "video-translator/application/session"
	appvideo "video-translator/application/video"
	"video-translator/domain/media"
	domsession "video-translator/domain/session"
	"video-translator/domain/speech"
)

// Service orchestrates one extraction → recognition → translation → speech run
type Service struct {
	intake       *appvideo.IntakeService
	extract      *appvideo.ExtractService
	recognizer   speech.Recognizer
	translator   speech.Translator
	session      *appsession.Session
	output       io.Writer
	stageTimeout time.Duration
	logger       *slog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithStageTimeout bounds each stage; 0 means no limit
func WithStageTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.stageTimeout = d
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new pipeline service
func NewService(
	intake *appvideo.IntakeService,
	extract *appvideo.ExtractService,
	recognizer speech.Recognizer,
	translator speech.Translator,
	session *appsession.Session,
	output io.Writer,
	opts ...Option,
) *Service {
	s := &Service{
		intake:     intake,
		extract:    extract,
		recognizer: recognizer,
		translator: translator,
		session:    session,
		output:     output,
		logger:     slog.With("component", "pipeline"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Session returns the session the service records into
func (s *Service) Session() *appsession.Session {
	return s.session
}

// Run processes one video file and returns the recorded history entry.
// Non-video files fail with media.ErrNotVideo before the session is touched.
// A run requested while another is in progress fails with session.ErrBusy.
func (s *Service) Run(ctx context.Context, path string) (*domsession.HistoryEntry, error) {
	startTime := time.Now()

	file, err := s.intake.Accept(ctx, path)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	run, err := s.session.Begin(file.Path, cancel)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.output, "Using source: %s\n\n", filepath.Base(file.Path))

	// Step 1: Extract audio
	fmt.Fprintf(s.output, "[1/4] Extracting audio...\n")
	audio, err := s.extractAudio(runCtx, file)
	if err != nil {
		return nil, s.fail(run, StageExtraction, err, file.Path)
	}
	fmt.Fprintf(s.output, "      Audio: %s\n\n", audio)

	// Step 2: Recognize speech
	if err := run.Advance(domsession.StateRecognizing); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "[2/4] Recognizing speech...\n")
	transcript, err := s.recognize(runCtx, audio)
	if err != nil {
		return nil, s.fail(run, StageRecognition, err, file.Path)
	}
	if err := run.SetTranscript(transcript); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      Transcript: %s\n\n", transcript.Text)

	// Step 3: Translate
	if err := run.Advance(domsession.StateTranslating); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "[3/4] Translating...\n")
	translation, err := s.translate(runCtx, transcript)
	if err != nil {
		return nil, s.fail(run, StageTranslation, err, file.Path)
	}
	entry, err := run.Record(transcript, translation)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      Translation: %s\n\n", translation.Text)

	// Step 4: Speak
	fmt.Fprintf(s.output, "[4/4] Speaking translation...\n")
	spoken, err := run.Speak(runCtx, translation.Text)
	if err != nil {
		return nil, err
	}
	if spoken {
		fmt.Fprintf(s.output, "      Volume: %.2f\n\n", s.session.Settings().TranslatedVolume)
	} else {
		fmt.Fprintf(s.output, "      Audio disabled, skipped\n\n")
	}

	if err := run.Finish(); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.output, "Done! Completed in %s\n", formatDuration(time.Since(startTime)))
	return &entry, nil
}

func (s *Service) extractAudio(ctx context.Context, file *media.VideoFile) (*media.AudioBuffer, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()

	buf, err := s.extract.Extract(ctx, file)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("audio extracted", "source", file.Path, "duration", buf.Duration)
	return buf, nil
}

func (s *Service) recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()

	transcript, err := s.recognizer.Recognize(ctx, audio)
	if err != nil {
		if errors.Is(err, speech.ErrRecognition) {
			return speech.Transcript{}, err
		}
		return speech.Transcript{}, fmt.Errorf("%w: %w", speech.ErrRecognition, err)
	}

	// a recognizer returning blank text has not detected speech
	return speech.NewTranscript(transcript.Text, speech.SourceLanguage)
}

func (s *Service) translate(ctx context.Context, transcript speech.Transcript) (speech.Translation, error) {
	ctx, cancel := s.stageContext(ctx)
	defer cancel()

	translation, err := s.translator.Translate(ctx, transcript)
	if err != nil {
		if errors.Is(err, speech.ErrTranslation) {
			return speech.Translation{}, err
		}
		return speech.Translation{}, fmt.Errorf("%w: %w", speech.ErrTranslation, err)
	}
	return translation, nil
}

func (s *Service) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.stageTimeout > 0 {
		return context.WithTimeout(ctx, s.stageTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) fail(run *appsession.Run, stage Stage, err error, sourcePath string) error {
	stageErr := &StageError{Stage: stage, Err: err}
	run.Fail(stageErr)
	fmt.Fprintf(s.output, "      Error: %s\n", appsession.UserMessage(err))
	s.showRecoveryCommands(stage, sourcePath)
	return stageErr
}

func (s *Service) showRecoveryCommands(failed Stage, sourcePath string) {
	fmt.Fprintln(s.output)
	fmt.Fprintln(s.output, "To investigate:")

	step := 1
	switch failed {
	case StageExtraction:
		fmt.Fprintf(s.output, "  %d. Extract:    video-translator extract-audio --source %q\n", step, sourcePath)
	case StageRecognition:
		fmt.Fprintf(s.output, "  %d. Extract:    video-translator extract-audio --source %q\n", step, sourcePath)
		step++
		fmt.Fprintf(s.output, "  %d. Transcribe: video-translator transcribe --source %q\n", step, sourcePath)
	case StageTranslation:
		fmt.Fprintf(s.output, "  %d. Transcribe: video-translator transcribe --source %q\n", step, sourcePath)
		step++
		fmt.Fprintf(s.output, "  %d. Engine:     video-translator config get engines.translator\n", step)
	}
	fmt.Fprintln(s.output)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// StepInfo provides information about a pipeline step
type StepInfo struct {
	Number      int
	Description string
}

// GetSteps returns the list of pipeline steps
func GetSteps() []StepInfo {
	return []StepInfo{
		{1, "Extracting audio"},
		{2, "Recognizing speech"},
		{3, "Translating"},
		{4, "Speaking translation"},
	}
}
