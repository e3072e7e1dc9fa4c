package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-translator/application/playback"
	"video-translator/domain/media"
	domsession "video-translator/domain/session"
	"video-translator/domain/speech"
)

// User-visible messages shown when a run fails
const (
	MsgExtractionFailed  = "Failed to extract audio"
	MsgNoSpeech          = "No speech detected"
	MsgRecognitionFailed = "Failed to recognize speech"
	MsgTranslationFailed = "Failed to translate text"
	MsgPlaybackFailed    = "Failed to play translated audio"
	MsgStopped           = "Translation stopped"
)

const subscriberBuffer = 16

// Session owns the pipeline state, the playback settings, the history and the
// speech controller. All methods are safe for concurrent use.
type Session struct {
	speech   *playback.Controller
	language string
	rate     float64
	logger   *slog.Logger

	mu              sync.Mutex
	state           domsession.State
	run             *Run
	listening       bool
	lastTranscript  string
	lastTranslation string
	errMsg          string
	settings        domsession.PlaybackSettings
	history         *domsession.History
	subscribers     map[int]chan domsession.Status
	nextSub         int
}

// Option is a functional option for configuring Session
type Option func(*Session)

// WithSettings sets the initial playback settings
func WithSettings(settings domsession.PlaybackSettings) Option {
	return func(s *Session) {
		s.settings = settings
	}
}

// WithHistoryLimit overrides the history capacity
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		s.history = domsession.NewHistory(limit)
	}
}

// WithVoice sets the synthesis language and speaking rate
func WithVoice(language string, rate float64) Option {
	return func(s *Session) {
		s.language = language
		s.rate = rate
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates an idle session speaking through synth
func New(synth speech.Synthesizer, opts ...Option) *Session {
	s := &Session{
		language:    speech.TargetLanguage,
		rate:        speech.DefaultRate,
		logger:      slog.With("component", "session"),
		state:       domsession.StateIdle,
		settings:    domsession.DefaultPlaybackSettings(),
		history:     domsession.NewHistory(domsession.MaxHistory),
		subscribers: make(map[int]chan domsession.Status),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.speech = playback.NewController(synth,
		playback.WithLogger(s.logger),
		playback.WithErrorHandler(s.reportSynthesisError),
		playback.WithFinishHandler(s.speechFinished),
	)

	return s
}

// Run is the handle of one pipeline run. Its methods fail with
// ErrInvalidTransition once the run no longer owns the session.
type Run struct {
	ID         string
	SourceFile string
	Started    time.Time

	session *Session
	cancel  context.CancelFunc
}

// Begin claims the session for a new run on source. cancel is invoked by Stop.
// It returns ErrBusy while another run is in progress.
func (s *Session) Begin(source string, cancel context.CancelFunc) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Running() {
		return nil, fmt.Errorf("%w: %s is being processed", domsession.ErrBusy, s.run.SourceFile)
	}

	r := &Run{
		ID:         uuid.NewString(),
		SourceFile: source,
		Started:    time.Now(),
		session:    s,
		cancel:     cancel,
	}
	s.run = r
	s.state = domsession.StateExtracting
	s.listening = false
	s.errMsg = ""

	s.logger.Info("run started", "run_id", r.ID, "source", source)
	s.notifyLocked()
	return r, nil
}

// ownsLocked reports whether r is the run currently holding the session
func (s *Session) ownsLocked(r *Run) error {
	if s.run != r || !s.state.Running() {
		return fmt.Errorf("%w: run %s is no longer active", domsession.ErrInvalidTransition, r.ID)
	}
	return nil
}

func (s *Session) transitionLocked(to domsession.State) error {
	if !s.state.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", domsession.ErrInvalidTransition, s.state, to)
	}
	s.logger.Debug("state change", "from", s.state, "to", to)
	s.state = to
	s.listening = to == domsession.StateRecognizing
	return nil
}

// Advance moves the run to the next pipeline state
func (r *Run) Advance(to domsession.State) error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownsLocked(r); err != nil {
		return err
	}
	if err := s.transitionLocked(to); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// SetTranscript publishes the recognized text before translation starts
func (r *Run) SetTranscript(t speech.Transcript) error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownsLocked(r); err != nil {
		return err
	}
	s.lastTranscript = t.Text
	s.notifyLocked()
	return nil
}

// Record prepends a completed entry to the history
func (r *Run) Record(original speech.Transcript, translated speech.Translation) (domsession.HistoryEntry, error) {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownsLocked(r); err != nil {
		return domsession.HistoryEntry{}, err
	}

	entry := domsession.HistoryEntry{
		ID:         r.ID,
		SourceFile: r.SourceFile,
		Original:   original,
		Translated: translated,
		Timestamp:  time.Now(),
	}
	s.history.Prepend(entry)
	s.lastTranslation = translated.Text
	s.notifyLocked()
	return entry, nil
}

// Speak starts the translated utterance when audio output is enabled.
// It reports whether an utterance was started. The utterance outlives the run.
func (r *Run) Speak(ctx context.Context, text string) (bool, error) {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownsLocked(r); err != nil {
		return false, err
	}
	if !s.settings.AudioEnabled {
		return false, nil
	}
	if err := s.transitionLocked(domsession.StateSynthesizing); err != nil {
		return false, err
	}

	s.speech.Speak(context.WithoutCancel(ctx), speech.Utterance{
		Text:     text,
		Language: s.language,
		Volume:   s.settings.TranslatedVolume,
		Rate:     s.rate,
	})
	s.notifyLocked()
	return true, nil
}

// Finish returns the session to idle after a successful run
func (r *Run) Finish() error {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownsLocked(r); err != nil {
		return err
	}
	if err := s.transitionLocked(domsession.StateIdle); err != nil {
		return err
	}
	s.logger.Info("run finished", "run_id", r.ID, "elapsed", time.Since(r.Started).Round(time.Millisecond))
	s.notifyLocked()
	return nil
}

// Fail puts the session in the error state with a single user-visible message
func (r *Run) Fail(err error) {
	s := r.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownsLocked(r) != nil {
		return
	}
	s.state = domsession.StateError
	s.listening = false
	s.errMsg = UserMessage(err)
	s.logger.Error("run failed", "run_id", r.ID, "source", r.SourceFile, "error", err)
	s.notifyLocked()
}

// UserMessage converts a run failure into the message shown to the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return MsgStopped
	case errors.Is(err, media.ErrExtraction):
		return MsgExtractionFailed
	case errors.Is(err, speech.ErrNoSpeech):
		return MsgNoSpeech
	case errors.Is(err, speech.ErrRecognition):
		return MsgRecognitionFailed
	case errors.Is(err, speech.ErrTranslation):
		return MsgTranslationFailed
	case errors.Is(err, speech.ErrSynthesis):
		return MsgPlaybackFailed
	default:
		return err.Error()
	}
}

// Stop cancels the run in progress and any utterance being spoken
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil && s.state.Running() && s.run.cancel != nil {
		s.logger.Info("stopping run", "run_id", s.run.ID)
		s.run.cancel()
	}
	s.speech.Cancel()
	s.notifyLocked()
}

// ToggleAudio flips audio output and returns the new value
func (s *Session) ToggleAudio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAudioLocked(!s.settings.AudioEnabled)
	return s.settings.AudioEnabled
}

// SetAudioEnabled turns audio output on or off. Disabling stops the current utterance.
func (s *Session) SetAudioEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAudioLocked(enabled)
}

func (s *Session) setAudioLocked(enabled bool) {
	s.settings.AudioEnabled = enabled
	if !enabled {
		s.speech.Cancel()
	}
	s.logger.Debug("audio output changed", "enabled", enabled)
	s.notifyLocked()
}

// SetTranslatedVolume sets the synthesis volume used by the next utterance
func (s *Session) SetTranslatedVolume(v float64) error {
	if err := domsession.ValidateVolume(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.TranslatedVolume = v
	s.notifyLocked()
	return nil
}

// SetOriginalVolume sets the volume of the source audio
func (s *Session) SetOriginalVolume(v float64) error {
	if err := domsession.ValidateVolume(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.OriginalVolume = v
	s.notifyLocked()
	return nil
}

// Settings returns the current playback settings
func (s *Session) Settings() domsession.PlaybackSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// History returns the completed runs, most recent first
func (s *Session) History() []domsession.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Snapshot returns a consistent view of the session
func (s *Session) Snapshot() domsession.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() domsession.Status {
	st := domsession.Status{
		State:           s.state,
		Translating:     s.state.Running(),
		Listening:       s.listening,
		Speaking:        s.speech.Speaking(),
		LastTranscript:  s.lastTranscript,
		LastTranslation: s.lastTranslation,
		Error:           s.errMsg,
		Settings:        s.settings,
		History:         s.history.Entries(),
	}
	if s.run != nil {
		st.RunID = s.run.ID
		st.SourceFile = s.run.SourceFile
	}
	return st
}

// Subscribe returns a channel receiving a Status after every change and a
// function that removes the subscription. Slow subscribers miss updates.
func (s *Session) Subscribe() (<-chan domsession.Status, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domsession.Status, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *Session) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	st := s.statusLocked()
	for id, ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			s.logger.Debug("status update dropped", "subscriber", id)
		}
	}
}

// WaitSpeech blocks until the utterance in progress has returned or ctx is done
func (s *Session) WaitSpeech(ctx context.Context) error {
	return s.speech.Wait(ctx)
}

func (s *Session) reportSynthesisError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the history entry is already recorded, so the run state is left alone
	s.errMsg = UserMessage(err)
	s.notifyLocked()
}

func (s *Session) speechFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
}
