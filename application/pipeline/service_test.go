package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	appsession "video-translator/application/session"
	appvideo "video-translator/application/video"
	"video-translator/domain/media"
	domsession "video-translator/domain/session"
	"video-translator/domain/speech"
)

// --- Mock implementations for testing ---

type mockFileChecker struct{}

func (m *mockFileChecker) Exists(path string) bool {
	return path != "missing.mp4"
}

type mockDetector struct{}

func (m *mockDetector) DetectType(path string) (string, error) {
	if strings.HasSuffix(path, ".mp4") {
		return "video/mp4", nil
	}
	return "text/plain", nil
}

// mockExtractor returns a fixed WAV buffer
type mockExtractor struct {
	wav []byte
	err error
}

func (m *mockExtractor) Extract(ctx context.Context, req *media.ExtractionRequest) (*media.AudioBuffer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return media.NewAudioBuffer(m.wav)
}

// mockValidator rejects every file with err
type mockValidator struct {
	err error
}

func (m *mockValidator) Validate(ctx context.Context, file *media.VideoFile) error {
	return m.err
}

// mockRecognizer returns text, or blocks until ctx is done when block is set
type mockRecognizer struct {
	text  string
	err   error
	block bool
	calls int
}

func (m *mockRecognizer) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	m.calls++
	if m.block {
		<-ctx.Done()
		return speech.Transcript{}, ctx.Err()
	}
	if m.err != nil {
		return speech.Transcript{}, m.err
	}
	return speech.Transcript{Text: m.text, Language: speech.SourceLanguage}, nil
}

// prefixTranslator behaves like the default placeholder backend
type prefixTranslator struct {
	err error
}

func (m *prefixTranslator) Translate(ctx context.Context, t speech.Transcript) (speech.Translation, error) {
	if m.err != nil {
		return speech.Translation{}, m.err
	}
	return speech.Translation{Text: "Translated: " + t.Text, Language: speech.TargetLanguage, Source: t}, nil
}

type mockSynth struct {
	mu         sync.Mutex
	utterances []speech.Utterance
	err        error
}

func (m *mockSynth) Speak(ctx context.Context, u speech.Utterance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.utterances = append(m.utterances, u)
	return m.err
}

func (m *mockSynth) spoken() []speech.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]speech.Utterance(nil), m.utterances...)
}

func wavOf(t *testing.T, seconds int, amplitude float64) []byte {
	t.Helper()
	n := seconds * media.DefaultSampleRate
	samples := make([]int, n)
	for i := range samples {
		samples[i] = int(amplitude * 32767 * math.Sin(2*math.Pi*220*float64(i)/float64(media.DefaultSampleRate)))
	}
	data, err := media.EncodeWAV(&media.PCM{
		Samples:    samples,
		SampleRate: media.DefaultSampleRate,
		Channels:   1,
		BitDepth:   16,
	})
	if err != nil {
		t.Fatalf("EncodeWAV() error: %v", err)
	}
	return data
}

type fixture struct {
	svc        *Service
	session    *appsession.Session
	extractor  *mockExtractor
	recognizer *mockRecognizer
	translator *prefixTranslator
	synth      *mockSynth
	output     *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		extractor:  &mockExtractor{wav: wavOf(t, 1, 0.5)},
		recognizer: &mockRecognizer{text: "good morning"},
		translator: &prefixTranslator{},
		synth:      &mockSynth{},
		output:     &bytes.Buffer{},
	}
	f.session = appsession.New(f.synth)
	intake := appvideo.NewIntakeService(&mockFileChecker{}, &mockDetector{})
	extract := appvideo.NewExtractService(f.extractor, 0, 0)
	gate := NewSilenceGate(f.recognizer, 0.01)
	f.svc = NewService(intake, extract, gate, f.translator, f.session, f.output, opts...)
	return f
}

func (f *fixture) waitSpeech(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.session.WaitSpeech(ctx); err != nil {
		t.Fatalf("speech did not finish: %v", err)
	}
}

func TestRun_GoodMorning(t *testing.T) {
	f := newFixture(t)

	entry, err := f.svc.Run(context.Background(), "greeting.mp4")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	f.waitSpeech(t)

	if entry.Original.Text != "good morning" {
		t.Errorf("Original = %q", entry.Original.Text)
	}
	if entry.Translated.Text != "Translated: good morning" {
		t.Errorf("Translated = %q", entry.Translated.Text)
	}

	history := f.session.History()
	if len(history) != 1 || history[0].ID != entry.ID {
		t.Fatalf("history = %+v, want the new entry at index 0", history)
	}

	spoken := f.synth.spoken()
	if len(spoken) != 1 {
		t.Fatalf("spoke %d utterances, want 1", len(spoken))
	}
	if spoken[0].Text != "Translated: good morning" || spoken[0].Volume != 0.8 || spoken[0].Language != "es-ES" {
		t.Errorf("utterance = %+v", spoken[0])
	}

	st := f.session.Snapshot()
	if st.State != domsession.StateIdle || st.Error != "" {
		t.Errorf("final state = %s, error %q", st.State, st.Error)
	}

	out := f.output.String()
	for _, want := range []string{"[1/4] Extracting audio", "[2/4] Recognizing speech", "[3/4] Translating", "[4/4] Speaking translation", "Done!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_SilentVideo(t *testing.T) {
	f := newFixture(t)
	f.extractor.wav = wavOf(t, 5, 0)

	_, err := f.svc.Run(context.Background(), "silent.mp4")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageRecognition {
		t.Fatalf("Run() error = %v, want recognition StageError", err)
	}
	if !errors.Is(err, speech.ErrRecognition) || !errors.Is(err, speech.ErrNoSpeech) {
		t.Errorf("error %v should match ErrRecognition and ErrNoSpeech", err)
	}
	if f.recognizer.calls != 0 {
		t.Errorf("recognizer called %d times for silent audio", f.recognizer.calls)
	}

	st := f.session.Snapshot()
	if st.State != domsession.StateError || st.Error != appsession.MsgNoSpeech {
		t.Errorf("state = %s, error %q", st.State, st.Error)
	}
	if len(st.History) != 0 {
		t.Errorf("history should stay empty, got %d", len(st.History))
	}
}

func TestRun_StageFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantStage Stage
		wantKind  error
		wantMsg   string
	}{
		{
			name:      "extraction",
			setup:     func(f *fixture) { f.extractor.err = media.ErrNoAudioStream },
			wantStage: StageExtraction,
			wantKind:  media.ErrExtraction,
			wantMsg:   appsession.MsgExtractionFailed,
		},
		{
			name:      "empty audio",
			setup:     func(f *fixture) { f.extractor.wav = []byte{} },
			wantStage: StageExtraction,
			wantKind:  media.ErrExtraction,
			wantMsg:   appsession.MsgExtractionFailed,
		},
		{
			name:      "recognizer error",
			setup:     func(f *fixture) { f.recognizer.err = errors.New("service unavailable") },
			wantStage: StageRecognition,
			wantKind:  speech.ErrRecognition,
			wantMsg:   appsession.MsgRecognitionFailed,
		},
		{
			name:      "blank transcript",
			setup:     func(f *fixture) { f.recognizer.text = "   " },
			wantStage: StageRecognition,
			wantKind:  speech.ErrNoSpeech,
			wantMsg:   appsession.MsgNoSpeech,
		},
		{
			name:      "translation",
			setup:     func(f *fixture) { f.translator.err = errors.New("rate limited") },
			wantStage: StageTranslation,
			wantKind:  speech.ErrTranslation,
			wantMsg:   appsession.MsgTranslationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			entry, err := f.svc.Run(context.Background(), "talk.mp4")
			if entry != nil {
				t.Errorf("Run() entry = %+v, want nil", entry)
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) || stageErr.Stage != tt.wantStage {
				t.Fatalf("Run() error = %v, want %s StageError", err, tt.wantStage)
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("error %v should match %v", err, tt.wantKind)
			}

			st := f.session.Snapshot()
			if st.State != domsession.StateError || st.Error != tt.wantMsg {
				t.Errorf("state = %s, error %q, want %q", st.State, st.Error, tt.wantMsg)
			}
			if len(st.History) != 0 || len(f.synth.spoken()) != 0 {
				t.Error("failed run must not record history or speak")
			}
			if !strings.Contains(f.output.String(), "To investigate:") {
				t.Error("output should list recovery commands")
			}

			// the session accepts another run after a failure
			f.extractor.err, f.extractor.wav = nil, wavOf(t, 1, 0.5)
			f.recognizer.err, f.recognizer.text = nil, "hello"
			f.translator.err = nil
			if _, err := f.svc.Run(context.Background(), "talk.mp4"); err != nil {
				t.Errorf("Run() after failure error: %v", err)
			}
		})
	}
}

func TestRun_UndecodableVideoFailsExtraction(t *testing.T) {
	f := newFixture(t)
	validator := &mockValidator{err: errors.New("ffprobe failed: Invalid data found when processing input")}
	intake := appvideo.NewIntakeService(&mockFileChecker{}, &mockDetector{})
	extract := appvideo.NewExtractService(f.extractor, 0, 0, appvideo.WithValidator(validator))
	f.svc = NewService(intake, extract, NewSilenceGate(f.recognizer, 0.01), f.translator, f.session, f.output)

	_, err := f.svc.Run(context.Background(), "corrupt.mp4")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageExtraction {
		t.Fatalf("Run() error = %v, want extraction StageError", err)
	}
	if !errors.Is(err, media.ErrExtraction) || errors.Is(err, media.ErrNotVideo) {
		t.Errorf("error %v should match ErrExtraction only", err)
	}

	st := f.session.Snapshot()
	if st.State != domsession.StateError || st.Error != appsession.MsgExtractionFailed {
		t.Errorf("state = %s, error %q", st.State, st.Error)
	}
	if len(st.History) != 0 {
		t.Errorf("history should stay empty, got %d", len(st.History))
	}
	if !strings.Contains(f.output.String(), "extract-audio --source") {
		t.Errorf("output should show recovery commands:\n%s", f.output.String())
	}
}

func TestRun_SynthesisFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.synth.err = errors.New("no audio device")

	entry, err := f.svc.Run(context.Background(), "talk.mp4")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	f.waitSpeech(t)

	if entry == nil || len(f.session.History()) != 1 {
		t.Fatal("entry should be recorded before synthesis")
	}
	if got := f.session.Snapshot().Error; got != appsession.MsgPlaybackFailed {
		t.Errorf("Error = %q, want %q", got, appsession.MsgPlaybackFailed)
	}
}

func TestRun_ZeroVolumeStillSpeaks(t *testing.T) {
	f := newFixture(t)
	if err := f.session.SetTranslatedVolume(0); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Run(context.Background(), "talk.mp4"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	f.waitSpeech(t)

	spoken := f.synth.spoken()
	if len(spoken) != 1 || spoken[0].Volume != 0 {
		t.Errorf("utterances = %+v, want one at volume 0", spoken)
	}
}

func TestRun_AudioDisabled(t *testing.T) {
	f := newFixture(t)
	f.session.SetAudioEnabled(false)

	if _, err := f.svc.Run(context.Background(), "talk.mp4"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	f.waitSpeech(t)

	if n := len(f.synth.spoken()); n != 0 {
		t.Errorf("spoke %d utterances with audio disabled", n)
	}
	if !strings.Contains(f.output.String(), "Audio disabled") {
		t.Error("output should note skipped speech")
	}
}

func TestRun_BusySessionRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.session.Begin("other.mp4", func() {}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Run(context.Background(), "talk.mp4")
	if !errors.Is(err, domsession.ErrBusy) {
		t.Fatalf("Run() error = %v, want ErrBusy", err)
	}
	if f.session.Snapshot().SourceFile != "other.mp4" {
		t.Error("rejected run must not disturb the active one")
	}
}

func TestRun_NonVideoRejectedAtIntake(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Run(context.Background(), "notes.txt")
	if !errors.Is(err, media.ErrNotVideo) {
		t.Fatalf("Run() error = %v, want ErrNotVideo", err)
	}
	if st := f.session.Snapshot(); st.State != domsession.StateIdle || st.Error != "" {
		t.Errorf("intake rejection changed the session: %s %q", st.State, st.Error)
	}
}

func TestRun_StageTimeout(t *testing.T) {
	f := newFixture(t, WithStageTimeout(20*time.Millisecond))
	f.recognizer.block = true

	_, err := f.svc.Run(context.Background(), "talk.mp4")
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, speech.ErrRecognition) {
		t.Fatalf("Run() error = %v, want recognition deadline", err)
	}
	if got := f.session.Snapshot().Error; got != appsession.MsgRecognitionFailed {
		t.Errorf("Error = %q", got)
	}
}

func TestRun_StopCancelsRun(t *testing.T) {
	f := newFixture(t)
	f.recognizer.block = true

	updates, unsubscribe := f.session.Subscribe()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		_, err := f.svc.Run(context.Background(), "talk.mp4")
		errCh <- err
	}()

	for st := range updates {
		if st.State == domsession.StateRecognizing {
			break
		}
	}
	f.session.Stop()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Stop")
	}
	if got := f.session.Snapshot().Error; got != appsession.MsgStopped {
		t.Errorf("Error = %q, want %q", got, appsession.MsgStopped)
	}
}

func TestGetSteps(t *testing.T) {
	steps := GetSteps()
	if len(steps) != 4 {
		t.Fatalf("GetSteps() returned %d steps", len(steps))
	}
	for i, s := range steps {
		if s.Number != i+1 || s.Description == "" {
			t.Errorf("step %d = %+v", i, s)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{4 * time.Second, "4s"},
		{90 * time.Second, "1m 30s"},
		{1400 * time.Millisecond, "1s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
