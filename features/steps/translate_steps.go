//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-translator/application/pipeline"
	appsession "video-translator/application/session"
	appvideo "video-translator/application/video"
	"video-translator/cmd"
	"video-translator/domain/media"
	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/filesystem"
	"video-translator/infrastructure/stub"

	"github.com/cucumber/godog"
)

// audioExtractor returns the WAV registered for each source file
type audioExtractor struct {
	tracks map[string][]byte
}

func (m *audioExtractor) Extract(ctx context.Context, req *media.ExtractionRequest) (*media.AudioBuffer, error) {
	data, ok := m.tracks[req.Source.Path]
	if !ok {
		return nil, fmt.Errorf("no audio track for %s", req.Source.Path)
	}
	return media.NewAudioBuffer(data)
}

// scriptedRecognizer hears whatever the scenario says the video contains
type scriptedRecognizer struct {
	text string
}

func (m *scriptedRecognizer) Recognize(ctx context.Context, audio *media.AudioBuffer) (speech.Transcript, error) {
	return speech.NewTranscript(m.text, speech.SourceLanguage)
}

// translateContext holds test state for translate scenarios
type translateContext struct {
	cfg        *config.Config
	dir        string
	extractor  *audioExtractor
	recognizer *scriptedRecognizer
	synth      *stub.Synthesizer
	session    *appsession.Session
	output     *bytes.Buffer
	lastID     string
	err        error
}

// SharedTranslateContext is reset before each scenario
var SharedTranslateContext *translateContext

func getTranslateContext() *translateContext {
	return SharedTranslateContext
}

// InitializeTranslateScenario registers the translate steps
func InitializeTranslateScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "video-translator-*")
		if err != nil {
			return ctx, err
		}
		SharedTranslateContext = &translateContext{
			cfg:        config.Default(),
			dir:        dir,
			extractor:  &audioExtractor{tracks: make(map[string][]byte)},
			recognizer: &scriptedRecognizer{},
			synth:      stub.NewSynthesizer(),
			output:     &bytes.Buffer{},
		}
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc := getTranslateContext(); tc != nil {
			os.RemoveAll(tc.dir)
		}
		return ctx, nil
	})

	ctx.Step(`^a translation session with default settings$`, aTranslationSessionWithDefaultSettings)
	ctx.Step(`^a video "([^"]*)" whose audio says "([^"]*)"$`, aVideoWhoseAudioSays)
	ctx.Step(`^a silent video "([^"]*)" of (\d+) seconds$`, aSilentVideoOfSeconds)
	ctx.Step(`^a text file "([^"]*)"$`, aTextFile)
	ctx.Step(`^the translated volume is ([0-9.]+)$`, theTranslatedVolumeIs)
	ctx.Step(`^audio output is disabled$`, audioOutputIsDisabled)
	ctx.Step(`^I translate "([^"]*)"$`, iTranslate)
	ctx.Step(`^I translate "([^"]*)" and "([^"]*)"$`, iTranslateBoth)
	ctx.Step(`^I translate "([^"]*)" (\d+) times$`, iTranslateTimes)
	ctx.Step(`^the run should succeed$`, theRunShouldSucceed)
	ctx.Step(`^the run should fail with "([^"]*)"$`, theRunShouldFailWith)
	ctx.Step(`^the session state should be "([^"]*)"$`, theSessionStateShouldBe)
	ctx.Step(`^the last transcript should be "([^"]*)"$`, theLastTranscriptShouldBe)
	ctx.Step(`^the history should have (\d+) entr(?:y|ies)$`, theHistoryShouldHaveEntries)
	ctx.Step(`^history entry (\d+) should be translated as "([^"]*)"$`, historyEntryShouldBeTranslatedAs)
	ctx.Step(`^history entry 1 should be the most recent run$`, historyEntryOneShouldBeTheMostRecentRun)
	ctx.Step(`^"([^"]*)" should be spoken at volume ([0-9.]+)$`, shouldBeSpokenAtVolume)
	ctx.Step(`^nothing should be spoken$`, nothingShouldBeSpoken)
	ctx.Step(`^the output should not mention "([^"]*)"$`, theOutputShouldNotMention)
}

func aTranslationSessionWithDefaultSettings() error {
	tc := getTranslateContext()
	tc.session = cmd.NewSession(tc.cfg, tc.synth)
	return nil
}

func tone(seconds int, amplitude int) ([]byte, error) {
	samples := make([]int, 16000*seconds)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return media.EncodeWAV(&media.PCM{Samples: samples, SampleRate: 16000, Channels: 1, BitDepth: 16})
}

func (tc *translateContext) addFile(name string) (string, error) {
	path := filepath.Join(tc.dir, name)
	return path, os.WriteFile(path, []byte("content"), 0644)
}

func aVideoWhoseAudioSays(name, text string) error {
	tc := getTranslateContext()
	path, err := tc.addFile(name)
	if err != nil {
		return err
	}
	wav, err := tone(1, 8000)
	if err != nil {
		return err
	}
	tc.extractor.tracks[path] = wav
	tc.recognizer.text = text
	return nil
}

func aSilentVideoOfSeconds(name string, seconds int) error {
	tc := getTranslateContext()
	path, err := tc.addFile(name)
	if err != nil {
		return err
	}
	wav, err := tone(seconds, 0)
	if err != nil {
		return err
	}
	tc.extractor.tracks[path] = wav
	// the silence gate must stop this before the recognizer is reached
	tc.recognizer.text = "should never be heard"
	return nil
}

func aTextFile(name string) error {
	_, err := getTranslateContext().addFile(name)
	return err
}

func theTranslatedVolumeIs(v float64) error {
	return getTranslateContext().session.SetTranslatedVolume(v)
}

func audioOutputIsDisabled() error {
	getTranslateContext().session.SetAudioEnabled(false)
	return nil
}

func (tc *translateContext) service() *pipeline.Service {
	files := filesystem.NewChecker()
	deps := &cmd.Dependencies{
		Intake:      appvideo.NewIntakeService(files, filesystem.NewDetector()),
		Extract:     appvideo.NewExtractService(tc.extractor, 0, 0),
		Recognizer:  pipeline.NewSilenceGate(tc.recognizer, tc.cfg.Audio.SilenceThreshold),
		Translator:  stub.NewTranslator(tc.cfg.Languages.Target),
		Synthesizer: tc.synth,
		Files:       files,
		Finder:      filesystem.NewFileFinder(),
	}
	return cmd.NewPipeline(tc.cfg, deps, tc.session, tc.output)
}

func (tc *translateContext) translate(names ...string) error {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(tc.dir, n)
	}
	tc.err = cmd.RunTranslateWithDependencies(context.Background(), tc.service(), paths, tc.output)
	return nil
}

func iTranslate(name string) error {
	return getTranslateContext().translate(name)
}

func iTranslateBoth(first, second string) error {
	return getTranslateContext().translate(first, second)
}

func iTranslateTimes(name string, n int) error {
	tc := getTranslateContext()
	svc := tc.service()
	path := filepath.Join(tc.dir, name)
	for i := 0; i < n; i++ {
		entry, err := svc.Run(context.Background(), path)
		if err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		if err := tc.session.WaitSpeech(context.Background()); err != nil {
			return err
		}
		tc.lastID = entry.ID
	}
	return nil
}

func theRunShouldSucceed() error {
	tc := getTranslateContext()
	if tc.err != nil {
		return fmt.Errorf("expected success, got %v\nOutput: %s", tc.err, tc.output.String())
	}
	return nil
}

func theRunShouldFailWith(msg string) error {
	tc := getTranslateContext()
	if tc.err == nil {
		return fmt.Errorf("expected the run to fail")
	}
	if got := tc.session.Snapshot().Error; got != msg {
		return fmt.Errorf("expected session error %q, got %q", msg, got)
	}
	return nil
}

func theSessionStateShouldBe(state string) error {
	if got := getTranslateContext().session.Snapshot().State.String(); got != state {
		return fmt.Errorf("expected state %q, got %q", state, got)
	}
	return nil
}

func theLastTranscriptShouldBe(text string) error {
	if got := getTranslateContext().session.Snapshot().LastTranscript; got != text {
		return fmt.Errorf("expected last transcript %q, got %q", text, got)
	}
	return nil
}

func theHistoryShouldHaveEntries(n int) error {
	if got := len(getTranslateContext().session.History()); got != n {
		return fmt.Errorf("expected %d history entries, got %d", n, got)
	}
	return nil
}

func historyEntryShouldBeTranslatedAs(i int, text string) error {
	history := getTranslateContext().session.History()
	if i < 1 || i > len(history) {
		return fmt.Errorf("history has %d entries, no entry %d", len(history), i)
	}
	if got := history[i-1].Translated.Text; got != text {
		return fmt.Errorf("expected entry %d translated as %q, got %q", i, text, got)
	}
	return nil
}

func historyEntryOneShouldBeTheMostRecentRun() error {
	tc := getTranslateContext()
	history := tc.session.History()
	if len(history) == 0 {
		return fmt.Errorf("history is empty")
	}
	if history[0].ID != tc.lastID {
		return fmt.Errorf("expected entry 1 to be run %s, got %s", tc.lastID, history[0].ID)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			return fmt.Errorf("entry %d is newer than entry %d", i+1, i)
		}
	}
	return nil
}

func shouldBeSpokenAtVolume(text string, volume float64) error {
	spoken := getTranslateContext().synth.Spoken()
	for _, u := range spoken {
		if u.Text == text {
			if u.Volume != volume {
				return fmt.Errorf("expected %q at volume %v, got %v", text, volume, u.Volume)
			}
			return nil
		}
	}
	return fmt.Errorf("%q was not spoken; spoken: %+v", text, spoken)
}

func nothingShouldBeSpoken() error {
	if spoken := getTranslateContext().synth.Spoken(); len(spoken) != 0 {
		return fmt.Errorf("expected no speech, got %+v", spoken)
	}
	return nil
}

func theOutputShouldNotMention(s string) error {
	if out := getTranslateContext().output.String(); strings.Contains(out, s) {
		return fmt.Errorf("output mentions %q:\n%s", s, out)
	}
	return nil
}
