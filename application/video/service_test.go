package video

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"video-translator/domain/media"
)

type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

type mockDetector struct {
	types map[string]string
}

func (m *mockDetector) DetectType(path string) (string, error) {
	if t, ok := m.types[path]; ok {
		return t, nil
	}
	return "", errors.New("unreadable")
}

type mockValidator struct {
	err error
}

func (m *mockValidator) Validate(ctx context.Context, file *media.VideoFile) error {
	return m.err
}

type mockExtractor struct {
	lastRequest *media.ExtractionRequest
	buf         *media.AudioBuffer
	err         error
}

func (m *mockExtractor) Extract(ctx context.Context, req *media.ExtractionRequest) (*media.AudioBuffer, error) {
	m.lastRequest = req
	return m.buf, m.err
}

type mockWriter struct {
	written map[string][]byte
}

func (m *mockWriter) WriteFile(path string, data []byte) error {
	if m.written == nil {
		m.written = make(map[string][]byte)
	}
	m.written[path] = data
	return nil
}

func newIntake(opts ...IntakeOption) *IntakeService {
	checker := &mockFileChecker{existingFiles: map[string]bool{
		"talk.mp4":  true,
		"notes.txt": true,
		"clip.webm": true,
	}}
	detector := &mockDetector{types: map[string]string{
		"talk.mp4":  "video/mp4",
		"notes.txt": "text/plain; charset=utf-8",
		"clip.webm": "video/webm",
	}}
	return NewIntakeService(checker, detector, opts...)
}

func TestIntakeService_Accept(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
		wantAny bool
	}{
		{name: "video accepted", path: "talk.mp4"},
		{name: "text rejected", path: "notes.txt", wantErr: media.ErrNotVideo},
		{name: "missing file", path: "gone.mp4", wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := newIntake().Accept(context.Background(), tt.path)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Accept() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAny:
				if err == nil {
					t.Error("Accept() expected error")
				}
			default:
				if err != nil {
					t.Fatalf("Accept() unexpected error: %v", err)
				}
				if file.MIMEType != "video/mp4" {
					t.Errorf("MIMEType = %q", file.MIMEType)
				}
			}
		})
	}
}

func TestIntakeService_FilterSkipsNonVideo(t *testing.T) {
	files, err := newIntake().Filter(context.Background(), []string{"notes.txt", "talk.mp4", "clip.webm"})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(files) != 2 || files[0].Path != "talk.mp4" || files[1].Path != "clip.webm" {
		t.Errorf("Filter() = %+v", files)
	}

	if _, err := newIntake().Filter(context.Background(), []string{"gone.mp4"}); err == nil {
		t.Error("Filter() should report missing files")
	}
}

func TestExtractService_Extract(t *testing.T) {
	buf := &media.AudioBuffer{WAV: []byte("RIFF"), SampleRate: 16000, Channels: 1}
	extractor := &mockExtractor{buf: buf}
	svc := NewExtractService(extractor, 0, 0)
	file := &media.VideoFile{Path: "talk.mp4", MIMEType: "video/mp4"}

	got, err := svc.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got != buf {
		t.Error("Extract() should return the extractor buffer")
	}
	if extractor.lastRequest.SampleRate != media.DefaultSampleRate || extractor.lastRequest.Channels != media.DefaultChannels {
		t.Errorf("request = %+v, want speech defaults", extractor.lastRequest)
	}
}

func TestExtractService_ErrorsAreExtractionErrors(t *testing.T) {
	file := &media.VideoFile{Path: "talk.mp4", MIMEType: "video/mp4"}

	_, err := NewExtractService(&mockExtractor{err: errors.New("exit status 1")}, 0, 0).Extract(context.Background(), file)
	if !errors.Is(err, media.ErrExtraction) {
		t.Errorf("adapter failure = %v, want ErrExtraction", err)
	}

	_, err = NewExtractService(&mockExtractor{}, 4000, 1).Extract(context.Background(), file)
	if !errors.Is(err, media.ErrExtraction) {
		t.Errorf("bad request = %v, want ErrExtraction", err)
	}
}

func TestExtractService_ValidatorRunsBeforeExtraction(t *testing.T) {
	file := &media.VideoFile{Path: "talk.mp4", MIMEType: "video/mp4"}
	buf := &media.AudioBuffer{WAV: []byte("RIFF")}

	tests := []struct {
		name        string
		validateErr error
		wantErr     bool
		wantCalled  bool
	}{
		{name: "valid video is extracted", wantCalled: true},
		{name: "undecodable video fails as extraction", validateErr: errors.New("no decodable frames"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &mockExtractor{buf: buf}
			svc := NewExtractService(extractor, 0, 0, WithValidator(&mockValidator{err: tt.validateErr}))

			_, err := svc.Extract(context.Background(), file)
			if tt.wantErr {
				if !errors.Is(err, media.ErrExtraction) {
					t.Errorf("Extract() error = %v, want ErrExtraction", err)
				}
				if errors.Is(err, media.ErrNotVideo) {
					t.Error("an undecodable video must not look like a skipped non-video file")
				}
			} else if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if (extractor.lastRequest != nil) != tt.wantCalled {
				t.Errorf("extractor called = %v, want %v", extractor.lastRequest != nil, tt.wantCalled)
			}
		})
	}
}

func TestExtractService_ExtractToFile(t *testing.T) {
	buf := &media.AudioBuffer{WAV: []byte("RIFFdata")}
	svc := NewExtractService(&mockExtractor{buf: buf}, 0, 0)
	file := &media.VideoFile{Path: "/videos/talk.mp4", MIMEType: "video/mp4"}
	writer := &mockWriter{}

	res, err := svc.ExtractToFile(context.Background(), file, writer, "audio", "")
	if err != nil {
		t.Fatalf("ExtractToFile() error: %v", err)
	}
	want := filepath.Join("audio", "talk.wav")
	if res.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, want)
	}
	if string(writer.written[want]) != "RIFFdata" {
		t.Errorf("written = %q", writer.written[want])
	}

	res, err = svc.ExtractToFile(context.Background(), file, writer, "audio", "out.wav")
	if err != nil || res.OutputPath != "out.wav" {
		t.Errorf("explicit output = %q, %v", res.OutputPath, err)
	}
}
