package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"video-translator/domain/media"
)

// IntakeService accepts user-supplied files as videos
type IntakeService struct {
	fileChecker media.FileChecker
	detector    media.TypeDetector
	logger      *slog.Logger
}

// IntakeOption is a functional option for configuring IntakeService
type IntakeOption func(*IntakeService)

// WithIntakeLogger sets the logger
func WithIntakeLogger(l *slog.Logger) IntakeOption {
	return func(s *IntakeService) {
		s.logger = l
	}
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(fileChecker media.FileChecker, detector media.TypeDetector, opts ...IntakeOption) *IntakeService {
	s := &IntakeService{
		fileChecker: fileChecker,
		detector:    detector,
		logger:      slog.With("component", "intake"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Accept returns the file as a VideoFile. Files that are not video fail with
// ErrNotVideo and are logged at debug level only. Whether the file decodes is
// checked later, by the extraction stage.
func (s *IntakeService) Accept(ctx context.Context, path string) (*media.VideoFile, error) {
	if !s.fileChecker.Exists(path) {
		return nil, fmt.Errorf("source video does not exist: %s", path)
	}

	mimeType, err := s.detector.DetectType(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect media type of %s: %w", path, err)
	}

	file, err := media.NewVideoFile(path, mimeType)
	if err != nil {
		s.logger.Debug("skipping file", "path", path, "type", mimeType)
		return nil, err
	}

	return file, nil
}

// Filter keeps the paths that are accepted as video, in order. Rejected
// files are skipped silently; other intake failures are returned.
func (s *IntakeService) Filter(ctx context.Context, paths []string) ([]*media.VideoFile, error) {
	var files []*media.VideoFile
	for _, p := range paths {
		file, err := s.Accept(ctx, p)
		if err != nil {
			if errors.Is(err, media.ErrNotVideo) {
				continue
			}
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
