package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// VideoFile is a user-supplied video accepted at intake
type VideoFile struct {
	Path     string
	MIMEType string
}

// NewVideoFile creates a VideoFile, rejecting anything that is not a video media type
func NewVideoFile(path, mimeType string) (*VideoFile, error) {
	if path == "" {
		return nil, fmt.Errorf("source video path is required")
	}

	if !IsVideoMIME(mimeType) {
		return nil, fmt.Errorf("%w: %s has type %q", ErrNotVideo, filepath.Base(path), mimeType)
	}

	return &VideoFile{
		Path:     path,
		MIMEType: mimeType,
	}, nil
}

// IsVideoMIME reports whether mimeType is a video/* media type
func IsVideoMIME(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "video/")
}

// BaseName returns the file name without directory and extension
func (v *VideoFile) BaseName() string {
	name := filepath.Base(v.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
