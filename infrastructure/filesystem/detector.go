package filesystem

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"video-translator/domain/media"
)

// sniffLen is the number of bytes http.DetectContentType considers
const sniffLen = 512

// videoExtensions covers containers that mime.TypeByExtension misses on
// systems without a populated mime database
var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
	".3gp":  "video/3gpp",
}

// Detector implements media.TypeDetector from the file extension, falling
// back to content sniffing
type Detector struct{}

// NewDetector creates a new type detector
func NewDetector() *Detector {
	return &Detector{}
}

// DetectType returns the media type of the file at path
func (d *Detector) DetectType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoExtensions[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

var _ media.TypeDetector = (*Detector)(nil)
