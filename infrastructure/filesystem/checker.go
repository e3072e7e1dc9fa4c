package filesystem

import (
	"os"
	"path/filepath"

	appvideo "video-translator/application/video"
	"video-translator/domain/media"
)

// Checker implements media.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the path exists and is a regular file
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFile writes data to path, creating parent directories
func (c *Checker) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Ensure Checker implements the file ports
var (
	_ media.FileChecker    = (*Checker)(nil)
	_ appvideo.AudioWriter = (*Checker)(nil)
)
