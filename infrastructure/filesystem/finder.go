package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileFinder lists candidate video files in a directory
type FileFinder struct{}

// NewFileFinder creates a new FileFinder
func NewFileFinder() *FileFinder {
	return &FileFinder{}
}

// ListVideos returns the files in dir with a known video extension, newest first
func (f *FileFinder) ListVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	type candidate struct {
		path    string
		modUnix int64
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, e.Name()), modUnix: info.ModTime().UnixNano()})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].modUnix == found[j].modUnix {
			return found[i].path < found[j].path
		}
		return found[i].modUnix > found[j].modUnix
	})

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}
