package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// datasetExts are the file types a dataset can be loaded from. Shapefile
// sidecars (.dbf) count too since attribute edits only touch that file.
var datasetExts = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".geojson": true, ".shp": true, ".dbf": true,
}

// Service monitors dataset files for modification.
type Service struct {
	paths       []string
	lastChecked time.Time
	mu          sync.Mutex
	lastChanged string
}

// NewService creates a monitor for the given dataset files.
func NewService(paths []string) (*Service, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files to watch")
	}

	var watched []string
	for _, path := range paths {
		if !datasetExts[strings.ToLower(filepath.Ext(path))] {
			return nil, fmt.Errorf("unsupported dataset file %q", path)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Warn("Watcher: Dataset file does not exist yet", "path", path)
		}
		watched = append(watched, path)
		// A shapefile's attributes live beside it.
		if strings.EqualFold(filepath.Ext(path), ".shp") {
			watched = append(watched, strings.TrimSuffix(path, filepath.Ext(path))+".dbf")
		}
	}

	return &Service{
		paths:       watched,
		lastChecked: time.Now(),
	}, nil
}

// CheckChanged returns the most recently modified watched file if any was
// modified since the last successful check.
func (s *Service) CheckChanged() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newestPath string
	var newestTime time.Time

	for _, path := range s.paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		modTime := info.ModTime()
		if modTime.After(s.lastChecked) && modTime.After(newestTime) {
			newestTime = modTime
			newestPath = path
		}
	}

	if newestPath == "" {
		return "", false
	}

	s.lastChecked = newestTime
	s.lastChanged = newestPath
	slog.Info("Watcher: Dataset file changed", "file", newestPath, "modified", newestTime)
	return newestPath, true
}

// LastChanged returns the file reported by the most recent successful check.
func (s *Service) LastChanged() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChanged
}
