package api

import (
	"net/http"
	"os"
	"strings"
)

// spaFileSystem falls back to index.html for unknown paths so client-side
// routes (e.g. /locations/gov-01) load the app.
type spaFileSystem struct {
	root http.FileSystem
}

// Open opens the named file, or index.html if it does not exist. Missing
// /api/ and /tiles/ paths stay 404s.
func (s *spaFileSystem) Open(name string) (http.File, error) {
	f, err := s.root.Open(name)
	if os.IsNotExist(err) {
		if strings.HasPrefix(name, "/api/") || strings.HasPrefix(name, "/tiles/") {
			return nil, err
		}
		return s.root.Open("index.html")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
