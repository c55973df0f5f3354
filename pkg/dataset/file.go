package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cctvmap/pkg/model"
)

// LoadFile reads a dataset from disk, picking the decoder by extension.
func LoadFile(path string) ([]model.Location, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".shp" {
		return readShapefile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Decode(data, ext)
}

// Decode parses in-memory dataset bytes. ext selects the format and includes the dot.
func Decode(data []byte, ext string) ([]model.Location, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
		return decodeDocument(data)
	case ".geojson":
		return decodeGeoJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
