// Package dataset loads and validates the static location list.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"cctvmap/pkg/model"
)

//go:embed data/locations.yaml
var defaultLocations []byte

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Document is the YAML/JSON dataset layout. Raw CCTV rows are converted and
// appended after the explicit locations.
type Document struct {
	Locations []model.Location `yaml:"locations" json:"locations"`
	CCTV      []CCTVRow        `yaml:"cctv,omitempty" json:"cctv,omitempty"`
}

// CCTVRow is a camera exported straight from the game server resource.
// Every field is optional.
type CCTVRow struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	X           float64 `yaml:"x" json:"x"`
	Y           float64 `yaml:"y" json:"y"`
	Z           float64 `yaml:"z" json:"z"`
	Rotation    float64 `yaml:"rotation" json:"rotation"`
}

// FromCCTVRows converts raw camera rows. Ids are cctv-1, cctv-2, ... in row
// order; a missing name becomes "CCTV <n>". All cameras start enabled.
func FromCCTVRows(rows []CCTVRow) []model.Location {
	out := make([]model.Location, len(rows))
	for i, r := range rows {
		n := i + 1
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("CCTV %d", n)
		}
		out[i] = model.Location{
			ID:          fmt.Sprintf("cctv-%d", n),
			Name:        name,
			Description: r.Description,
			Coordinates: model.Point{X: r.X, Y: r.Y},
			Category:    model.CategoryEmergency,
			Enabled:     true,
			Z:           r.Z,
			Rotation:    r.Rotation,
		}
	}
	return out
}

// Default returns the embedded emergency-services dataset.
func Default() ([]model.Location, error) {
	return decodeDocument(defaultLocations)
}

// decodeDocument parses YAML or JSON (yaml.v3 accepts both).
func decodeDocument(data []byte) ([]model.Location, error) {
	var doc Document
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	for i := range doc.Locations {
		doc.Locations[i].Category = model.NormalizeCategory(string(doc.Locations[i].Category))
	}
	return append(doc.Locations, FromCCTVRows(doc.CCTV)...), nil
}

// Validate checks that ids are present and unique, coordinates are finite and
// every category belongs to allowed. All violations are reported together.
func Validate(locs []model.Location, allowed []model.Category) error {
	var errs []error
	seen := make(map[string]int, len(locs))

	for i := range locs {
		l := &locs[i]
		switch {
		case l.ID == "":
			errs = append(errs, fmt.Errorf("location #%d: empty id", i+1))
		default:
			if first, dup := seen[l.ID]; dup {
				errs = append(errs, fmt.Errorf("location %q: duplicate id (first at #%d)", l.ID, first+1))
			} else {
				seen[l.ID] = i
			}
		}
		if !l.Coordinates.IsFinite() {
			errs = append(errs, fmt.Errorf("location %q: non-finite coordinates %s", l.ID, l.Coordinates))
		}
		if !l.Category.In(allowed) {
			errs = append(errs, fmt.Errorf("location %q: category %q not in configured set", l.ID, l.Category))
		}
	}
	return errors.Join(errs...)
}
