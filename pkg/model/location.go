package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a position in game-world units. X grows east, Y grows north.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsFinite reports whether both axes are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalJSON writes non-finite axes as null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}{finiteOrNil(p.X), finiteOrNil(p.Y)})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Location is a fixed in-world marker (camera, station, shop).
type Location struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Coordinates Point    `json:"coordinates" yaml:"coordinates"`
	Category    Category `json:"category" yaml:"category"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`

	// Camera metadata carried over from raw CCTV rows. Informational only.
	Z        float64 `json:"z,omitempty" yaml:"z,omitempty"`
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// DisplayName returns the name, falling back to the id.
func (l *Location) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}
