package dataset

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"cctvmap/pkg/model"
)

// decodeGeoJSON reads Point features. Properties: id, name, description,
// category, enabled (default true). A missing id property falls back to the
// feature id.
func decodeGeoJSON(data []byte) ([]model.Location, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	out := make([]model.Location, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature #%d: expected Point geometry, got %T", i+1, f.Geometry)
		}

		id := f.Properties.MustString("id", "")
		if id == "" && f.ID != nil {
			id = fmt.Sprint(f.ID)
		}

		out = append(out, model.Location{
			ID:          id,
			Name:        f.Properties.MustString("name", ""),
			Description: f.Properties.MustString("description", ""),
			Coordinates: model.Point{X: pt[0], Y: pt[1]},
			Category:    model.NormalizeCategory(f.Properties.MustString("category", "")),
			Enabled:     f.Properties.MustBool("enabled", true),
			Z:           f.Properties.MustFloat64("z", 0),
			Rotation:    f.Properties.MustFloat64("rotation", 0),
		})
	}
	return out, nil
}

// ToFeatureCollection exports locations as GeoJSON Point features in world units.
func ToFeatureCollection(locs []model.Location) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range locs {
		l := &locs[i]
		f := geojson.NewFeature(orb.Point{l.Coordinates.X, l.Coordinates.Y})
		f.ID = l.ID
		f.Properties["id"] = l.ID
		f.Properties["name"] = l.Name
		f.Properties["description"] = l.Description
		f.Properties["category"] = string(l.Category)
		f.Properties["enabled"] = l.Enabled
		if l.Z != 0 {
			f.Properties["z"] = l.Z
		}
		if l.Rotation != 0 {
			f.Properties["rotation"] = l.Rotation
		}
		fc.Append(f)
	}
	return fc
}
