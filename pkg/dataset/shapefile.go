package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"

	"cctvmap/pkg/model"
)

// readShapefile reads a point shapefile. DBF column names are matched
// case-insensitively; names are truncated to 10 characters by the format, so
// any column starting with "desc" is the description.
func readShapefile(path string) ([]model.Location, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	cols := make(map[string]int)
	for i, f := range shape.Fields() {
		name := strings.ToLower(strings.TrimSpace(f.String()))
		if strings.HasPrefix(name, "desc") {
			name = "description"
		}
		cols[name] = i
	}

	attr := func(row int, key string) string {
		i, ok := cols[key]
		if !ok {
			return ""
		}
		return strings.Trim(shape.ReadAttribute(row, i), " \x00")
	}

	var out []model.Location
	for shape.Next() {
		n, p := shape.Shape()

		pt, ok := p.(*shp.Point)
		if !ok {
			slog.Warn("Skipping non-point shape", "type", fmt.Sprintf("%T", p), "row", n)
			continue
		}

		loc := model.Location{
			ID:          attr(n, "id"),
			Name:        attr(n, "name"),
			Description: attr(n, "description"),
			Coordinates: model.Point{X: pt.X, Y: pt.Y},
			Category:    model.NormalizeCategory(attr(n, "category")),
			Enabled:     true,
		}
		if v := attr(n, "enabled"); v != "" {
			loc.Enabled = parseDBFBool(v)
		}
		if v := attr(n, "z"); v != "" {
			loc.Z, _ = strconv.ParseFloat(v, 64)
		}
		if v := attr(n, "rotation"); v != "" {
			loc.Rotation, _ = strconv.ParseFloat(v, 64)
		}
		if loc.ID == "" {
			loc.ID = fmt.Sprintf("shp-%d", n+1)
		}
		out = append(out, loc)
	}

	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shapes: %w", err)
	}
	return out, nil
}

// parseDBFBool accepts DBF logical values (T/F/Y/N) as well as 1/0 and true/false.
func parseDBFBool(v string) bool {
	switch strings.ToLower(v) {
	case "t", "y", "1", "true", "yes":
		return true
	default:
		return false
	}
}
