// Package tiles serves map background tiles from an MBTiles file.
package tiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cctvmap/pkg/db"
)

var ErrTileNotFound = errors.New("tile does not exist")

// maxZoom bounds tile coordinates so 1<<z cannot overflow.
const maxZoom = 30

// Metadata is the parsed metadata table, shaped like TileJSON.
type Metadata struct {
	Name        string     `json:"name,omitempty"`
	Format      string     `json:"format,omitempty"`
	Description string     `json:"description,omitempty"`
	Attribution string     `json:"attribution,omitempty"`
	Bounds      [4]float64 `json:"bounds"` // west, south, east, north
	Center      [3]float64 `json:"center"` // lon, lat, zoom
	MinZoom     int        `json:"minzoom"`
	MaxZoom     int        `json:"maxzoom"`
	Errors      []string   `json:"errors,omitempty"`
}

// ContentType maps the tile format to a MIME type.
func (m Metadata) ContentType() string {
	switch strings.ToLower(m.Format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "pbf":
		return "application/x-protobuf"
	default:
		return "image/png"
	}
}

// MBTiles reads tiles from an MBTiles database.
type MBTiles struct {
	db       *db.DB
	tileStmt *sql.Stmt
}

// Open opens an MBTiles file read-only.
func Open(path string) (*MBTiles, error) {
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	for _, table := range []string{"tiles", "metadata"} {
		found, err := d.HasTable(context.Background(), table)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%s is not an MBTiles file: missing %s table", path, table)
		}
	}

	stmt, err := d.Prepare(`SELECT tile_data FROM tiles
WHERE zoom_level = ?1 AND tile_column = ?2 AND tile_row = ?3`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare tile query: %w", err)
	}

	ok = true
	return &MBTiles{db: d, tileStmt: stmt}, nil
}

func (m *MBTiles) Close() error {
	m.tileStmt.Close()
	return m.db.Close()
}

// Tile returns the tile at XYZ coordinates. Rows are stored in TMS order,
// so y is flipped before the lookup.
func (m *MBTiles) Tile(ctx context.Context, z, x, y int) ([]byte, error) {
	if z < 0 || z > maxZoom {
		return nil, ErrTileNotFound
	}
	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		return nil, ErrTileNotFound
	}

	var blob []byte
	err := m.tileStmt.QueryRowContext(ctx, z, x, n-1-y).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tile %d/%d/%d: %w", z, x, y, err)
	}
	return blob, nil
}

// Metadata parses the metadata table. Malformed numeric values are collected
// in Errors rather than failing the call.
func (m *MBTiles) Metadata(ctx context.Context) (Metadata, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	var md Metadata
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata: %w", err)
		}

		var errs []error
		switch name {
		case "bounds":
			errs = fill(value, md.Bounds[:])
		case "center":
			errs = fill(value, md.Center[:])
		case "minzoom":
			md.MinZoom, err = strconv.Atoi(strings.TrimSpace(value))
			errs = append(errs, err)
		case "maxzoom":
			md.MaxZoom, err = strconv.Atoi(strings.TrimSpace(value))
			errs = append(errs, err)
		case "name":
			md.Name = value
		case "format":
			md.Format = value
		case "description":
			md.Description = value
		case "attribution":
			md.Attribution = value
		}
		for _, e := range errs {
			if e != nil {
				md.Errors = append(md.Errors, fmt.Sprintf("%s: %v", name, e))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	return md, nil
}

// fill parses a comma separated list of floats into dst.
func fill(s string, dst []float64) []error {
	parts := strings.Split(s, ",")
	if len(parts) != len(dst) {
		return []error{fmt.Errorf("expected %d values, got %d", len(dst), len(parts))}
	}
	var errs []error
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dst[i] = v
	}
	return errs
}
