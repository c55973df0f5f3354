package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctvmap/pkg/config"
	"cctvmap/pkg/model"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatasetConfig
		wantName string
		wantErr  bool
	}{
		{name: "Embedded", cfg: config.DatasetConfig{Source: config.SourceEmbedded}, wantName: "embedded"},
		{name: "DefaultsToEmbedded", cfg: config.DatasetConfig{}, wantName: "embedded"},
		{name: "File", cfg: config.DatasetConfig{Source: config.SourceFile, Path: "x.yaml"}, wantName: "file:x.yaml"},
		{name: "Postgres", cfg: config.DatasetConfig{Source: config.SourcePostgres, Postgres: config.PostgresConfig{Table: "locations"}}, wantName: "postgres:locations"},
		{name: "S3", cfg: config.DatasetConfig{Source: config.SourceS3, S3: config.S3Config{
			Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "maps", Key: "gta/locations.yaml",
		}}, wantName: "s3:maps/gta/locations.yaml"},
		{name: "S3MissingCredentials", cfg: config.DatasetConfig{Source: config.SourceS3, S3: config.S3Config{Bucket: "maps", Key: "k"}}, wantErr: true},
		{name: "Unknown", cfg: config.DatasetConfig{Source: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestEmbeddedSource_Load(t *testing.T) {
	locs, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, locs, 20)
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cctv:\n  - {name: Legion Square, x: 195, y: -933}\n"), 0o644))

	locs, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Legion Square", locs[0].Name)
}

func TestS3Source_Matches(t *testing.T) {
	src, err := NewS3Source(config.S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "maps", Key: "locations.yaml"})
	require.NoError(t, err)

	assert.True(t, src.Matches("maps", "locations.yaml"))
	assert.False(t, src.Matches("maps", "other.yaml"))
	assert.False(t, src.Matches("other", "locations.yaml"))
}

func TestPostgresSource_Query(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{table: "locations", want: `SELECT id, name, description, x, y, category, enabled FROM "locations" ORDER BY position`},
		{table: "gta.cameras", want: `SELECT id, name, description, x, y, category, enabled FROM "gta"."cameras" ORDER BY position`},
	}
	for _, tt := range tests {
		s := &PostgresSource{Table: tt.table}
		assert.Equal(t, tt.want, s.query())
	}
}

// fakeRows is an in-memory pgx.Rows.
type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case **string:
			if row[i] == nil {
				*p = nil
			} else {
				s := row[i].(string)
				*p = &s
			}
		case *float64:
			*p = row[i].(float64)
		case *bool:
			*p = row[i].(bool)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanLocations(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{"gov-05", "Sandy Shores Sheriff's Station", "Blaine County", 3696.0, 1818.0, "Government", true},
		{"hosp-04", "Saint Fiacre Hospital", nil, -1552.4, 1136.3, "hospital", false},
	}}

	locs, err := scanLocations(rows)
	require.NoError(t, err)
	require.Len(t, locs, 2)

	assert.Equal(t, model.Location{
		ID: "gov-05", Name: "Sandy Shores Sheriff's Station", Description: "Blaine County",
		Coordinates: model.Point{X: 3696, Y: 1818}, Category: model.CategoryGovernment, Enabled: true,
	}, locs[0])
	assert.Equal(t, "", locs[1].Description)
	assert.False(t, locs[1].Enabled)
}

func TestScanLocations_RowsError(t *testing.T) {
	_, err := scanLocations(&fakeRows{err: errors.New("connection reset")})
	assert.ErrorContains(t, err, "connection reset")
}
