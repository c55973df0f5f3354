package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cctvmap/pkg/config"
	"cctvmap/pkg/model"
)

// Source yields the full location list.
type Source interface {
	Load(ctx context.Context) ([]model.Location, error)
	Name() string
}

// NewSource builds the source selected in configuration.
func NewSource(cfg config.DatasetConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return EmbeddedSource{}, nil
	case config.SourceFile:
		return FileSource{Path: cfg.Path}, nil
	case config.SourceS3:
		return NewS3Source(cfg.S3)
	case config.SourcePostgres:
		return &PostgresSource{URL: cfg.Postgres.URL, Table: cfg.Postgres.Table}, nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(context.Context) ([]model.Location, error) { return Default() }
func (EmbeddedSource) Name() string                                  { return config.SourceEmbedded }

// FileSource reads a local file on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) ([]model.Location, error) { return LoadFile(s.Path) }
func (s FileSource) Name() string                                  { return config.SourceFile + ":" + s.Path }

// ObjectGetter is the subset of the MinIO client used to fetch the dataset object.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// S3Source fetches the dataset from an S3-compatible bucket.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Source connects to the configured endpoint. No request is made until Load.
func NewS3Source(cfg config.S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing S3 endpoint or credentials (MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY)")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	slog.Info("Dataset object store configured", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "key", cfg.Key)
	return &S3Source{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

func (s *S3Source) Load(ctx context.Context) ([]model.Location, error) {
	return s.LoadObject(ctx, s.bucket, s.key)
}

// LoadObject fetches and decodes an arbitrary object. Used when a bucket
// notification names the object directly.
func (s *S3Source) LoadObject(ctx context.Context, bucket, key string) ([]model.Location, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	return Decode(data, path.Ext(key))
}

// Matches reports whether an object reference is this source's dataset.
func (s *S3Source) Matches(bucket, key string) bool {
	return bucket == s.bucket && key == s.key
}

func (s *S3Source) Name() string { return config.SourceS3 + ":" + s.bucket + "/" + s.key }

// PostgresSource reads the dataset from a table, read-only.
// Expected columns: id, name, description, x, y, category, enabled, position.
type PostgresSource struct {
	URL   string
	Table string
}

func (s *PostgresSource) Load(ctx context.Context) ([]model.Location, error) {
	conn, err := pgx.Connect(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	return scanLocations(rows)
}

func (s *PostgresSource) query() string {
	table := pgx.Identifier(strings.Split(s.Table, ".")).Sanitize()
	return "SELECT id, name, description, x, y, category, enabled FROM " + table + " ORDER BY position"
}

func (s *PostgresSource) Name() string { return config.SourcePostgres + ":" + s.Table }

func scanLocations(rows pgx.Rows) ([]model.Location, error) {
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var (
			l    model.Location
			desc *string
			cat  string
		)
		if err := rows.Scan(&l.ID, &l.Name, &desc, &l.Coordinates.X, &l.Coordinates.Y, &cat, &l.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		if desc != nil {
			l.Description = *desc
		}
		l.Category = model.NormalizeCategory(cat)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read location rows: %w", err)
	}
	return out, nil
}
