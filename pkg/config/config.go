package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Categories CategoriesConfig `yaml:"categories"`
	Projection ProjectionConfig `yaml:"projection"`
	Tiles      TilesConfig      `yaml:"tiles"`
	Cluster    ClusterConfig    `yaml:"cluster"`
	Reload     ReloadConfig     `yaml:"reload"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string   `yaml:"address"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Trace    bool        `yaml:"trace"` // per-recompute debug lines
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Dataset sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// DatasetConfig selects where the location list comes from.
type DatasetConfig struct {
	Source   string         `yaml:"source"` // embedded, file, s3, postgres
	Path     string         `yaml:"path"`   // file source: .yaml, .yml, .json, .geojson, .shp
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// S3Config holds settings for an S3-compatible object store.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
}

// PostgresConfig holds settings for the read-only PostgreSQL dataset source.
type PostgresConfig struct {
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

// Projection variants.
const (
	ProjectionAffine = "affine"
	ProjectionDivide = "divide"
)

// ProjectionConfig selects the world-to-map transform.
type ProjectionConfig struct {
	Variant string       `yaml:"variant"` // affine, divide
	Affine  AffineConfig `yaml:"affine"`
	Divide  DivideConfig `yaml:"divide"`
}

// AffineConfig holds the per-axis scale and offset of the affine projection.
type AffineConfig struct {
	ScaleX  float64 `yaml:"scale_x"`
	OffsetX float64 `yaml:"offset_x"`
	ScaleY  float64 `yaml:"scale_y"`
	OffsetY float64 `yaml:"offset_y"`
}

// DivideConfig holds the divisor of the slippy-map projection.
type DivideConfig struct {
	Factor float64 `yaml:"factor"`
}

// TilesConfig points at an optional MBTiles background.
type TilesConfig struct {
	Path        string `yaml:"path"`
	Placeholder bool   `yaml:"placeholder"`
}

// ClusterConfig holds marker clustering settings.
type ClusterConfig struct {
	CellSize float64 `yaml:"cell_size"`
	MaxZoom  int     `yaml:"max_zoom"`
}

// ReloadConfig holds dataset hot-reload settings.
type ReloadConfig struct {
	Kafka KafkaConfig     `yaml:"kafka"`
	File  FileWatchConfig `yaml:"file"`
}

// KafkaConfig holds settings for the bucket-notification consumer.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// FileWatchConfig holds settings for polling a dataset file.
type FileWatchConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      "localhost:1930",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(15 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		Dataset: DatasetConfig{
			Source: SourceEmbedded,
			S3: S3Config{
				Bucket: "cctvmap",
				Key:    "locations.yaml",
			},
			Postgres: PostgresConfig{
				Table: "locations",
			},
		},
		Categories: CategoriesConfig{
			Set: "emergency",
		},
		Projection: ProjectionConfig{
			Variant: ProjectionAffine,
			Affine: AffineConfig{
				ScaleX:  0.02072,
				OffsetX: 117.3,
				ScaleY:  -0.0205,
				OffsetY: 172.8,
			},
			Divide: DivideConfig{
				Factor: 100,
			},
		},
		Tiles: TilesConfig{
			Placeholder: true,
		},
		Cluster: ClusterConfig{
			CellSize: 64,
			MaxZoom:  6,
		},
		Reload: ReloadConfig{
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "cctvmap-dataset",
				GroupID: "cctvmap",
			},
			File: FileWatchConfig{
				Interval: Duration(5 * time.Second),
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
// A .env file next to the working directory is loaded first; environment values fill secrets and addresses.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)
	cfg.Dataset.Path = expandPath(cfg.Dataset.Path)
	cfg.Tiles.Path = expandPath(cfg.Tiles.Path)
	cfg.Log.Server.Path = expandPath(cfg.Log.Server.Path)
	cfg.Log.Requests.Path = expandPath(cfg.Log.Requests.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills values from the environment. Env overrides are never saved back to disk.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CCTVMAP_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("CCTVMAP_DATASET"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("CCTVMAP_CATEGORY_SET"); v != "" {
		cfg.Categories.Set = v
	}
	if v := os.Getenv("CCTVMAP_KAFKA_BROKERS"); v != "" {
		cfg.Reload.Kafka.Brokers = strings.Split(v, ",")
	}

	// Secrets only fill empty values.
	if cfg.Dataset.S3.Endpoint == "" {
		cfg.Dataset.S3.Endpoint = os.Getenv("MINIO_ENDPOINT")
	}
	if cfg.Dataset.S3.AccessKey == "" {
		cfg.Dataset.S3.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	}
	if cfg.Dataset.S3.SecretKey == "" {
		cfg.Dataset.S3.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	}
	if os.Getenv("MINIO_USE_SSL") == "true" {
		cfg.Dataset.S3.UseSSL = true
	}
	if cfg.Dataset.Postgres.URL == "" {
		cfg.Dataset.Postgres.URL = os.Getenv("DATABASE_URL")
	}
}

var windowsEnvRegex = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// expandPath expands $VAR, ${VAR} and %VAR% references.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = windowsEnvRegex.ReplaceAllStringFunc(p, func(m string) string {
		return os.Getenv(strings.Trim(m, "%"))
	})
	return os.ExpandEnv(p)
}

// Validate checks enum fields and required values.
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceEmbedded:
	case SourceFile:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for source %q", SourceFile)
		}
	case SourceS3:
		if c.Dataset.S3.Bucket == "" || c.Dataset.S3.Key == "" {
			return fmt.Errorf("dataset.s3.bucket and dataset.s3.key are required for source %q", SourceS3)
		}
	case SourcePostgres:
		if !tableNameRegex.MatchString(c.Dataset.Postgres.Table) {
			return fmt.Errorf("invalid dataset.postgres.table %q", c.Dataset.Postgres.Table)
		}
	default:
		return fmt.Errorf("unknown dataset.source %q", c.Dataset.Source)
	}

	if _, err := c.Categories.Resolve(); err != nil {
		return err
	}

	switch c.Projection.Variant {
	case ProjectionAffine, ProjectionDivide:
	default:
		return fmt.Errorf("unknown projection.variant %q", c.Projection.Variant)
	}

	if c.Cluster.CellSize <= 0 {
		return fmt.Errorf("cluster.cell_size must be positive, got %v", c.Cluster.CellSize)
	}
	if c.Reload.Kafka.Enabled && (len(c.Reload.Kafka.Brokers) == 0 || c.Reload.Kafka.Topic == "") {
		return fmt.Errorf("reload.kafka requires brokers and topic")
	}
	return nil
}

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# cctvmap Configuration
# ---------------------
# Supported Units:
#   Duration: Go duration strings (ms, s, m, h) or a bare number of seconds
# Secrets may be left empty and supplied via .env or the environment:
#   MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, DATABASE_URL

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reSource := regexp.MustCompile(`(?m)^(\s+)source:`)
	data = reSource.ReplaceAll(data, []byte("${1}# Options: embedded, file, s3, postgres\n${1}source:"))

	reSet := regexp.MustCompile(`(?m)^(\s+)set:`)
	data = reSet.ReplaceAll(data, []byte("${1}# Options: emergency, commerce\n${1}set:"))

	reVariant := regexp.MustCompile(`(?m)^(\s+)variant:`)
	data = reVariant.ReplaceAll(data, []byte("${1}# Options: affine, divide\n${1}variant:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
