// Package config handles loading and validation of seakeeper.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes caps upload size when the config does not.
const DefaultMaxUploadBytes = 100 << 20

// IngestConfig configures the ingestion process.
type IngestConfig struct {
	Listen         string `yaml:"listen"`
	UploadsDir     string `yaml:"uploadsDir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	Workers        int    `yaml:"workers"`
	QueueDepth     int    `yaml:"queueDepth"`
}

// AnalyticsConfig configures the analytics process.
type AnalyticsConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the full seakeeper.yaml project configuration, shared by both
// processes.
type Config struct {
	PostgresDSN      string          `yaml:"postgresDsn"`
	TelemetryPath    string          `yaml:"telemetryPath"`
	ModelsDir        string          `yaml:"modelsDir"`
	VesselServiceURL string          `yaml:"vesselServiceUrl"`
	MetaServiceURL   string          `yaml:"metaServiceUrl"`
	APIKey           string          `yaml:"apiKey,omitempty"`
	Ingest           IngestConfig    `yaml:"ingest"`
	Analytics        AnalyticsConfig `yaml:"analytics"`
}

// Load reads and parses seakeeper.yaml from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "seakeeper.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Ingest.Listen == "" {
		cfg.Ingest.Listen = ":8080"
	}
	if cfg.Analytics.Listen == "" {
		cfg.Analytics.Listen = ":8081"
	}
	if cfg.Ingest.UploadsDir == "" {
		cfg.Ingest.UploadsDir = "uploads"
	}
	if cfg.Ingest.MaxUploadBytes <= 0 {
		cfg.Ingest.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Ingest.Workers <= 0 {
		cfg.Ingest.Workers = 2
	}
	if cfg.Ingest.QueueDepth <= 0 {
		cfg.Ingest.QueueDepth = 32
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
}

func validate(cfg *Config) error {
	if cfg.TelemetryPath == "" {
		return fmt.Errorf("telemetryPath is required")
	}
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("postgresDsn is required")
	}
	if cfg.VesselServiceURL == "" {
		return fmt.Errorf("vesselServiceUrl is required")
	}
	if cfg.MetaServiceURL == "" {
		return fmt.Errorf("metaServiceUrl is required")
	}
	return nil
}
