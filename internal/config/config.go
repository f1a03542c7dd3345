// Package config handles reading and writing .storysense/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .storysense/config.yaml.
type Config struct {
	Version int          `yaml:"version"`
	Rater   string       `yaml:"rater"`
	Export  ExportConfig `yaml:"export"`
	Server  ServerConfig `yaml:"server"`
	Log     LogConfig    `yaml:"log"`
}

// ExportConfig controls where exported ratings go.
type ExportConfig struct {
	Dir         string   `yaml:"dir"`
	FileName    string   `yaml:"file_name"`
	Archive     bool     `yaml:"archive"`      // keep a copy of every export in SQLite
	ArchivePath string   `yaml:"archive_path"` // relative to the project root
	S3          S3Config `yaml:"s3"`
}

// S3Config points exports at an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"` // host:port; empty means AWS
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// ServerConfig controls the HTTP shell.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls the session event log.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
}

const configDir = ".storysense"
const configFile = "config.yaml"

// Dir returns the .storysense directory inside the project root.
func Dir(root string) string {
	return filepath.Join(root, configDir)
}

// ReadConfig reads .storysense/config.yaml from the given project directory.
// dir is the project root (not .storysense/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .storysense/config.yaml in the given project directory.
// Creates the .storysense/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Export: ExportConfig{
			Dir:         ".",
			FileName:    "ratings.json",
			Archive:     true,
			ArchivePath: filepath.Join(configDir, "archive.db"),
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "ratings/",
			},
		},
		Server: ServerConfig{
			Addr: ":8501",
		},
		Log: LogConfig{
			Enabled: true,
		},
	}
}

// Load reads the project config, falling back to defaults when there is
// none, then applies .env and STORYSENSE_* environment overrides.
// A config file that exists but cannot be read or parsed is an error.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	// A missing .env is fine.
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overrides cfg with any STORYSENSE_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Rater, "STORYSENSE_RATER")
	setString(&cfg.Export.Dir, "STORYSENSE_EXPORT_DIR")
	setString(&cfg.Export.ArchivePath, "STORYSENSE_ARCHIVE_PATH")
	setBool(&cfg.Export.Archive, "STORYSENSE_ARCHIVE")
	setString(&cfg.Server.Addr, "STORYSENSE_ADDR")
	setBool(&cfg.Export.S3.Enabled, "STORYSENSE_S3_ENABLED")
	setString(&cfg.Export.S3.Endpoint, "STORYSENSE_S3_ENDPOINT")
	setString(&cfg.Export.S3.Bucket, "STORYSENSE_S3_BUCKET")
	setString(&cfg.Export.S3.Region, "STORYSENSE_S3_REGION")
	setString(&cfg.Export.S3.AccessKey, "STORYSENSE_S3_ACCESS_KEY")
	setString(&cfg.Export.S3.SecretKey, "STORYSENSE_S3_SECRET_KEY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
