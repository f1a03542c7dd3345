package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Rater = "dana"
	cfg.Export.S3.Enabled = true
	cfg.Export.S3.Bucket = "ratings"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Rater != "dana" {
		t.Errorf("Rater: got %q, want %q", loaded.Rater, "dana")
	}
	if !loaded.Export.S3.Enabled || loaded.Export.S3.Bucket != "ratings" {
		t.Errorf("S3: got %+v, want enabled bucket ratings", loaded.Export.S3)
	}
	if loaded.Server.Addr != ":8501" {
		t.Errorf("Server.Addr: got %q, want %q", loaded.Server.Addr, ":8501")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Export.FileName != "ratings.json" {
		t.Errorf("default FileName: got %q, want ratings.json", cfg.Export.FileName)
	}
	if !cfg.Export.Archive {
		t.Error("archive should be enabled by default")
	}
	if cfg.Export.S3.Enabled {
		t.Error("S3 export should be disabled by default")
	}
	if cfg.Rater != "" {
		t.Errorf("default Rater: got %q, want empty", cfg.Rater)
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `version: 1
rater: sam
`
	configPath := filepath.Join(tmpDir, ".storysense")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Rater != "sam" {
		t.Errorf("Rater: got %q, want sam", cfg.Rater)
	}
	if cfg.Export.FileName != "ratings.json" {
		t.Errorf("FileName should keep default, got %q", cfg.Export.FileName)
	}
}

func TestReadConfigMissing(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("ReadConfig should fail without a config file")
	}
}

func TestReadConfigMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".storysense")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte("rater: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := ReadConfig(tmpDir); err == nil {
		t.Error("ReadConfig should fail on malformed YAML")
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".storysense")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	bad := "export: {s3: {enabled: true, bucket: b}, archive: [oops"
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(bad), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err == nil {
		t.Fatalf("Load should fail on malformed YAML, got %+v", cfg.Export)
	}
	if cfg != nil {
		t.Error("Load returned a config alongside the error")
	}
}

func TestLoadWithoutConfigUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.FileName != "ratings.json" || !cfg.Export.Archive {
		t.Errorf("expected defaults, got %+v", cfg.Export)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STORYSENSE_RATER", "env-rater")
	t.Setenv("STORYSENSE_ARCHIVE", "false")
	t.Setenv("STORYSENSE_S3_BUCKET", "from-env")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rater != "env-rater" {
		t.Errorf("Rater: got %q, want env-rater", cfg.Rater)
	}
	if cfg.Export.Archive {
		t.Error("Archive should be disabled by STORYSENSE_ARCHIVE=false")
	}
	if cfg.Export.S3.Bucket != "from-env" {
		t.Errorf("S3.Bucket: got %q, want from-env", cfg.Export.S3.Bucket)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("STORYSENSE_ADDR=:9999\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("STORYSENSE_ADDR") })

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr: got %q, want :9999", cfg.Server.Addr)
	}
}
