package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	chdirTemp(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.BatchSize != 1000 {
		t.Errorf("expected default batch size 1000, got %d", cfg.BatchSize)
	}
	if cfg.Language != "en" {
		t.Errorf("expected default language 'en', got %s", cfg.Language)
	}
	if cfg.Driver != "sqlite3" {
		t.Errorf("expected default driver 'sqlite3', got %s", cfg.Driver)
	}
	if cfg.Durable {
		t.Error("expected durability to be off by default")
	}
	if cfg.SubEntities {
		t.Error("expected sub entities to be off by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("expected info/console logging, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("expected default region 'us-east-1', got %s", cfg.S3.Region)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdirTemp(t)

	configContent := `
batch_size: 5000
language: de
sub_entities: true
driver: pgx
durable: true
metrics_file: /var/lib/node_exporter/wikisql.prom
log:
  level: debug
  format: json
s3:
  region: eu-central-1
  endpoint: http://localhost:9000
  path_style: true
`
	os.WriteFile("wikisql.yaml", []byte(configContent), 0644)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.BatchSize != 5000 {
		t.Errorf("expected batch size 5000, got %d", cfg.BatchSize)
	}
	if cfg.Language != "de" {
		t.Errorf("expected language 'de', got %s", cfg.Language)
	}
	if !cfg.SubEntities || !cfg.Durable {
		t.Error("expected sub_entities and durable to be set")
	}
	if cfg.Driver != "pgx" {
		t.Errorf("expected driver 'pgx', got %s", cfg.Driver)
	}
	if cfg.MetricsFile != "/var/lib/node_exporter/wikisql.prom" {
		t.Errorf("unexpected metrics file %s", cfg.MetricsFile)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Log.Format)
	}
	if cfg.S3.Endpoint != "http://localhost:9000" || !cfg.S3.PathStyle {
		t.Errorf("unexpected s3 config %+v", cfg.S3)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("language: fr\n"), 0644)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Language != "fr" {
		t.Errorf("expected language 'fr', got %s", cfg.Language)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	chdirTemp(t)
	os.WriteFile("wikisql.yaml", []byte("batch_size: 5000\n"), 0644)
	t.Setenv("WIKISQL_BATCH_SIZE", "250")
	t.Setenv("WIKISQL_LOG_LEVEL", "warn")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.BatchSize != 250 {
		t.Errorf("expected environment to override file, got %d", cfg.BatchSize)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Log.Level)
	}
}

func TestLoadFlags(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WIKISQL_LANGUAGE", "de")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("batch-size", 1000, "")
	flags.String("language", "en", "")
	flags.String("driver", "sqlite3", "")
	if err := flags.Parse([]string{"--batch-size", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("expected flag to set batch size, got %d", cfg.BatchSize)
	}
	// Unset flags do not override the environment.
	if cfg.Language != "de" {
		t.Errorf("expected language from environment, got %s", cfg.Language)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"batch size", "batch_size: 0\n", "batch_size"},
		{"driver", "driver: mysql\n", "driver"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"log format", "log:\n  format: xml\n", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			os.WriteFile("wikisql.yaml", []byte(tt.content), 0644)

			_, err := Load("", nil)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Key != tt.key {
				t.Errorf("expected key %s, got %s", tt.key, verr.Key)
			}
		})
	}
}
