package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
files:
  - match1.wpilog
output:
  path: out.json.gz
  format: json
  compression: gzip
dump:
  entries:
    - NT:/SmartDashboard/speed
  from: 1000
  to: 5000
  warnings: true
watch:
  enabled: true
  reload_interval: 2s
  metrics_address: ":9090"
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Files) != 1 || cfg.Files[0] != "match1.wpilog" {
		t.Errorf("files = %v", cfg.Files)
	}
	if cfg.Output.Compression != "gzip" {
		t.Errorf("compression = %s", cfg.Output.Compression)
	}
	if cfg.Watch.ReloadInterval != 2*time.Second {
		t.Errorf("reload interval = %v", cfg.Watch.ReloadInterval)
	}
	if !cfg.Dump.Warnings || cfg.Dump.From != 1000 {
		t.Errorf("dump = %+v", cfg.Dump)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "files: [a.wpilog]\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != DefaultFormat {
		t.Errorf("format = %s, want %s", cfg.Output.Format, DefaultFormat)
	}
	if cfg.Output.Compression != DefaultCompression {
		t.Errorf("compression = %s", cfg.Output.Compression)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Watch.ReloadInterval != DefaultReloadInterval {
		t.Errorf("reload interval = %v", cfg.Watch.ReloadInterval)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("MATCH_LOG", "finals.wpilog")
	cfg, err := Load(writeConfig(t, "files: [\"${MATCH_LOG}\"]\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Files[0] != "finals.wpilog" {
		t.Errorf("files = %v", cfg.Files)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad format", "files: [a]\noutput:\n  format: xml\n"},
		{"bad compression", "files: [a]\noutput:\n  compression: lz4\n"},
		{"bad log level", "files: [a]\nlogging:\n  level: verbose\n"},
		{"inverted dump range", "files: [a]\ndump:\n  from: 100\n  to: 50\n"},
		{"watch with many files", "files: [a, b]\nwatch:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() error = nil, want validation failure")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Load() error = nil, want read failure")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() config invalid: %v", err)
	}
}
