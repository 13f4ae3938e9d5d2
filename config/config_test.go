package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"studentscore/ml"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
artifacts:
  source: sqlite
  db_path: /var/lib/studentscore/artifacts.db
  watch: true
http:
  port: 9090
  timeout: 5s
log:
  level: debug
  format: json
encoder:
  unknown_category: log
`)
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Artifacts.Source != SourceSQLite || !cfg.Artifacts.Watch {
		t.Errorf("unexpected artifacts config: %+v", cfg.Artifacts)
	}
	if cfg.Http.Port != 9090 || cfg.Http.Timeout != 5*time.Second {
		t.Errorf("unexpected http config: %+v", cfg.Http)
	}
	// omitted keys fall back to defaults
	if cfg.Http.MaxBodyBytes != 1<<20 || len(cfg.Http.AllowedOrigins) != 1 {
		t.Errorf("defaults not applied: %+v", cfg.Http)
	}
	policy, err := cfg.CategoryPolicy()
	if err != nil || policy != ml.PolicyLog {
		t.Errorf("expected log policy, got %q (%v)", policy, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Artifacts.Source != SourceFile || cfg.Http.Port != 8080 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("expected error for a required missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "http:\n  prot: 80\n"},
		{name: "bad source", body: "artifacts:\n  source: s3\n"},
		{name: "bad policy", body: "encoder:\n  unknown_category: explode\n"},
		{name: "bad format", body: "log:\n  format: xml\n"},
		{name: "bad port", body: "http:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body), true); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
