package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", path)
	}
	def := Default()
	if cfg.Rewrite.Model != def.Rewrite.Model {
		t.Errorf("model = %q, want default %q", cfg.Rewrite.Model, def.Rewrite.Model)
	}
	if cfg.Workflow.TransformWorkers != def.Workflow.TransformWorkers {
		t.Errorf("transform_workers = %d, want %d", cfg.Workflow.TransformWorkers, def.Workflow.TransformWorkers)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[rewrite]
model = "custom-model"
base_url = "https://gateway.example.com/v1/"

[workflow]
transform_workers = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Rewrite.Model != "custom-model" {
		t.Errorf("model = %q", cfg.Rewrite.Model)
	}
	if strings.HasSuffix(cfg.Rewrite.BaseURL, "/") {
		t.Errorf("base_url not trimmed: %q", cfg.Rewrite.BaseURL)
	}
	if cfg.Workflow.TransformWorkers != 8 {
		t.Errorf("transform_workers = %d", cfg.Workflow.TransformWorkers)
	}
	if cfg.Workflow.QueuePollInterval != Default().Workflow.QueuePollInterval {
		t.Errorf("unset field lost default: %d", cfg.Workflow.QueuePollInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "heartbeat_timeout") {
		t.Fatalf("expected heartbeat_timeout error, got %v", err)
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad logging format")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/srv/redraft"
	if got := cfg.ArtifactsDir(); got != filepath.Join("/srv/redraft", "artifacts") {
		t.Errorf("ArtifactsDir = %q", got)
	}
	if got := cfg.QueueDBPath(); got != filepath.Join("/srv/redraft", "jobs.db") {
		t.Errorf("QueueDBPath = %q", got)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config failed to load: exists=%v err=%v", exists, err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}
}
