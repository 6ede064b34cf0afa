package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	root.SetArgs([]string{"config", "init", "--path", target})
	var buf strings.Builder
	root.SetOut(&buf)

	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrote sample configuration") {
		t.Fatalf("missing confirmation: %s", buf.String())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed existing config: %v", err)
	}

	root := newRootCommand()
	root.SetArgs([]string{"config", "init", "--path", target})
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error without --overwrite")
	}

	overwrite := newRootCommand()
	overwrite.SetArgs([]string{"config", "init", "--path", target, "--overwrite"})
	overwrite.SetOut(&strings.Builder{})
	if err := overwrite.Execute(); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
