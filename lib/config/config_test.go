// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.DataRoot == "" {
		t.Error("DataRoot must not be empty")
	}
}

func TestLoadRequiresBurrowConfig(t *testing.T) {
	orig := os.Getenv("BURROW_CONFIG")
	defer os.Setenv("BURROW_CONFIG", orig)
	os.Unsetenv("BURROW_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when BURROW_CONFIG is not set")
	}
	const want = "BURROW_CONFIG environment variable not set"
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("error = %q, want prefix %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burrow.yaml")
	content := `
environment: production
data_root: /var/lib/burrow
replication_listen: "0.0.0.0:7331"
log_level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("Environment = %s, want production", cfg.Environment)
	}
	if cfg.DataRoot != "/var/lib/burrow" {
		t.Errorf("DataRoot = %s, want /var/lib/burrow", cfg.DataRoot)
	}
	if cfg.ReplicationListen != "0.0.0.0:7331" {
		t.Errorf("ReplicationListen = %s, want 0.0.0.0:7331", cfg.ReplicationListen)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", cfg.LogLevel)
	}
}

func TestLoadFileAppliesEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burrow.yaml")
	content := `
environment: staging
data_root: /home/op/burrow
log_level: info
staging:
  log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug (from staging override)", cfg.LogLevel)
	}
}

func TestLoadFileExpandsHome(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burrow.yaml")
	content := `
environment: development
data_root: "${HOME}/burrow-data"
log_level: info
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	home := os.Getenv("HOME")
	want := filepath.Join(home, "burrow-data")
	if cfg.DataRoot != want {
		t.Errorf("DataRoot = %s, want %s", cfg.DataRoot, want)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid log_level")
	}
}

func TestValidateRejectsEmptyDataRoot(t *testing.T) {
	cfg := Default()
	cfg.DataRoot = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty data_root")
	}
}
