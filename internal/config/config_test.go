package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// clearEnv unsets every override so the host environment can't leak into tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SELFISH_CLAUDE_BIN", "SELFISH_NO_UPDATE_CHECK", "SELFISH_HISTORY", "SELFISH_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFileValues(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
claude_path: /opt/claude/bin/claude
no_update_check: true
history: true
log_level: debug
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := Config{
		ClaudePath:    "/opt/claude/bin/claude",
		NoUpdateCheck: true,
		History:       true,
		LogLevel:      "debug",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFileEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "claude_path: /from/file\nlog_level: info\n")

	t.Setenv("SELFISH_CLAUDE_BIN", "/from/env")
	t.Setenv("SELFISH_HISTORY", "1")
	t.Setenv("SELFISH_LOG_LEVEL", "trace")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.ClaudePath != "/from/env" {
		t.Errorf("ClaudePath = %q, want /from/env", cfg.ClaudePath)
	}
	if !cfg.History {
		t.Error("History should be set by SELFISH_HISTORY")
	}
	if cfg.NoUpdateCheck {
		t.Error("NoUpdateCheck should stay false")
	}
	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", cfg.LogLevel)
	}
}

func TestLoadFileBlankClaudePath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "claude_path: \"  \"\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ClaudePath != DefaultClaudeBinary {
		t.Errorf("ClaudePath = %q, want %q", cfg.ClaudePath, DefaultClaudeBinary)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "claude_path: [unterminated\n")

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile should fail on malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

func TestPathUnderHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	path, err := Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}

	want := filepath.Join(tmpDir, ".config", "selfish", "config.yaml")
	if path != want {
		t.Errorf("Path = %q, want %q", path, want)
	}
}

func TestDefaultHistoryOff(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.History {
		t.Error("History must be off unless enabled")
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SELFISH_CLAUDE_BIN", "/from/env")

	cfg := FromEnv()

	want := Default()
	want.ClaudePath = "/from/env"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}
