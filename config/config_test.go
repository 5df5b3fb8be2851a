package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	dir := writeConfig(t, "admin:\n  key: secret\n")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("expected default http address :8080, got %q", cfg.Server.HTTPAddress)
	}
	if cfg.Game.BoardSize != 40 {
		t.Errorf("expected default board size 40, got %d", cfg.Game.BoardSize)
	}
	if cfg.Game.TaskRatio != 0.3 {
		t.Errorf("expected default task ratio 0.3, got %v", cfg.Game.TaskRatio)
	}
	if cfg.Game.DareSeconds != 60 {
		t.Errorf("expected default dare seconds 60, got %d", cfg.Game.DareSeconds)
	}
	if cfg.Admin.Key != "secret" {
		t.Errorf("expected admin key from file, got %q", cfg.Admin.Key)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	dir := writeConfig(t, `
server:
  http_address: ":9999"
game:
  board_size: 24
  task_ratio: 0.5
  dare_seconds: 30
tasks:
  truths:
    - "custom truth"
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.HTTPAddress != ":9999" {
		t.Errorf("expected overridden http address, got %q", cfg.Server.HTTPAddress)
	}
	if cfg.Game.BoardSize != 24 {
		t.Errorf("expected board size 24, got %d", cfg.Game.BoardSize)
	}
	if len(cfg.Tasks.Truths) != 1 || cfg.Tasks.Truths[0] != "custom truth" {
		t.Errorf("expected custom truths, got %v", cfg.Tasks.Truths)
	}
}

func TestLoadConfig_RejectsBadGameSettings(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"board size not divisible by 4", "game:\n  board_size: 10\n"},
		{"board size too small", "game:\n  board_size: 4\n"},
		{"task ratio above one", "game:\n  task_ratio: 1.5\n"},
		{"dare seconds zero", "game:\n  dare_seconds: 0\n"},
		{"unknown database driver", "database:\n  enabled: true\n  driver: sqlite\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			dir := writeConfig(t, tc.content)
			if _, err := LoadConfig(dir); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	viper.Reset()
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("expected an error when no config file exists")
	}
}
