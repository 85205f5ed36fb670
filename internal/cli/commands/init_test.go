package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bookline-dev/bookline/internal/cli/config"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (t.Chdir requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestInitCommand_NewConfig(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)

	if err := runInit("https://api.example.com"); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("%s was not created", config.ConfigFileName)
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}

	if len(cfg.Environments) != 1 {
		t.Fatalf("expected 1 environment, got %d", len(cfg.Environments))
	}
	if cfg.Environments[0].Name != "production" {
		t.Errorf("expected environment 'production', got '%s'", cfg.Environments[0].Name)
	}
	if cfg.Environments[0].URL != "https://api.example.com" {
		t.Errorf("expected URL 'https://api.example.com', got '%s'", cfg.Environments[0].URL)
	}
	if cfg.DefaultPage != "home" {
		t.Errorf("expected default page 'home', got '%s'", cfg.DefaultPage)
	}
}

func TestInitCommand_ExistingConfig(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)

	if err := runInit("https://api.example.com"); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	if err := runInit("https://api.example.com"); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
