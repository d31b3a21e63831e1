package appconfig

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestImageRef(t *testing.T) {
	cfg := Config{Repository: "dazel", ImageName: "dazel"}
	if got := cfg.ImageRef(); got != "dazel/dazel" {
		t.Fatalf("expected dazel/dazel, got %q", got)
	}
	cfg.Repository = ""
	if got := cfg.ImageRef(); got != "dazel" {
		t.Fatalf("expected bare image name, got %q", got)
	}
}

func TestDefaultConfigPathHonorsRCFileOverride(t *testing.T) {
	t.Setenv("DAZEL_RC_FILE", "/etc/dazel/dazelrc")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default config path: %v", err)
	}
	if path != "/etc/dazel/dazelrc" {
		t.Fatalf("expected override, got %q", path)
	}
}

func TestDefaultConfigPathUsesDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAZEL_RC_FILE", "")
	t.Setenv("DAZEL_DIRECTORY", dir)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default config path: %v", err)
	}
	if path != filepath.Join(dir, RCFileName) {
		t.Fatalf("expected rc in directory, got %q", path)
	}
}

func TestDefaultConfigOutputRoot(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if !strings.HasSuffix(cfg.BazelUserOutputRoot, filepath.Join("", "bazel")) {
		t.Fatalf("expected bazel cache root, got %q", cfg.BazelUserOutputRoot)
	}
	if !filepath.IsAbs(cfg.BazelUserOutputRoot) {
		t.Fatalf("expected absolute cache root, got %q", cfg.BazelUserOutputRoot)
	}
}
