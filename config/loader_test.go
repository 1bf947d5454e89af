package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes the working directory for the duration of the test.
// Equivalent to t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})
}

func TestLoaderLoadDefaults(t *testing.T) {
	// A directory with no project config loads plain defaults.
	chdir(t, t.TempDir())

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalogs.Default != "NIST_SP80053r4" {
		t.Errorf("expected default catalog NIST_SP80053r4, got %s", cfg.Catalogs.Default)
	}
	if cfg.Convert.ComponentType != "software" {
		t.Errorf("expected component type software, got %s", cfg.Convert.ComponentType)
	}
}

func TestLoaderLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
catalogs:
  sources:
    ACME_1_0: "https://example.com/acme.json"
  default: "ACME_1_0"
convert:
  component_type: "policy"
`
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}
	chdir(t, dir)

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalogs.Default != "ACME_1_0" {
		t.Errorf("expected project default ACME_1_0, got %s", cfg.Catalogs.Default)
	}
	if cfg.Catalogs.Sources["ACME_1_0"] != "https://example.com/acme.json" {
		t.Error("expected project source entry to merge over defaults")
	}
	if _, ok := cfg.Catalogs.Sources["NIST_SP80053r4"]; !ok {
		t.Error("expected default sources to survive the merge")
	}
	if cfg.Convert.ComponentType != "policy" {
		t.Errorf("expected component type policy, got %s", cfg.Convert.ComponentType)
	}
}

func TestLoaderLoadProjectConfigInParent(t *testing.T) {
	parent := t.TempDir()
	content := `
catalogs:
  sources:
    ACME_1_0: "https://example.com/acme.json"
  default: "ACME_1_0"
`
	if err := os.WriteFile(filepath.Join(parent, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}
	nested := filepath.Join(parent, "systems", "api")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}
	chdir(t, nested)

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalogs.Default != "ACME_1_0" {
		t.Errorf("expected config found in parent directory, got default %s", cfg.Catalogs.Default)
	}
}

func TestLoaderLoadInvalidProjectConfig(t *testing.T) {
	dir := t.TempDir()
	// Default names a standard with no source entry, failing validation.
	content := `
catalogs:
  default: "UNKNOWN"
`
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}
	chdir(t, dir)

	if _, err := NewLoader(nil).Load(); err == nil {
		t.Error("expected validation error for unresolvable default")
	}
}
