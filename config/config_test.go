package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Catalogs.Default != "NIST_SP80053r4" {
		t.Errorf("expected default catalog NIST_SP80053r4, got %s", cfg.Catalogs.Default)
	}
	if len(cfg.Catalogs.Sources) != 4 {
		t.Errorf("expected 4 catalog sources, got %d", len(cfg.Catalogs.Sources))
	}
	if !strings.Contains(cfg.Catalogs.Sources["NIST_SP80053r5"], "rev5") {
		t.Errorf("unexpected rev5 source: %s", cfg.Catalogs.Sources["NIST_SP80053r5"])
	}
	if cfg.Convert.ComponentType != "software" {
		t.Errorf("expected component type software, got %s", cfg.Convert.ComponentType)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "default without source entry",
			modify:  func(c *Config) { c.Catalogs.Default = "UNKNOWN" },
			wantErr: true,
		},
		{
			name:    "empty source URI",
			modify:  func(c *Config) { c.Catalogs.Sources["NIST_SP80053r4"] = "" },
			wantErr: true,
		},
		{
			name:    "missing component type",
			modify:  func(c *Config) { c.Convert.ComponentType = "" },
			wantErr: true,
		},
		{
			name:    "no default at all",
			modify:  func(c *Config) { c.Catalogs.Default = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSource(t *testing.T) {
	cfg := DefaultConfig()

	uri, ok := cfg.Source("CMS_ARS_5_0")
	if !ok || !strings.Contains(uri, "CMS_ARS_5_0") {
		t.Errorf("expected CMS_ARS_5_0 source, got %q ok=%v", uri, ok)
	}

	// Unknown keys fall back to the default standard's source.
	uri, ok = cfg.Source("SOME_OTHER_STANDARD")
	if !ok || !strings.Contains(uri, "rev4") {
		t.Errorf("expected rev4 fallback, got %q ok=%v", uri, ok)
	}

	cfg.Catalogs.Default = ""
	if _, ok := cfg.Source("SOME_OTHER_STANDARD"); ok {
		t.Error("expected no source without a default")
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Catalogs: CatalogsConfig{
			Sources: map[string]string{"ACME_1_0": "https://example.com/acme.json"},
			Default: "ACME_1_0",
		},
		Convert: ConvertConfig{ComponentType: "service"},
	})

	if cfg.Catalogs.Default != "ACME_1_0" {
		t.Errorf("expected merged default ACME_1_0, got %s", cfg.Catalogs.Default)
	}
	if cfg.Catalogs.Sources["ACME_1_0"] != "https://example.com/acme.json" {
		t.Error("expected merged source entry")
	}
	if len(cfg.Catalogs.Sources) != 5 {
		t.Errorf("merge should add to sources, got %d entries", len(cfg.Catalogs.Sources))
	}
	if cfg.Convert.ComponentType != "service" {
		t.Errorf("expected merged component type service, got %s", cfg.Convert.ComponentType)
	}
	if cfg.Convert.Version != "unknown" {
		t.Errorf("merge should keep default version, got %s", cfg.Convert.Version)
	}

	// Merging nil is a no-op.
	cfg.Merge(nil)
	if cfg.Catalogs.Default != "ACME_1_0" {
		t.Error("nil merge must not change config")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
catalogs:
  sources:
    ACME_1_0: "https://example.com/acme.json"
  default: "ACME_1_0"
convert:
  component_type: "policy"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Catalogs.Default != "ACME_1_0" {
		t.Errorf("expected default ACME_1_0, got %s", cfg.Catalogs.Default)
	}
	if cfg.Convert.ComponentType != "policy" {
		t.Errorf("expected component type policy, got %s", cfg.Convert.ComponentType)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Catalogs.Default != cfg.Catalogs.Default {
		t.Error("round-tripped config differs")
	}
}
