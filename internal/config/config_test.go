package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFrom_MissingFile tests that a missing config file yields defaults
func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Missing file must not error: %v", err)
	}
	if cfg.GoogleCloudLocation != "us-central1" {
		t.Errorf("Default location = %q", cfg.GoogleCloudLocation)
	}
	if cfg.Port != "8000" {
		t.Errorf("Default port = %q", cfg.Port)
	}
	if cfg.UploadsDir != "uploads" {
		t.Errorf("Default uploads dir = %q", cfg.UploadsDir)
	}
}

// TestLoadFrom_RoundTrip tests saving and reloading a config file
func TestLoadFrom_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.GoogleCloudProject = "my-project"
	cfg.DatabaseURL = "postgres://localhost/screener"
	cfg.Port = "9090"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.GoogleCloudProject != "my-project" {
		t.Errorf("GoogleCloudProject = %q", loaded.GoogleCloudProject)
	}
	if loaded.DatabaseURL != "postgres://localhost/screener" {
		t.Errorf("DatabaseURL = %q", loaded.DatabaseURL)
	}
	if loaded.Port != "9090" {
		t.Errorf("Port = %q", loaded.Port)
	}
}

// TestLoadFrom_InvalidJSON tests that corrupt files are reported
func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}

// TestApplyEnvOverrides tests that environment variables win over file values
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/db")
	t.Setenv("PORT", "7777")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")

	cfg := DefaultConfig()
	cfg.DatabaseURL = "postgres://file-host/db"
	cfg.applyEnvOverrides()

	if cfg.DatabaseURL != "postgres://env-host/db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "7777" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GoogleCloudProject != "env-project" {
		t.Errorf("GoogleCloudProject = %q", cfg.GoogleCloudProject)
	}
}

// TestValidate tests required-field enforcement
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "Complete config",
			mutate:  func(c *Config) { c.DatabaseURL = "postgres://localhost/db" },
			wantErr: false,
		},
		{
			name:    "Missing database URL",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "Missing port",
			mutate: func(c *Config) {
				c.DatabaseURL = "postgres://localhost/db"
				c.Port = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
